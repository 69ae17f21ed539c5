package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/access"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/database"
	"melhado-backend/internal/helpers"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
	"melhado-backend/internal/storage"
	"melhado-backend/pkg/utils"
)

// subjectOf loads the property's rooms and converts it for the inspection core.
func subjectOf(ctx context.Context, store *database.Store, property *models.Property) (inspection.Property, error) {
	rooms, err := store.ListRooms(ctx, property.ID)
	if err != nil {
		return inspection.Property{}, err
	}
	return property.ToSubject(rooms), nil
}

// StartInspection builds a new in-progress record from the template catalog.
// The property is either an existing one in the caller's scope or described
// inline, which needs permission to create properties.
func StartInspection(store *database.Store, builder *inspection.Builder, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("📥 REQUEST: POST /api/inspections - Start inspection")

		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionCreate)
		if !ok {
			return
		}

		var req models.StartInspectionRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			log.Printf("❌ Invalid request body: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var property *models.Property
		switch {
		case req.PropertyID != "":
			property, ok = visibleProperty(w, r, store, claims, req.PropertyID)
			if !ok {
				return
			}
		case access.HasPermission(claims.Role, access.ResourceProperties, access.ActionCreate, ""):
			property, _, ok = createProperty(w, r, store, claims, models.CreatePropertyRequest{
				Address:    req.Address,
				Type:       req.Type,
				LandlordID: req.LandlordID,
				Rooms:      req.Rooms,
			})
			if !ok {
				return
			}
		default:
			log.Printf("❌ %s cannot start an inspection without a property", claims.Email)
			utils.RespondError(w, http.StatusBadRequest, "property_id is required")
			return
		}

		subject, err := subjectOf(r.Context(), store, property)
		if err != nil {
			log.Printf("❌ Failed to load rooms for %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to start inspection")
			return
		}

		now := time.Now()
		rec := builder.Build(subject, claims.UserID, now)
		if err := store.SaveInspection(r.Context(), &rec, now); err != nil {
			log.Printf("❌ Failed to save inspection: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to start inspection")
			return
		}

		helpers.LogInspectionStarted(store.DB(), rec, actor(r.Context(), store, claims))
		broadcastInspection(events, rec, property)

		log.Printf("✅ INSPECTION STARTED: %s", rec.ID)
		log.Printf("   🏠 Property: %s", property.Address)
		log.Printf("   📋 Items: %d across %d rooms", len(rec.Items), len(subject.Rooms))
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		utils.RespondJSON(w, http.StatusCreated, models.NewInspectionResponse(rec, nil))
	}
}

func GetInspection(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionRead)
		if !ok {
			return
		}
		li, ok := visibleInspection(w, r, store, claims)
		if !ok {
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.NewInspectionResponse(li.Record, li.Row.ReportDocumentID))
	}
}

// GetMyInspections lists the records the caller started, newest first.
func GetMyInspections(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionRead)
		if !ok {
			return
		}
		rows, err := store.ListInspectionsByInspector(r.Context(), claims.UserID)
		if err != nil {
			log.Printf("❌ Failed to list inspections for %s: %v", claims.Email, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list inspections")
			return
		}
		utils.RespondJSON(w, http.StatusOK, rows)
	}
}

// GetPropertyInspections is the inspection history of one property.
func GetPropertyInspections(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionRead)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}
		rows, err := store.ListInspectionsForProperty(r.Context(), property.ID)
		if err != nil {
			log.Printf("❌ Failed to list inspections for %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list inspections")
			return
		}
		utils.RespondJSON(w, http.StatusOK, rows)
	}
}

// UpdateInspectionItem applies a partial update to one checklist item. An
// unknown item id leaves the record unchanged and reports applied=false.
func UpdateInspectionItem(store *database.Store, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionUpdate)
		if !ok {
			return
		}
		li, ok := editableInspection(w, r, store, claims)
		if !ok {
			return
		}

		var u inspection.ItemUpdate
		if err := utils.DecodeJSON(w, r, &u); err != nil {
			log.Printf("❌ Invalid request body: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if u.Empty() {
			utils.RespondError(w, http.StatusBadRequest, "No fields to update")
			return
		}

		rec := li.Record
		itemID := chi.URLParam(r, "itemId")
		before, _ := rec.Item(itemID)
		previous := rec.Status

		now := time.Now()
		applied, err := rec.ApplyUpdate(itemID, u, now)
		if err != nil {
			log.Printf("❌ Update of item %s on %s rejected: %v", itemID, rec.ID, err)
			respondInspectionError(w, err)
			return
		}

		if applied {
			if err := store.SaveInspection(r.Context(), &rec, now); err != nil {
				respondSaveError(w, rec, err, "Failed to save inspection")
				return
			}

			who := actor(r.Context(), store, claims)
			after, _ := rec.Item(itemID)
			helpers.LogItemUpdated(store.DB(), rec.ID, before, after, who)
			if previous == inspection.RecordInProgress && rec.Status == inspection.RecordCompleted {
				log.Printf("🏁 Inspection %s completed: no pending items left", rec.ID)
				helpers.LogInspectionCompleted(store.DB(), rec, who)
			}
			broadcastInspection(events, rec, li.Property)
		} else {
			log.Printf("⚠️  Item %s not on inspection %s, nothing changed", itemID, rec.ID)
		}

		utils.RespondJSON(w, http.StatusOK, models.ItemUpdateResponse{
			Applied:    applied,
			Inspection: models.NewInspectionResponse(rec, li.Row.ReportDocumentID),
		})
	}
}

type AddInspectionRoomResponse struct {
	Room       *models.Room              `json:"room"`
	Inspection models.InspectionResponse `json:"inspection"`
}

// AddInspectionRoom adds a room to the property and appends its checklist
// items to the in-progress record.
func AddInspectionRoom(store *database.Store, builder *inspection.Builder, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionUpdate)
		if !ok {
			return
		}
		li, ok := editableInspection(w, r, store, claims)
		if !ok {
			return
		}
		rec := li.Record
		if rec.Status != inspection.RecordInProgress {
			utils.RespondError(w, http.StatusConflict, "Rooms can only be added while the inspection is in progress")
			return
		}

		var req models.RoomRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		now := time.Now()
		room := database.NewRoom(li.Property.ID, normalizeRooms([]models.RoomRequest{req})[0], now)
		subjectRoom := inspection.Room{ID: room.ID, Name: room.Name, Type: room.Type}
		if err := builder.AddRoom(&rec, subjectRoom, now); err != nil {
			respondInspectionError(w, err)
			return
		}
		if err := store.AddInspectionRoom(r.Context(), &room, &rec, now); err != nil {
			respondSaveError(w, rec, err, "Failed to add room")
			return
		}

		helpers.LogRoomAdded(store.DB(), rec.ID, subjectRoom, actor(r.Context(), store, claims))
		broadcastInspection(events, rec, li.Property)

		log.Printf("🚪 Room %s (%s) added to inspection %s", room.Name, room.Type, rec.ID)
		utils.RespondJSON(w, http.StatusCreated, AddInspectionRoomResponse{
			Room:       &room,
			Inspection: models.NewInspectionResponse(rec, li.Row.ReportDocumentID),
		})
	}
}

// DeleteInspectionRoom removes the room from the property, which drops its
// items from this and every other open inspection of the property.
func DeleteInspectionRoom(store *database.Store, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionUpdate)
		if !ok {
			return
		}
		li, ok := editableInspection(w, r, store, claims)
		if !ok {
			return
		}
		if !li.Record.Status.Editable() {
			utils.RespondError(w, http.StatusConflict, "Inspection can no longer be changed")
			return
		}

		removeRoom(w, r, store, events, claims, li.Property, chi.URLParam(r, "roomId"))
	}
}

// CompleteInspection marks a record with no pending items as completed.
func CompleteInspection(store *database.Store, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionUpdate)
		if !ok {
			return
		}
		li, ok := editableInspection(w, r, store, claims)
		if !ok {
			return
		}

		rec := li.Record
		previous := rec.Status
		now := time.Now()
		if err := rec.Complete(now); err != nil {
			log.Printf("❌ Cannot complete inspection %s: %v", rec.ID, err)
			respondInspectionError(w, err)
			return
		}

		if previous != rec.Status {
			if err := store.SaveInspection(r.Context(), &rec, now); err != nil {
				respondSaveError(w, rec, err, "Failed to save inspection")
				return
			}
			helpers.LogInspectionCompleted(store.DB(), rec, actor(r.Context(), store, claims))
			broadcastInspection(events, rec, li.Property)
		}

		utils.RespondJSON(w, http.StatusOK, models.NewInspectionResponse(rec, li.Row.ReportDocumentID))
	}
}

// assembleReport groups the record for display and names its inspector.
func assembleReport(ctx context.Context, store *database.Store, li *loadedInspection) (inspection.Report, error) {
	subject, err := subjectOf(ctx, store, li.Property)
	if err != nil {
		return inspection.Report{}, err
	}
	rep, err := inspection.Assemble(li.Record, subject)
	if err != nil {
		return rep, err
	}
	if inspector, err := store.GetUserByID(ctx, li.Record.InspectorID); err == nil {
		rep.InspectorName = inspector.Name
	}
	return rep, nil
}

// GetInspectionReport renders a finished record as JSON, or as a text or
// markdown download with ?format=.
func GetInspectionReport(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionRead)
		if !ok {
			return
		}
		li, ok := visibleInspection(w, r, store, claims)
		if !ok {
			return
		}

		rep, err := assembleReport(r.Context(), store, li)
		if err != nil {
			respondInspectionError(w, err)
			return
		}

		switch r.URL.Query().Get("format") {
		case "text":
			filename := compliance.MOTReportFilename(li.Property.Address, time.Now())
			utils.RespondText(w, http.StatusOK, rep.Text(), filename)
		case "markdown":
			utils.RespondBody(w, http.StatusOK, "text/markdown; charset=utf-8", rep.Markdown(), "")
		default:
			utils.RespondJSON(w, http.StatusOK, rep)
		}
	}
}

type SubmitInspectionResponse struct {
	Inspection models.InspectionResponse `json:"inspection"`
	Document   models.DocumentResponse   `json:"document"`
}

// SubmitInspection finalises a completed record. The text report is saved as
// an MOT report document on the property, the property takes the record's
// result and next due date, and the landlord and admins are notified.
func SubmitInspection(store *database.Store, files storage.FileStore, notifier SubmissionNotifier,
	windows compliance.Windows, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Printf("📥 REQUEST: POST /api/inspections/%s/submit", chi.URLParam(r, "id"))

		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionUpdate)
		if !ok {
			return
		}
		li, ok := editableInspection(w, r, store, claims)
		if !ok {
			return
		}

		now := time.Now()
		if err := li.Record.Submit(now); err != nil {
			log.Printf("❌ Cannot submit inspection %s: %v", li.Record.ID, err)
			respondInspectionError(w, err)
			return
		}
		rec := li.Record

		rep, err := assembleReport(r.Context(), store, li)
		if err != nil {
			respondInspectionError(w, err)
			return
		}

		filename := compliance.MOTReportFilename(li.Property.Address, now)
		key := storage.Key("reports", li.Property.ID, rec.ID, filename)
		url, size, err := files.Save(r.Context(), key, "text/plain; charset=utf-8", strings.NewReader(rep.Text()))
		if err != nil {
			log.Printf("❌ Failed to store report %s: %v", key, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save report")
			return
		}

		doc := compliance.NewMOTReportDocument(rep, rec.InspectorID, url, key, size, now)
		nextDue := windows.NextDue(now).Unix()
		if err := store.SubmitInspection(r.Context(), &rec, &doc, &nextDue, now); err != nil {
			if err := files.Delete(r.Context(), key); err != nil {
				log.Printf("⚠️  Failed to remove orphaned report %s: %v", key, err)
			}
			respondSaveError(w, rec, err, "Failed to submit inspection")
			return
		}

		helpers.LogInspectionSubmitted(store.DB(), rec, actor(r.Context(), store, claims))

		li.Property.MOTStatus = models.MOTStatusFor(rec.OverallResult)
		li.Property.NextDue = &nextDue
		if notifier != nil {
			if err := notifier.InspectionSubmitted(r.Context(), rec, li.Property); err != nil {
				log.Printf("⚠️  Failed to notify about inspection %s: %v", rec.ID, err)
			}
		}
		broadcastInspection(events, rec, li.Property)

		log.Printf("✅ INSPECTION SUBMITTED: %s", rec.ID)
		log.Printf("   🏠 Property: %s", li.Property.Address)
		log.Printf("   📊 Result: %s (%d faults, %d actions needed)", rec.OverallResult, rec.Summary.FaultItems, rec.Summary.ActionNeededItems)
		log.Printf("   📄 Report: %s", doc.Filename)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		utils.RespondJSON(w, http.StatusOK, SubmitInspectionResponse{
			Inspection: models.NewInspectionResponse(rec, &doc.ID),
			Document:   compliance.DocumentResponse(&doc, now, windows),
		})
	}
}

// GetInspectionHistory returns the audit trail of a record, oldest first.
func GetInspectionHistory(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionRead)
		if !ok {
			return
		}
		li, ok := visibleInspection(w, r, store, claims)
		if !ok {
			return
		}

		history, err := store.ListInspectionHistory(r.Context(), li.Record.ID)
		if err != nil {
			log.Printf("❌ Failed to load history for %s: %v", li.Record.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load history")
			return
		}

		resp := make([]models.InspectionHistoryResponse, 0, len(history))
		for i := range history {
			resp = append(resp, history[i].ToHistoryResponse())
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}
