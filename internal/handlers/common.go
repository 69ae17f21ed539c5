package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/access"
	"melhado-backend/internal/database"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/middleware"
	"melhado-backend/internal/models"
	"melhado-backend/internal/websocket"
	"melhado-backend/pkg/utils"
)

//go:generate mockgen -source=common.go -destination=common_mock_test.go -package=handlers

// Broadcaster pushes live events to connected dashboards.
type Broadcaster interface {
	BroadcastToUser(userID string, data interface{})
	BroadcastToRole(role models.Role, data interface{})
}

// SubmissionNotifier tells landlords and admins about a submitted MOT.
type SubmissionNotifier interface {
	InspectionSubmitted(ctx context.Context, rec inspection.Record, property *models.Property) error
}

// ExpiryScanner runs one pass of the expiring-document check.
type ExpiryScanner interface {
	ScanExpiringDocuments(ctx context.Context) (int, error)
}

// authorize checks the role permission table and writes 401/403 on failure.
func authorize(w http.ResponseWriter, r *http.Request, resource access.Resource, action access.Action) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserFromContext(r)
	if !ok {
		log.Println("❌ User claims not found in context")
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return claims, false
	}
	if !access.HasPermission(claims.Role, resource, action, "") {
		log.Printf("❌ %s %s may not %s %s", claims.Role, claims.Email, action, resource)
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return claims, false
	}
	return claims, true
}

// visibleProperty loads the property and applies the caller's property scope.
// Properties outside the scope are reported as not found.
func visibleProperty(w http.ResponseWriter, r *http.Request, store *database.Store, claims middleware.UserClaims, id string) (*models.Property, bool) {
	property, err := store.GetProperty(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Property not found")
			return nil, false
		}
		log.Printf("❌ Failed to load property %s: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load property")
		return nil, false
	}
	if !access.CanSeeProperty(claims.UserID, claims.Role, property) {
		log.Printf("❌ Property %s is outside the scope of %s", id, claims.Email)
		utils.RespondError(w, http.StatusNotFound, "Property not found")
		return nil, false
	}
	return property, true
}

// loadedInspection is an inspection with the property it belongs to.
type loadedInspection struct {
	Row      *models.Inspection
	Record   inspection.Record
	Property *models.Property
}

// visibleInspection loads the inspection named by the {id} URL parameter and
// checks that the caller can see its property.
func visibleInspection(w http.ResponseWriter, r *http.Request, store *database.Store, claims middleware.UserClaims) (*loadedInspection, bool) {
	id := chi.URLParam(r, "id")
	row, rec, err := store.GetInspection(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Inspection not found")
			return nil, false
		}
		log.Printf("❌ Failed to load inspection %s: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load inspection")
		return nil, false
	}
	property, ok := visibleProperty(w, r, store, claims, row.PropertyID)
	if !ok {
		return nil, false
	}
	return &loadedInspection{Row: row, Record: rec, Property: property}, true
}

// editableInspection is visibleInspection for mutations. Inspectors may only
// change their own records.
func editableInspection(w http.ResponseWriter, r *http.Request, store *database.Store, claims middleware.UserClaims) (*loadedInspection, bool) {
	li, ok := visibleInspection(w, r, store, claims)
	if !ok {
		return nil, false
	}
	if claims.Role == models.RoleClient && li.Record.InspectorID != claims.UserID {
		log.Printf("❌ %s is not the inspector of %s", claims.Email, li.Record.ID)
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return li, true
}

// actor loads the caller for the history trail. A failed lookup falls back to
// the token claims.
func actor(ctx context.Context, store *database.Store, claims middleware.UserClaims) *models.User {
	user, err := store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		log.Printf("⚠️  Could not load user %s for history: %v", claims.UserID, err)
		return &models.User{ID: claims.UserID, Email: claims.Email, Name: claims.Email, Role: claims.Role}
	}
	return user
}

// respondInspectionError maps core lifecycle errors to status codes.
func respondInspectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inspection.ErrInvalidUpdate):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, inspection.ErrIncomplete):
		utils.RespondError(w, http.StatusConflict, "Inspection has pending items")
	case errors.Is(err, inspection.ErrRecordLocked):
		utils.RespondError(w, http.StatusConflict, "Inspection can no longer be changed")
	case errors.Is(err, inspection.ErrInvalidTransition), errors.Is(err, inspection.ErrRoomExists):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, inspection.ErrRoomNotFound), errors.Is(err, database.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrStale):
		utils.RespondError(w, http.StatusConflict, staleInspection)
	default:
		log.Printf("❌ Inspection error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

const staleInspection = "Inspection was changed by another request, reload and try again"

// respondSaveError answers a failed write of rec: 409 when another request
// saved it first, 500 otherwise.
func respondSaveError(w http.ResponseWriter, rec inspection.Record, err error, message string) {
	if errors.Is(err, database.ErrStale) {
		log.Printf("⚠️  Inspection %s changed since version %d", rec.ID, rec.Version)
		utils.RespondError(w, http.StatusConflict, staleInspection)
		return
	}
	log.Printf("❌ Failed to save inspection %s: %v", rec.ID, err)
	utils.RespondError(w, http.StatusInternalServerError, message)
}

// InspectionEvent is the payload of an inspection_updated websocket event.
type InspectionEvent struct {
	InspectionID string                   `json:"inspection_id"`
	PropertyID   string                   `json:"property_id"`
	Status       inspection.RecordStatus  `json:"status"`
	Result       inspection.OverallResult `json:"overall_result"`
	Summary      inspection.Summary       `json:"summary"`
	Progress     float64                  `json:"progress"`
}

// broadcastInspection sends the record's new summary to its inspector, the
// property's landlord and every connected admin.
func broadcastInspection(events Broadcaster, rec inspection.Record, property *models.Property) {
	if events == nil {
		return
	}
	event := websocket.Event{
		Type: "inspection_updated",
		Data: InspectionEvent{
			InspectionID: rec.ID,
			PropertyID:   rec.PropertyID,
			Status:       rec.Status,
			Result:       rec.OverallResult,
			Summary:      rec.Summary,
			Progress:     rec.Progress(),
		},
	}
	events.BroadcastToUser(rec.InspectorID, event)
	if property != nil && property.LandlordID != rec.InspectorID {
		events.BroadcastToUser(property.LandlordID, event)
	}
	events.BroadcastToRole(models.RoleAdmin, event)
}
