package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/access"
	"melhado-backend/internal/database"
	"melhado-backend/internal/helpers"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/middleware"
	"melhado-backend/internal/models"
	"melhado-backend/internal/storage"
	"melhado-backend/pkg/utils"
)

// propertyFilterFor maps the caller's property scope onto a store filter.
func propertyFilterFor(claims middleware.UserClaims) database.PropertyFilter {
	switch access.ScopeOf(claims.Role, access.ResourceProperties) {
	case access.ScopeOwn:
		return database.PropertyFilter{LandlordID: claims.UserID}
	case access.ScopeAssigned:
		return database.PropertyFilter{InspectorID: claims.UserID}
	}
	return database.PropertyFilter{}
}

// normalizeRooms names unnamed rooms after their type and defaults the type
// to other.
func normalizeRooms(rooms []models.RoomRequest) []models.RoomRequest {
	out := make([]models.RoomRequest, 0, len(rooms))
	for _, r := range rooms {
		r.Name = strings.TrimSpace(r.Name)
		if r.Type == "" {
			r.Type = inspection.RoomOther
		}
		if r.Name == "" {
			r.Name = r.Type.Label()
		}
		out = append(out, r)
	}
	return out
}

// checkUserRole verifies that id names an account with role.
func checkUserRole(ctx context.Context, store *database.Store, id string, role models.Role) error {
	user, err := store.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != role {
		return errors.New(id + " is not a " + string(role))
	}
	return nil
}

// createProperty validates and stores a new property for the caller. Landlords
// always own what they create; admins must name the landlord.
func createProperty(w http.ResponseWriter, r *http.Request, store *database.Store, claims middleware.UserClaims, req models.CreatePropertyRequest) (*models.Property, []models.Room, bool) {
	req.Address = strings.TrimSpace(req.Address)
	if req.Address == "" || req.Type == "" {
		log.Println("❌ Missing required fields")
		utils.RespondError(w, http.StatusBadRequest, "Address and type are required")
		return nil, nil, false
	}
	if !req.Type.IsValid() {
		log.Printf("❌ Invalid property type: %s", req.Type)
		utils.RespondError(w, http.StatusBadRequest, "Type must be 'house', 'flat', or 'bungalow'")
		return nil, nil, false
	}

	landlordID := req.LandlordID
	if claims.Role == models.RoleLandlord {
		landlordID = claims.UserID
	}
	if landlordID == "" {
		utils.RespondError(w, http.StatusBadRequest, "landlord_id is required")
		return nil, nil, false
	}
	if err := checkUserRole(r.Context(), store, landlordID, models.RoleLandlord); err != nil {
		log.Printf("❌ Invalid landlord %s: %v", landlordID, err)
		utils.RespondError(w, http.StatusBadRequest, "landlord_id must name a landlord")
		return nil, nil, false
	}
	if req.AssignedInspector != nil && *req.AssignedInspector != "" {
		if err := checkUserRole(r.Context(), store, *req.AssignedInspector, models.RoleClient); err != nil {
			log.Printf("❌ Invalid inspector %s: %v", *req.AssignedInspector, err)
			utils.RespondError(w, http.StatusBadRequest, "assigned_inspector must name an inspector")
			return nil, nil, false
		}
	} else {
		req.AssignedInspector = nil
	}

	rooms := req.Rooms
	if len(rooms) == 0 {
		rooms = models.DefaultRooms
	}

	now := time.Now().Unix()
	property := &models.Property{
		LandlordID:        landlordID,
		AssignedInspector: req.AssignedInspector,
		Address:           req.Address,
		Type:              req.Type,
		MOTStatus:         models.MOTPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	created, err := store.CreateProperty(r.Context(), property, normalizeRooms(rooms))
	if err != nil {
		log.Printf("❌ Failed to create property: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create property")
		return nil, nil, false
	}

	log.Printf("🏠 Property created: %s (%s, %d rooms) by %s", property.Address, property.Type, len(created), claims.Email)
	return property, created, true
}

// GetProperties lists the properties in the caller's scope with their rooms.
func GetProperties(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceProperties, access.ActionRead)
		if !ok {
			return
		}

		properties, err := store.ListProperties(r.Context(), propertyFilterFor(claims))
		if err != nil {
			log.Printf("❌ Failed to list properties: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list properties")
			return
		}

		ids := make([]string, 0, len(properties))
		for _, p := range properties {
			ids = append(ids, p.ID)
		}
		rooms, err := store.RoomsByProperty(r.Context(), ids)
		if err != nil {
			log.Printf("❌ Failed to load rooms: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list properties")
			return
		}

		now := time.Now()
		resp := make([]models.PropertyResponse, 0, len(properties))
		for i := range properties {
			resp = append(resp, properties[i].ToPropertyResponse(rooms[properties[i].ID], now))
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

func GetProperty(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceProperties, access.ActionRead)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		rooms, err := store.ListRooms(r.Context(), property.ID)
		if err != nil {
			log.Printf("❌ Failed to load rooms for %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load property")
			return
		}
		utils.RespondJSON(w, http.StatusOK, property.ToPropertyResponse(rooms, time.Now()))
	}
}

// CreateProperty adds a property with its rooms. Without a room list the
// default rooms are created.
func CreateProperty(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("📥 REQUEST: POST /api/properties - Create property")

		claims, ok := authorize(w, r, access.ResourceProperties, access.ActionCreate)
		if !ok {
			return
		}

		var req models.CreatePropertyRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			log.Printf("❌ Invalid request body: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		property, rooms, ok := createProperty(w, r, store, claims, req)
		if !ok {
			return
		}
		utils.RespondJSON(w, http.StatusCreated, property.ToPropertyResponse(rooms, time.Now()))
	}
}

// UpdateProperty changes the address, type or assigned inspector. An empty
// assigned_inspector unassigns the property.
func UpdateProperty(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceProperties, access.ActionUpdate)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		var req models.UpdatePropertyRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			log.Printf("❌ Invalid request body: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Address != nil {
			address := strings.TrimSpace(*req.Address)
			if address == "" {
				utils.RespondError(w, http.StatusBadRequest, "Address cannot be empty")
				return
			}
			property.Address = address
		}
		if req.Type != nil {
			if !req.Type.IsValid() {
				utils.RespondError(w, http.StatusBadRequest, "Type must be 'house', 'flat', or 'bungalow'")
				return
			}
			property.Type = *req.Type
		}
		if req.AssignedInspector != nil {
			if *req.AssignedInspector == "" {
				property.AssignedInspector = nil
			} else {
				if err := checkUserRole(r.Context(), store, *req.AssignedInspector, models.RoleClient); err != nil {
					log.Printf("❌ Invalid inspector %s: %v", *req.AssignedInspector, err)
					utils.RespondError(w, http.StatusBadRequest, "assigned_inspector must name an inspector")
					return
				}
				property.AssignedInspector = req.AssignedInspector
			}
		}
		property.UpdatedAt = time.Now().Unix()

		if err := store.UpdateProperty(r.Context(), property); err != nil {
			log.Printf("❌ Failed to update property %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update property")
			return
		}

		rooms, err := store.ListRooms(r.Context(), property.ID)
		if err != nil {
			log.Printf("❌ Failed to load rooms for %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load property")
			return
		}
		log.Printf("✏️  Property updated: %s", property.Address)
		utils.RespondJSON(w, http.StatusOK, property.ToPropertyResponse(rooms, time.Now()))
	}
}

// DeleteProperty removes a property with its rooms, inspections and
// documents, then deletes the stored document files.
func DeleteProperty(store *database.Store, files storage.FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceProperties, access.ActionDelete)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		docs, err := store.ListDocuments(r.Context(), property.ID)
		if err != nil {
			log.Printf("❌ Failed to list documents of %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete property")
			return
		}

		if err := store.DeleteProperty(r.Context(), property.ID); err != nil {
			log.Printf("❌ Failed to delete property %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete property")
			return
		}

		for _, d := range docs {
			if err := files.Delete(r.Context(), d.StorageKey); err != nil {
				log.Printf("⚠️  Failed to delete file %s: %v", d.StorageKey, err)
			}
		}

		log.Printf("🗑️  Property deleted: %s by %s", property.Address, claims.Email)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// AddPropertyRoom appends a room to the property. Open inspections are not
// changed; rooms are added to an inspection through its own endpoint.
func AddPropertyRoom(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceProperties, access.ActionUpdate)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		var req models.RoomRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		room, err := store.AddRoom(r.Context(), property.ID, normalizeRooms([]models.RoomRequest{req})[0], time.Now())
		if err != nil {
			log.Printf("❌ Failed to add room to %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add room")
			return
		}

		log.Printf("🚪 Room added to %s: %s (%s)", property.Address, room.Name, room.Type)
		utils.RespondJSON(w, http.StatusCreated, room)
	}
}

// DeletePropertyRoom removes a room and its checklist items from every open
// inspection of the property.
func DeletePropertyRoom(store *database.Store, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceProperties, access.ActionUpdate)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		removeRoom(w, r, store, events, claims, property, chi.URLParam(r, "roomId"))
	}
}

// removeRoom deletes the room, logs the removal on every open inspection it
// touched and broadcasts their new summaries.
func removeRoom(w http.ResponseWriter, r *http.Request, store *database.Store, events Broadcaster,
	claims middleware.UserClaims, property *models.Property, roomID string) {
	rooms, err := store.ListRooms(r.Context(), property.ID)
	if err != nil {
		log.Printf("❌ Failed to load rooms for %s: %v", property.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to remove room")
		return
	}
	var roomName string
	for _, room := range rooms {
		if room.ID == roomID {
			roomName = room.Name
		}
	}

	updated, err := store.RemoveRoom(r.Context(), property.ID, roomID, time.Now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Room not found")
			return
		}
		log.Printf("❌ Failed to remove room %s: %v", roomID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to remove room")
		return
	}

	who := actor(r.Context(), store, claims)
	for _, rec := range updated {
		helpers.LogRoomRemoved(store.DB(), rec.ID, roomName, who)
		broadcastInspection(events, rec, property)
	}

	log.Printf("🚪 Room removed from %s: %s (%d open inspections updated)", property.Address, roomName, len(updated))
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"updated_inspections": len(updated),
	})
}
