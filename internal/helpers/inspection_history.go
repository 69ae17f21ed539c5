package helpers

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
)

// logInspectionAction inserts one history row. Failures are logged and
// returned, never fatal to the request that caused them.
func logInspectionAction(db *sqlx.DB, entry models.InspectionHistory) error {
	// v7 ids sort by creation time, which orders events within one second.
	entry.ID = uuid.Must(uuid.NewV7()).String()
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO inspection_history (
			id, inspection_id, action_type, actor_id, actor_name, actor_role,
			previous_status, new_status, item_id, item_label, room_name, notes, created_at
		) VALUES (
			:id, :inspection_id, :action_type, :actor_id, :actor_name, :actor_role,
			:previous_status, :new_status, :item_id, :item_label, :room_name, :notes, :created_at
		)
	`

	_, err := db.NamedExec(query, entry)
	if err != nil {
		log.Printf("[HISTORY] Failed to log '%s' action for inspection %s: %v", entry.ActionType, entry.InspectionID, err)
	}
	return err
}

func actorEntry(inspectionID, action string, actor *models.User) models.InspectionHistory {
	role := string(actor.Role)
	return models.InspectionHistory{
		InspectionID: inspectionID,
		ActionType:   action,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		ActorRole:    &role,
	}
}

func ptr(s string) *string {
	return &s
}

// LogInspectionStarted logs when an inspector starts a record
func LogInspectionStarted(db *sqlx.DB, rec inspection.Record, actor *models.User) error {
	entry := actorEntry(rec.ID, "started", actor)
	entry.NewStatus = ptr(string(rec.Status))
	return logInspectionAction(db, entry)
}

// LogItemUpdated logs a checklist item change, with the item's status
// before and after
func LogItemUpdated(db *sqlx.DB, inspectionID string, before, after inspection.ChecklistItem, actor *models.User) error {
	entry := actorEntry(inspectionID, "item_updated", actor)
	entry.ItemID = ptr(after.ID)
	entry.ItemLabel = ptr(after.Label)
	if before.Status != after.Status {
		entry.PreviousStatus = ptr(string(before.Status))
		entry.NewStatus = ptr(string(after.Status))
	}
	if after.Notes != "" && after.Notes != before.Notes {
		entry.Notes = ptr(after.Notes)
	}
	return logInspectionAction(db, entry)
}

// LogMediaAttached logs an uploaded evidence file
func LogMediaAttached(db *sqlx.DB, inspectionID string, item inspection.ChecklistItem, file inspection.MediaFile, actor *models.User) error {
	entry := actorEntry(inspectionID, "media_attached", actor)
	entry.ItemID = ptr(item.ID)
	entry.ItemLabel = ptr(item.Label)
	entry.Notes = ptr(file.Filename)
	return logInspectionAction(db, entry)
}

// LogRoomAdded logs a room added mid-inspection
func LogRoomAdded(db *sqlx.DB, inspectionID string, room inspection.Room, actor *models.User) error {
	entry := actorEntry(inspectionID, "room_added", actor)
	entry.RoomName = ptr(room.Name)
	return logInspectionAction(db, entry)
}

// LogRoomRemoved logs a room removal and how many items went with it
func LogRoomRemoved(db *sqlx.DB, inspectionID, roomName string, actor *models.User) error {
	entry := actorEntry(inspectionID, "room_removed", actor)
	entry.RoomName = ptr(roomName)
	return logInspectionAction(db, entry)
}

// LogInspectionCompleted logs the move to completed
func LogInspectionCompleted(db *sqlx.DB, rec inspection.Record, actor *models.User) error {
	entry := actorEntry(rec.ID, "completed", actor)
	entry.PreviousStatus = ptr(string(inspection.RecordInProgress))
	entry.NewStatus = ptr(string(rec.Status))
	return logInspectionAction(db, entry)
}

// LogInspectionSubmitted logs the submission with its overall result
func LogInspectionSubmitted(db *sqlx.DB, rec inspection.Record, actor *models.User) error {
	entry := actorEntry(rec.ID, "submitted", actor)
	entry.PreviousStatus = ptr(string(inspection.RecordCompleted))
	entry.NewStatus = ptr(string(rec.Status))
	entry.Notes = ptr(string(rec.OverallResult))
	return logInspectionAction(db, entry)
}
