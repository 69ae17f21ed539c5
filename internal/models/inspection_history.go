package models

import (
	"fmt"
	"time"
)

// InspectionHistory is an audit log entry for an inspection record.
type InspectionHistory struct {
	ID           string `json:"id" db:"id"`
	InspectionID string `json:"inspection_id" db:"inspection_id"`

	// Action information
	ActionType string  `json:"action_type" db:"action_type"` // 'started', 'item_updated', 'media_attached', 'room_added', 'room_removed', 'completed', 'submitted'
	ActorID    string  `json:"actor_id" db:"actor_id"`
	ActorName  string  `json:"actor_name" db:"actor_name"`
	ActorRole  *string `json:"actor_role,omitempty" db:"actor_role"`

	// State snapshots (what changed)
	PreviousStatus *string `json:"previous_status,omitempty" db:"previous_status"`
	NewStatus      *string `json:"new_status,omitempty" db:"new_status"`
	ItemID         *string `json:"item_id,omitempty" db:"item_id"`
	ItemLabel      *string `json:"item_label,omitempty" db:"item_label"`
	RoomName       *string `json:"room_name,omitempty" db:"room_name"`

	// Additional context
	Notes *string `json:"notes,omitempty" db:"notes"`

	CreatedAt int64 `json:"created_at" db:"created_at"`
}

type InspectionHistoryResponse struct {
	InspectionHistory
	ActionTypeLabel string `json:"action_type_label"`
	Description     string `json:"description"`
	CreatedAtIso    string `json:"created_at_iso"`
}

func (h *InspectionHistory) ToHistoryResponse() InspectionHistoryResponse {
	return InspectionHistoryResponse{
		InspectionHistory: *h,
		ActionTypeLabel:   getActionTypeLabel(h.ActionType),
		Description:       h.BuildDescription(),
		CreatedAtIso:      time.Unix(h.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}

// BuildDescription creates a human-readable description of the history event
func (h *InspectionHistory) BuildDescription() string {
	switch h.ActionType {
	case "started":
		return "Inspection started by " + h.ActorName

	case "item_updated":
		label := "checklist item"
		if h.ItemLabel != nil {
			label = *h.ItemLabel
		}
		if h.NewStatus != nil {
			return fmt.Sprintf("Marked %s as %s", label, *h.NewStatus)
		}
		return "Updated " + label

	case "media_attached":
		if h.ItemLabel != nil {
			return "Attached evidence to " + *h.ItemLabel
		}
		return "Attached evidence"

	case "room_added":
		if h.RoomName != nil {
			return "Added room " + *h.RoomName
		}
		return "Added room"

	case "room_removed":
		if h.RoomName != nil {
			return "Removed room " + *h.RoomName + " and its checklist items"
		}
		return "Removed room"

	case "completed":
		return "All checklist items completed"

	case "submitted":
		if h.Notes != nil && *h.Notes != "" {
			return "Submitted - Result: " + *h.Notes
		}
		return "Submitted"

	default:
		return "Modified"
	}
}

// getActionTypeLabel returns a human-readable label for the action type
func getActionTypeLabel(actionType string) string {
	labels := map[string]string{
		"started":        "Started",
		"item_updated":   "Item Updated",
		"media_attached": "Evidence Attached",
		"room_added":     "Room Added",
		"room_removed":   "Room Removed",
		"completed":      "Completed",
		"submitted":      "Submitted",
	}

	if label, ok := labels[actionType]; ok {
		return label
	}
	return actionType
}
