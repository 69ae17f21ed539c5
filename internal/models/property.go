package models

import (
	"time"

	"melhado-backend/internal/inspection"
)

// MOTStatus is the headline compliance state shown on a property card.
type MOTStatus string

const (
	MOTPassed      MOTStatus = "passed"
	MOTFailed      MOTStatus = "failed"
	MOTNeedsReview MOTStatus = "needs-review"
	MOTPending     MOTStatus = "pending"
	MOTOverdue     MOTStatus = "overdue"
)

type Property struct {
	ID                string                  `json:"id" db:"id"`
	LandlordID        string                  `json:"landlord_id" db:"landlord_id"`
	AssignedInspector *string                 `json:"assigned_inspector,omitempty" db:"assigned_inspector"`
	Address           string                  `json:"address" db:"address"`
	Type              inspection.PropertyType `json:"type" db:"type"`
	MOTStatus         MOTStatus               `json:"mot_status" db:"mot_status"`
	NextDue           *int64                  `json:"next_due,omitempty" db:"next_due"`
	CreatedAt         int64                   `json:"created_at" db:"created_at"`
	UpdatedAt         int64                   `json:"updated_at" db:"updated_at"`
}

type Room struct {
	ID         string              `json:"id" db:"id"`
	PropertyID string              `json:"property_id" db:"property_id"`
	Name       string              `json:"name" db:"name"`
	Type       inspection.RoomType `json:"type" db:"type"`
	Position   int                 `json:"position" db:"position"`
	CreatedAt  int64               `json:"created_at" db:"created_at"`
}

// DefaultRooms are created for a property added without an explicit room list.
var DefaultRooms = []RoomRequest{
	{Name: "Kitchen", Type: inspection.RoomKitchen},
	{Name: "Living Room", Type: inspection.RoomLivingRoom},
	{Name: "Bedroom", Type: inspection.RoomBedroom},
	{Name: "Bathroom", Type: inspection.RoomBathroom},
}

// ToSubject converts the stored property and its ordered rooms into the value
// the inspection core expands.
func (p *Property) ToSubject(rooms []Room) inspection.Property {
	subject := inspection.Property{
		ID:      p.ID,
		Address: p.Address,
		Type:    p.Type,
		Rooms:   make([]inspection.Room, 0, len(rooms)),
	}
	for _, r := range rooms {
		subject.Rooms = append(subject.Rooms, inspection.Room{ID: r.ID, Name: r.Name, Type: r.Type})
	}
	return subject
}

type PropertyResponse struct {
	ID                string                  `json:"id"`
	LandlordID        string                  `json:"landlord_id"`
	AssignedInspector *string                 `json:"assigned_inspector,omitempty"`
	Address           string                  `json:"address"`
	Type              inspection.PropertyType `json:"type"`
	MOTStatus         MOTStatus               `json:"mot_status"`
	NextDue           *int64                  `json:"next_due,omitempty"`
	NextDueIso        *string                 `json:"next_due_iso,omitempty"`
	LastUpdatedIso    string                  `json:"last_updated_iso"`
	Rooms             []Room                  `json:"rooms"`
}

// ToPropertyResponse renders the property with its rooms. A pending property
// past its due date is reported as overdue.
func (p *Property) ToPropertyResponse(rooms []Room, now time.Time) PropertyResponse {
	resp := PropertyResponse{
		ID:                p.ID,
		LandlordID:        p.LandlordID,
		AssignedInspector: p.AssignedInspector,
		Address:           p.Address,
		Type:              p.Type,
		MOTStatus:         p.EffectiveStatus(now),
		NextDue:           p.NextDue,
		LastUpdatedIso:    time.Unix(p.UpdatedAt, 0).UTC().Format(time.RFC3339),
		Rooms:             rooms,
	}
	if resp.Rooms == nil {
		resp.Rooms = []Room{}
	}
	if p.NextDue != nil {
		iso := time.Unix(*p.NextDue, 0).UTC().Format(time.RFC3339)
		resp.NextDueIso = &iso
	}
	return resp
}

// EffectiveStatus is the stored status, or overdue once the next MOT date has
// passed without a newer inspection.
func (p *Property) EffectiveStatus(now time.Time) MOTStatus {
	if p.NextDue != nil && *p.NextDue < now.Unix() {
		return MOTOverdue
	}
	if p.MOTStatus == "" {
		return MOTPending
	}
	return p.MOTStatus
}

type RoomRequest struct {
	Name string              `json:"name"`
	Type inspection.RoomType `json:"type"`
}

type CreatePropertyRequest struct {
	Address           string                  `json:"address"`
	Type              inspection.PropertyType `json:"type"`
	LandlordID        string                  `json:"landlord_id,omitempty"`
	AssignedInspector *string                 `json:"assigned_inspector,omitempty"`
	Rooms             []RoomRequest           `json:"rooms,omitempty"`
}

type UpdatePropertyRequest struct {
	Address           *string                  `json:"address,omitempty"`
	Type              *inspection.PropertyType `json:"type,omitempty"`
	AssignedInspector *string                  `json:"assigned_inspector,omitempty"`
}

// MOTStatusFor maps a submitted inspection's result onto the property status.
func MOTStatusFor(result inspection.OverallResult) MOTStatus {
	switch result {
	case inspection.ResultPassed:
		return MOTPassed
	case inspection.ResultFailed:
		return MOTFailed
	}
	return MOTNeedsReview
}
