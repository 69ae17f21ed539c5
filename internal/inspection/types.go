// Package inspection holds the MOT checklist core: the template catalog,
// record construction, item mutation, summary rollups and report assembly.
//
// Nothing in this package performs I/O. Records are plain values owned by the
// caller; persistence and transport live in the database and handlers packages.
package inspection

import "time"

// RoomType identifies which room template a room expands to.
type RoomType string

const (
	RoomKitchen      RoomType = "kitchen"
	RoomBedroom      RoomType = "bedroom"
	RoomBathroom     RoomType = "bathroom"
	RoomLivingRoom   RoomType = "living-room"
	RoomLoft         RoomType = "loft"
	RoomGarden       RoomType = "garden"
	RoomHallway      RoomType = "hallway"
	RoomDiningRoom   RoomType = "dining-room"
	RoomUtility      RoomType = "utility"
	RoomConservatory RoomType = "conservatory"
	RoomOffice       RoomType = "office"
	RoomOther        RoomType = "other"
)

var roomLabels = map[RoomType]string{
	RoomKitchen:      "Kitchen",
	RoomBedroom:      "Bedroom",
	RoomBathroom:     "Bathroom",
	RoomLivingRoom:   "Living Room",
	RoomHallway:      "Hallway",
	RoomDiningRoom:   "Dining Room",
	RoomUtility:      "Utility Room",
	RoomConservatory: "Conservatory",
	RoomOffice:       "Office",
	RoomLoft:         "Loft",
	RoomGarden:       "Garden",
	RoomOther:        "Other",
}

// IsValid returns true if the room type is a recognized value.
func (t RoomType) IsValid() bool {
	_, ok := roomLabels[t]
	return ok
}

// Label returns the display label used when a room is named after its type.
func (t RoomType) Label() string {
	if l, ok := roomLabels[t]; ok {
		return l
	}
	return roomLabels[RoomOther]
}

// PropertyType is the kind of building being inspected.
type PropertyType string

const (
	PropertyHouse    PropertyType = "house"
	PropertyFlat     PropertyType = "flat"
	PropertyBungalow PropertyType = "bungalow"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyHouse, PropertyFlat, PropertyBungalow:
		return true
	}
	return false
}

// Category groups checklist items for display.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryKitchen    Category = "kitchen"
	CategoryBedroom    Category = "bedroom"
	CategoryBathroom   Category = "bathroom"
	CategoryLivingRoom Category = "living-room"
	CategoryLoft       Category = "loft"
	CategoryGarden     Category = "garden"
	CategorySafety     Category = "safety"
	CategoryElectrical Category = "electrical"
	CategoryPlumbing   Category = "plumbing"
	CategoryHeating    Category = "heating"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryGeneral, CategoryKitchen, CategoryBedroom, CategoryBathroom,
		CategoryLivingRoom, CategoryLoft, CategoryGarden, CategorySafety,
		CategoryElectrical, CategoryPlumbing, CategoryHeating:
		return true
	}
	return false
}

// InputType tags how an item's value is captured.
type InputType string

const (
	InputBoolean  InputType = "boolean"
	InputText     InputType = "text"
	InputMedia    InputType = "media"
	InputCount    InputType = "count"
	InputDropdown InputType = "dropdown"
)

func (t InputType) IsValid() bool {
	switch t {
	case InputBoolean, InputText, InputMedia, InputCount, InputDropdown:
		return true
	}
	return false
}

// ItemStatus is the inspector's verdict on a single checklist item.
type ItemStatus string

const (
	StatusPending       ItemStatus = "pending"
	StatusOK            ItemStatus = "ok"
	StatusFault         ItemStatus = "fault"
	StatusActionNeeded  ItemStatus = "action-needed"
	StatusNotApplicable ItemStatus = "not-applicable"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusOK, StatusFault, StatusActionNeeded, StatusNotApplicable:
		return true
	}
	return false
}

// IsIssue reports whether the status counts towards critical issues.
func (s ItemStatus) IsIssue() bool {
	return s == StatusFault || s == StatusActionNeeded
}

// Priority ranks the severity of a failing item.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// MediaType classifies an attached file.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

// MediaFile is an uploaded attachment referenced by a checklist item.
type MediaFile struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Type            MediaType `json:"type"`
	Filename        string    `json:"filename"`
	UploadedAt      time.Time `json:"uploadedAt"`
	Description     string    `json:"description,omitempty"`
	FileSize        int64     `json:"fileSize"`
	MimeType        string    `json:"mimeType"`
	ChecklistItemID string    `json:"checklistItemId,omitempty"`
}

// Room is a single inspectable space within a property.
type Room struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type RoomType `json:"type"`
}

// Property is the subject of an inspection: an address and its ordered rooms.
type Property struct {
	ID      string       `json:"id"`
	Address string       `json:"address"`
	Type    PropertyType `json:"type"`
	Rooms   []Room       `json:"rooms"`
}

// RoomIndex returns the position of roomID in the property, or -1.
func (p Property) RoomIndex(roomID string) int {
	for i, r := range p.Rooms {
		if r.ID == roomID {
			return i
		}
	}
	return -1
}
