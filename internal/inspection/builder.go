package inspection

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRoomNotFound is returned when a room id is not part of the property.
var ErrRoomNotFound = errors.New("room not found")

// Builder expands catalog templates into checklist items.
type Builder struct {
	Catalog CatalogProvider
	NewID   func() string
}

// NewBuilder returns a builder that assigns random UUIDs.
func NewBuilder(catalog CatalogProvider) *Builder {
	return &Builder{Catalog: catalog, NewID: uuid.NewString}
}

func (b *Builder) catalog() *Catalog {
	if b.Catalog == nil {
		return DefaultCatalog()
	}
	if c := b.Catalog.Current(); c != nil {
		return c
	}
	return DefaultCatalog()
}

func (b *Builder) id() string {
	if b.NewID == nil {
		return uuid.NewString()
	}
	return b.NewID()
}

func (b *Builder) newItem(t Template, roomID string) ChecklistItem {
	return ChecklistItem{
		ID:          b.id(),
		RoomID:      roomID,
		Label:       t.Label,
		Description: t.Description,
		Category:    t.Category,
		Type:        t.Type,
		Required:    t.Required,
		Status:      StatusPending,
		Options:     append([]string(nil), t.Options...),
		Priority:    t.Priority,
		Visual:      NewVisualEvidence(t.HasVisual),
		Fixtures:    NewFixtureCount(t.HasFixtures, t.FixturesType, t.FixturesOptions),
		Damage:      NewDamageNote(t.HasDamageOrWear),
	}
}

// ItemsForRoom expands the room's template list. Unknown room types use the
// "other" templates.
func (b *Builder) ItemsForRoom(room Room) []ChecklistItem {
	return b.itemsFor(b.catalog(), room)
}

func (b *Builder) itemsFor(cat *Catalog, room Room) []ChecklistItem {
	templates := cat.ForRoom(room.Type)
	items := make([]ChecklistItem, 0, len(templates))
	for _, t := range templates {
		items = append(items, b.newItem(t, room.ID))
	}
	return items
}

// Build creates an in-progress record for property. General checks come
// first, then each room in property order. The whole record is expanded from
// one catalog snapshot.
func (b *Builder) Build(property Property, inspectorID string, now time.Time) Record {
	cat := b.catalog()

	items := make([]ChecklistItem, 0, len(cat.General())+len(property.Rooms)*6)
	for _, t := range cat.General() {
		items = append(items, b.newItem(t, ""))
	}
	for _, room := range property.Rooms {
		items = append(items, b.itemsFor(cat, room)...)
	}

	return Record{
		ID:            b.id(),
		PropertyID:    property.ID,
		InspectorID:   inspectorID,
		StartedAt:     now,
		Status:        RecordInProgress,
		OverallResult: ResultNeedsReview,
		Items:         items,
		Summary:       Summarize(items),
	}
}

// AddRoom appends the room's items to an in-progress record.
func (b *Builder) AddRoom(rec *Record, room Room, now time.Time) error {
	if rec.Status != RecordInProgress {
		return fmt.Errorf("%w: rooms can only be added while in progress", ErrRecordLocked)
	}
	if room.ID == "" {
		return fmt.Errorf("%w: room id is required", ErrInvalidUpdate)
	}
	if rec.hasRoom(room.ID) {
		return ErrRoomExists
	}
	rec.Items = append(rec.Items, b.ItemsForRoom(room)...)
	rec.refresh(now)
	return nil
}
