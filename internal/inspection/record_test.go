package inspection

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func testProperty() Property {
	return Property{
		ID:      "prop-1",
		Address: "12 Acacia Avenue, Leeds",
		Type:    PropertyHouse,
		Rooms: []Room{
			{ID: "room-kitchen", Name: "Kitchen", Type: RoomKitchen},
			{ID: "room-bath", Name: "Bathroom", Type: RoomBathroom},
		},
	}
}

func newTestBuilder() *Builder {
	return &Builder{Catalog: DefaultCatalog(), NewID: sequentialIDs()}
}

func TestBuild_KitchenBathroom(t *testing.T) {
	cat := DefaultCatalog()
	b := &Builder{Catalog: cat, NewID: sequentialIDs()}

	rec := b.Build(testProperty(), "inspector-1", testNow)

	want := len(cat.General()) + len(cat.ForRoom(RoomKitchen)) + len(cat.ForRoom(RoomBathroom))
	if len(rec.Items) != want {
		t.Fatalf("len(Items) = %d, want %d", len(rec.Items), want)
	}
	if want != 15 {
		t.Errorf("default catalog expands Kitchen+Bathroom to %d items, want 15", want)
	}

	seen := make(map[string]bool)
	for _, item := range rec.Items {
		if seen[item.ID] {
			t.Errorf("duplicate item id %q", item.ID)
		}
		seen[item.ID] = true
		if item.Status != StatusPending {
			t.Errorf("item %q status = %q, want pending", item.Label, item.Status)
		}
		if item.Notes != "" {
			t.Errorf("item %q notes = %q, want empty", item.Label, item.Notes)
		}
	}
	if seen[rec.ID] {
		t.Errorf("record id %q collides with an item id", rec.ID)
	}

	// General first, then rooms in property order.
	for i, item := range rec.Items[:4] {
		if item.RoomID != "" {
			t.Errorf("Items[%d].RoomID = %q, want general item", i, item.RoomID)
		}
	}
	for i, item := range rec.Items[4:10] {
		if item.RoomID != "room-kitchen" {
			t.Errorf("Items[%d].RoomID = %q, want room-kitchen", i+4, item.RoomID)
		}
	}
	for i, item := range rec.Items[10:] {
		if item.RoomID != "room-bath" {
			t.Errorf("Items[%d].RoomID = %q, want room-bath", i+10, item.RoomID)
		}
	}

	if rec.Status != RecordInProgress {
		t.Errorf("Status = %q, want %q", rec.Status, RecordInProgress)
	}
	if rec.Summary != Summarize(rec.Items) {
		t.Errorf("Summary = %+v, want recomputed %+v", rec.Summary, Summarize(rec.Items))
	}
}

func TestBuild_EvidenceFlags(t *testing.T) {
	b := newTestBuilder()
	items := b.ItemsForRoom(Room{ID: "r1", Name: "Bathroom", Type: RoomBathroom})

	var pressure ChecklistItem
	for _, item := range items {
		if item.Label == "Water Pressure" {
			pressure = item
		}
	}
	if pressure.ID == "" {
		t.Fatal("Water Pressure item not built")
	}
	if pressure.Visual.Applicable {
		t.Error("Water Pressure visual evidence should not be applicable")
	}
	if !pressure.Fixtures.Applicable || pressure.Fixtures.Type != "taps" {
		t.Errorf("Water Pressure fixtures = %+v, want applicable taps", pressure.Fixtures)
	}
	if pressure.Damage.Trackable {
		t.Error("Water Pressure damage should not be trackable")
	}
}

func TestBuild_UnknownRoomTypeFallsBack(t *testing.T) {
	b := newTestBuilder()
	items := b.ItemsForRoom(Room{ID: "r1", Name: "Cellar", Type: RoomType("cellar")})
	other := DefaultCatalog().ForRoom(RoomOther)
	if len(items) != len(other) {
		t.Fatalf("len(items) = %d, want %d", len(items), len(other))
	}
	for i := range items {
		if items[i].Label != other[i].Label {
			t.Errorf("items[%d].Label = %q, want %q", i, items[i].Label, other[i].Label)
		}
	}
}

// rotatingCatalog hands out a different catalog on every call.
type rotatingCatalog struct {
	catalogs []*Catalog
	calls    int
}

func (r *rotatingCatalog) Current() *Catalog {
	c := r.catalogs[r.calls%len(r.catalogs)]
	r.calls++
	return c
}

func TestBuild_UsesOneCatalogSnapshot(t *testing.T) {
	reloaded, err := ParseCatalog([]byte(`
[[rooms.kitchen]]
label = "Reloaded Kitchen Check"
category = "kitchen"
type = "boolean"
priority = "low"
`))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	provider := &rotatingCatalog{catalogs: []*Catalog{DefaultCatalog(), reloaded}}
	b := &Builder{Catalog: provider, NewID: sequentialIDs()}

	rec := b.Build(testProperty(), "inspector-1", testNow)
	if provider.calls != 1 {
		t.Errorf("Build() read the catalog %d times, want 1", provider.calls)
	}
	want := len(DefaultCatalog().General()) + len(DefaultCatalog().ForRoom(RoomKitchen)) + len(DefaultCatalog().ForRoom(RoomBathroom))
	if len(rec.Items) != want {
		t.Errorf("len(Items) = %d, want %d from the default catalog", len(rec.Items), want)
	}
	for _, item := range rec.Items {
		if item.Label == "Reloaded Kitchen Check" {
			t.Fatal("record mixes two catalogs")
		}
	}
}

func TestRemoveRoom(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)

	var keep []string
	for _, item := range rec.Items {
		if item.RoomID != "room-kitchen" {
			keep = append(keep, item.ID)
		}
	}

	removed, err := rec.RemoveRoom("room-kitchen", testNow)
	if err != nil {
		t.Fatalf("RemoveRoom() error = %v", err)
	}
	if removed != 6 {
		t.Errorf("RemoveRoom() removed %d, want 6", removed)
	}

	var got []string
	for _, item := range rec.Items {
		got = append(got, item.ID)
	}
	if !reflect.DeepEqual(got, keep) {
		t.Errorf("remaining ids = %v, want %v", got, keep)
	}
	if rec.Summary.TotalItems != len(keep) {
		t.Errorf("Summary.TotalItems = %d, want %d", rec.Summary.TotalItems, len(keep))
	}
}

func TestAddRoom(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)
	before := len(rec.Items)

	if err := b.AddRoom(&rec, Room{ID: "room-bed", Name: "Bedroom", Type: RoomBedroom}, testNow); err != nil {
		t.Fatalf("AddRoom() error = %v", err)
	}
	if got, want := len(rec.Items), before+5; got != want {
		t.Errorf("len(Items) = %d, want %d", got, want)
	}
	if rec.Summary.TotalItems != len(rec.Items) {
		t.Errorf("Summary.TotalItems = %d, want %d", rec.Summary.TotalItems, len(rec.Items))
	}

	err := b.AddRoom(&rec, Room{ID: "room-bed", Name: "Bedroom", Type: RoomBedroom}, testNow)
	if !errors.Is(err, ErrRoomExists) {
		t.Errorf("AddRoom() duplicate error = %v, want ErrRoomExists", err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestApplyUpdate_UnknownIDIsNoop(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)
	before := append([]ChecklistItem(nil), rec.Items...)
	summary := rec.Summary

	applied, err := rec.ApplyUpdate("does-not-exist", ItemUpdate{Status: ptr(StatusOK)}, testNow)
	if err != nil {
		t.Fatalf("ApplyUpdate() error = %v", err)
	}
	if applied {
		t.Error("ApplyUpdate() applied = true, want false")
	}
	if !reflect.DeepEqual(rec.Items, before) {
		t.Error("ApplyUpdate() with unknown id changed the items")
	}
	if rec.Summary != summary {
		t.Errorf("Summary = %+v, want unchanged %+v", rec.Summary, summary)
	}
}

func TestApplyUpdate_ReplacesNamedFieldsOnly(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)
	target := rec.Items[2] // Smoke Detectors

	_, err := rec.ApplyUpdate(target.ID, ItemUpdate{Notes: ptr("hallway unit chirping")}, testNow)
	if err != nil {
		t.Fatalf("ApplyUpdate() error = %v", err)
	}
	_, err = rec.ApplyUpdate(target.ID, ItemUpdate{Status: ptr(StatusFault), FixtureCount: ptr(3)}, testNow)
	if err != nil {
		t.Fatalf("ApplyUpdate() error = %v", err)
	}

	got, _ := rec.Item(target.ID)
	if got.Notes != "hallway unit chirping" {
		t.Errorf("Notes = %q, want kept", got.Notes)
	}
	if got.Status != StatusFault {
		t.Errorf("Status = %q, want fault", got.Status)
	}
	if got.Fixtures.Count != 3 {
		t.Errorf("Fixtures.Count = %d, want 3", got.Fixtures.Count)
	}
	if rec.Summary.FaultItems != 1 || rec.Summary.CriticalIssues != 1 {
		t.Errorf("Summary = %+v, want one critical fault", rec.Summary)
	}
}

func TestApplyUpdate_DropsNonApplicableEvidence(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)

	var pressureID string
	for _, item := range rec.Items {
		if item.Label == "Water Pressure" {
			pressureID = item.ID
		}
	}

	files := []MediaFile{{ID: "f1", Filename: "tap.jpg"}}
	applied, err := rec.ApplyUpdate(pressureID, ItemUpdate{
		Status:        ptr(StatusOK),
		VisualFiles:   &files,
		DamagePresent: ptr(true),
	}, testNow)
	if err != nil || !applied {
		t.Fatalf("ApplyUpdate() = %v, %v; want true, nil", applied, err)
	}

	got, _ := rec.Item(pressureID)
	if got.Status != StatusOK {
		t.Errorf("Status = %q, want ok", got.Status)
	}
	if len(got.Visual.Files) != 0 {
		t.Errorf("Visual.Files = %v, want none", got.Visual.Files)
	}
	if got.Damage.Present {
		t.Error("Damage.Present set on non-trackable item")
	}
}

func TestApplyUpdate_InvalidValues(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)
	id := rec.Items[0].ID

	if _, err := rec.ApplyUpdate(id, ItemUpdate{Status: ptr(ItemStatus("broken"))}, testNow); !errors.Is(err, ErrInvalidUpdate) {
		t.Errorf("unknown status error = %v, want ErrInvalidUpdate", err)
	}
	if _, err := rec.ApplyUpdate(id, ItemUpdate{FixtureCount: ptr(-1)}, testNow); !errors.Is(err, ErrInvalidUpdate) {
		t.Errorf("negative count error = %v, want ErrInvalidUpdate", err)
	}

	// Unknown ids are a no-op whatever the update holds.
	applied, err := rec.ApplyUpdate("does-not-exist", ItemUpdate{Status: ptr(ItemStatus("broken"))}, testNow)
	if applied || err != nil {
		t.Errorf("invalid update of unknown id = %v, %v; want false, nil", applied, err)
	}
}

func completeAll(t *testing.T, rec *Record, status ItemStatus) {
	t.Helper()
	for _, item := range rec.Items {
		if _, err := rec.ApplyUpdate(item.ID, ItemUpdate{Status: ptr(status)}, testNow); err != nil {
			t.Fatalf("ApplyUpdate(%s) error = %v", item.ID, err)
		}
	}
}

func TestLifecycle(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)

	if err := rec.Complete(testNow); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Complete() on pending record error = %v, want ErrIncomplete", err)
	}
	if err := rec.Submit(testNow); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Submit() on pending record error = %v, want ErrIncomplete", err)
	}

	completeAll(t, &rec, StatusOK)
	if rec.Status != RecordCompleted {
		t.Fatalf("Status = %q, want completed after last item", rec.Status)
	}
	if rec.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
	if err := rec.Complete(testNow); err != nil {
		t.Errorf("Complete() on completed record error = %v", err)
	}

	_, err := rec.ApplyUpdate(rec.Items[0].ID, ItemUpdate{Status: ptr(StatusPending)}, testNow)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reset to pending error = %v, want ErrInvalidTransition", err)
	}

	// A late fault must be reflected in the submitted result.
	if _, err := rec.ApplyUpdate(rec.Items[0].ID, ItemUpdate{Status: ptr(StatusFault)}, testNow); err != nil {
		t.Fatalf("ApplyUpdate() error = %v", err)
	}
	rec.OverallResult = ResultPassed
	later := testNow.Add(time.Hour)
	if err := rec.Submit(later); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if rec.OverallResult != ResultNeedsReview {
		t.Errorf("OverallResult = %q, want %q", rec.OverallResult, ResultNeedsReview)
	}
	if rec.SubmittedAt == nil || !rec.SubmittedAt.Equal(later) {
		t.Errorf("SubmittedAt = %v, want %v", rec.SubmittedAt, later)
	}

	if _, err := rec.ApplyUpdate(rec.Items[1].ID, ItemUpdate{Notes: ptr("late")}, testNow); !errors.Is(err, ErrRecordLocked) {
		t.Errorf("ApplyUpdate() after submit error = %v, want ErrRecordLocked", err)
	}
	if err := rec.Submit(later); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Submit() error = %v, want ErrInvalidTransition", err)
	}
}

func TestRecordStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to RecordStatus
		want     bool
	}{
		{RecordInProgress, RecordCompleted, true},
		{RecordInProgress, RecordSubmitted, false},
		{RecordCompleted, RecordSubmitted, true},
		{RecordCompleted, RecordInProgress, false},
		{RecordSubmitted, RecordApproved, false},
		{RecordApproved, RecordRejected, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAttachMedia(t *testing.T) {
	b := newTestBuilder()
	rec := b.Build(testProperty(), "inspector-1", testNow)
	address := rec.Items[0] // visual only

	ok, err := rec.AttachMedia(address.ID, EvidenceVisual, MediaFile{ID: "m1"}, testNow)
	if err != nil || !ok {
		t.Fatalf("AttachMedia(visual) = %v, %v; want true, nil", ok, err)
	}
	ok, err = rec.AttachMedia(address.ID, EvidenceDamage, MediaFile{ID: "m2"}, testNow)
	if err != nil || ok {
		t.Errorf("AttachMedia(damage) on non-trackable = %v, %v; want false, nil", ok, err)
	}
	if ok, _ := rec.AttachMedia("missing", EvidenceVisual, MediaFile{ID: "m3"}, testNow); ok {
		t.Error("AttachMedia() on unknown id = true, want false")
	}

	got, _ := rec.Item(address.ID)
	if len(got.Visual.Files) != 1 || got.Visual.Files[0].ChecklistItemID != address.ID {
		t.Errorf("Visual.Files = %+v, want one file linked to item", got.Visual.Files)
	}
}
