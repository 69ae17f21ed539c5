package inspection

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrIncomplete is returned when an operation needs every item to have
	// left pending.
	ErrIncomplete = errors.New("inspection has pending checklist items")

	// ErrInvalidTransition is returned for a status change the lifecycle
	// does not allow.
	ErrInvalidTransition = errors.New("invalid inspection status transition")

	// ErrRecordLocked is returned when mutating a record that was submitted
	// or reviewed.
	ErrRecordLocked = errors.New("inspection record is locked")

	// ErrRoomExists is returned when adding a room whose items are already
	// on the record.
	ErrRoomExists = errors.New("room already on inspection")

	// ErrInvalidUpdate wraps validation failures on item updates.
	ErrInvalidUpdate = errors.New("invalid checklist item update")
)

// RecordStatus is the lifecycle state of an inspection record.
type RecordStatus string

const (
	RecordInProgress RecordStatus = "in-progress"
	RecordCompleted  RecordStatus = "completed"
	RecordSubmitted  RecordStatus = "submitted"
	// RecordApproved and RecordRejected are part of the data model but no
	// operation assigns them yet.
	RecordApproved RecordStatus = "approved"
	RecordRejected RecordStatus = "rejected"
)

func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordInProgress, RecordCompleted, RecordSubmitted, RecordApproved, RecordRejected:
		return true
	}
	return false
}

// CanTransitionTo checks the lifecycle:
//
//	in-progress -> completed (all items left pending)
//	completed   -> submitted (saved as a document)
func (s RecordStatus) CanTransitionTo(target RecordStatus) bool {
	switch s {
	case RecordInProgress:
		return target == RecordCompleted
	case RecordCompleted:
		return target == RecordSubmitted
	}
	return false
}

// Editable reports whether checklist items may still change.
func (s RecordStatus) Editable() bool {
	return s == RecordInProgress || s == RecordCompleted
}

// ChecklistItem is one inspectable fact about a room or the whole property.
type ChecklistItem struct {
	ID          string     `json:"id"`
	RoomID      string     `json:"roomId,omitempty"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Type        InputType  `json:"type"`
	Required    bool       `json:"required"`
	Status      ItemStatus `json:"status"`
	Notes       string     `json:"notes"`
	Value       string     `json:"value,omitempty"`
	Options     []string   `json:"options,omitempty"`
	Priority    Priority   `json:"priority"`

	Visual   VisualEvidence `json:"visualEvidence"`
	Fixtures FixtureCount   `json:"fixtures"`
	Damage   DamageNote     `json:"damageOrWear"`
}

// Record is a single MOT inspection pass over a property.
type Record struct {
	ID            string          `json:"id"`
	PropertyID    string          `json:"propertyId"`
	InspectorID   string          `json:"inspectorId"`
	StartedAt     time.Time       `json:"startedAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
	Status        RecordStatus    `json:"status"`
	OverallResult OverallResult   `json:"overallResult"`
	Items         []ChecklistItem `json:"checklistItems"`
	Summary       Summary         `json:"summary"`

	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`

	// Version counts stored revisions; zero until first saved.
	Version int `json:"version"`
}

// refresh recomputes the summary from scratch and advances an in-progress
// record to completed once nothing is pending.
func (r *Record) refresh(now time.Time) {
	r.Summary = Summarize(r.Items)
	if r.Status == RecordInProgress && r.Summary.TotalItems > 0 && r.Summary.Done() {
		r.Status = RecordCompleted
		t := now
		r.CompletedAt = &t
	}
}

// Item returns the item with id, if present.
func (r *Record) Item(id string) (ChecklistItem, bool) {
	for _, item := range r.Items {
		if item.ID == id {
			return item, true
		}
	}
	return ChecklistItem{}, false
}

func (r *Record) hasRoom(roomID string) bool {
	for _, item := range r.Items {
		if item.RoomID == roomID {
			return true
		}
	}
	return false
}

// RemoveRoom deletes exactly the items owned by roomID and returns how many
// were removed.
func (r *Record) RemoveRoom(roomID string, now time.Time) (int, error) {
	if !r.Status.Editable() {
		return 0, ErrRecordLocked
	}
	if roomID == "" {
		return 0, nil
	}
	kept := r.Items[:0:0]
	removed := 0
	for _, item := range r.Items {
		if item.RoomID == roomID {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	r.Items = kept
	r.refresh(now)
	return removed, nil
}

// ItemUpdate names the fields to replace on one item. Nil fields are left
// untouched.
type ItemUpdate struct {
	Status        *ItemStatus  `json:"status,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
	Value         *string      `json:"value,omitempty"`
	VisualFiles   *[]MediaFile `json:"visualFiles,omitempty"`
	FixtureCount  *int         `json:"fixtureCount,omitempty"`
	DamagePresent *bool        `json:"damagePresent,omitempty"`
	DamageNotes   *string      `json:"damageNotes,omitempty"`
	DamageFiles   *[]MediaFile `json:"damageFiles,omitempty"`
}

// Validate checks field values independent of the target item.
func (u ItemUpdate) Validate() error {
	if u.Status != nil && !u.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidUpdate, *u.Status)
	}
	if u.FixtureCount != nil && *u.FixtureCount < 0 {
		return fmt.Errorf("%w: fixture count must not be negative", ErrInvalidUpdate)
	}
	return nil
}

// Empty reports whether the update names no fields.
func (u ItemUpdate) Empty() bool {
	return u.Status == nil && u.Notes == nil && u.Value == nil && u.VisualFiles == nil &&
		u.FixtureCount == nil && u.DamagePresent == nil && u.DamageNotes == nil && u.DamageFiles == nil
}

// ApplyUpdate replaces the named fields on the item with itemID and
// recomputes the summary. An unknown id is a no-op and reports false.
// Evidence fields aimed at a variant the template marked as not applicable
// are dropped; the other named fields still apply.
func (r *Record) ApplyUpdate(itemID string, u ItemUpdate, now time.Time) (bool, error) {
	if !r.Status.Editable() {
		return false, ErrRecordLocked
	}

	idx := -1
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	if err := u.Validate(); err != nil {
		return false, err
	}

	// A completed record is terminal for the in-progress state.
	if r.Status == RecordCompleted && u.Status != nil && *u.Status == StatusPending {
		return false, fmt.Errorf("%w: completed records cannot return items to pending", ErrInvalidTransition)
	}

	item := &r.Items[idx]
	if u.Status != nil {
		item.Status = *u.Status
	}
	if u.Notes != nil {
		item.Notes = *u.Notes
	}
	if u.Value != nil {
		item.Value = *u.Value
	}
	if u.VisualFiles != nil && item.Visual.Applicable {
		item.Visual.Files = append([]MediaFile{}, (*u.VisualFiles)...)
	}
	if u.FixtureCount != nil {
		item.Fixtures.SetCount(*u.FixtureCount)
	}
	if item.Damage.Trackable {
		if u.DamagePresent != nil {
			item.Damage.Present = *u.DamagePresent
		}
		if u.DamageNotes != nil {
			item.Damage.Notes = *u.DamageNotes
		}
		if u.DamageFiles != nil {
			item.Damage.Files = append([]MediaFile{}, (*u.DamageFiles)...)
		}
	}

	r.refresh(now)
	return true, nil
}

// AttachMedia appends f to the chosen evidence record of itemID. It reports
// false for unknown ids and for evidence kinds the item does not accept.
func (r *Record) AttachMedia(itemID string, kind EvidenceKind, f MediaFile, now time.Time) (bool, error) {
	if !r.Status.Editable() {
		return false, ErrRecordLocked
	}
	for i := range r.Items {
		if r.Items[i].ID != itemID {
			continue
		}
		f.ChecklistItemID = itemID
		var ok bool
		switch kind {
		case EvidenceVisual:
			ok = r.Items[i].Visual.Attach(f)
		case EvidenceDamage:
			ok = r.Items[i].Damage.Attach(f)
		default:
			return false, fmt.Errorf("%w: cannot attach files to %q evidence", ErrInvalidUpdate, kind)
		}
		if ok {
			r.refresh(now)
		}
		return ok, nil
	}
	return false, nil
}

// Complete moves the record to completed. It is idempotent for records that
// already completed on their last mutation.
func (r *Record) Complete(now time.Time) error {
	r.refresh(now)
	switch r.Status {
	case RecordCompleted:
		return nil
	case RecordInProgress:
		return ErrIncomplete
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, RecordCompleted)
}

// Submit finalises a completed record. The overall result is classified from
// a freshly computed summary, never from an earlier cached one.
func (r *Record) Submit(now time.Time) error {
	if r.Status == RecordInProgress {
		r.refresh(now)
	}
	if !r.Status.CanTransitionTo(RecordSubmitted) {
		if r.Status == RecordInProgress {
			return ErrIncomplete
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, RecordSubmitted)
	}
	r.Summary = Summarize(r.Items)
	r.OverallResult = Classify(r.Summary)
	r.Status = RecordSubmitted
	t := now
	r.SubmittedAt = &t
	return nil
}

// Progress is the overall completion percentage.
func (r *Record) Progress() float64 {
	return r.Summary.Percent()
}
