package models

import (
	"time"

	"melhado-backend/internal/inspection"
)

// Inspection is the stored header of an inspection record. The summary
// columns are rewritten from the items on every save.
type Inspection struct {
	ID                string                   `db:"id"`
	PropertyID        string                   `db:"property_id"`
	InspectorID       string                   `db:"inspector_id"`
	Status            inspection.RecordStatus  `db:"status"`
	OverallResult     inspection.OverallResult `db:"overall_result"`
	StartedAt         int64                    `db:"started_at"`
	CompletedAt       *int64                   `db:"completed_at"`
	SubmittedAt       *int64                   `db:"submitted_at"`
	ApprovedBy        *string                  `db:"approved_by"`
	ApprovedAt        *int64                   `db:"approved_at"`
	RejectionReason   *string                  `db:"rejection_reason"`
	TotalItems        int                      `db:"total_items"`
	CompletedItems    int                      `db:"completed_items"`
	OkItems           int                      `db:"ok_items"`
	FaultItems        int                      `db:"fault_items"`
	ActionNeededItems int                      `db:"action_needed_items"`
	CriticalIssues    int                      `db:"critical_issues"`
	ReportDocumentID  *string                  `db:"report_document_id"`
	Version           int                      `db:"version"`
	UpdatedAt         int64                    `db:"updated_at"`
}

// InspectionItem is one stored checklist row. Evidence is kept as JSON.
type InspectionItem struct {
	ID           string                                `db:"id"`
	InspectionID string                                `db:"inspection_id"`
	RoomID       *string                               `db:"room_id"`
	Position     int                                   `db:"position"`
	Label        string                                `db:"label"`
	Description  string                                `db:"description"`
	Category     inspection.Category                   `db:"category"`
	InputType    inspection.InputType                  `db:"input_type"`
	Required     bool                                  `db:"required"`
	Status       inspection.ItemStatus                 `db:"status"`
	Notes        string                                `db:"notes"`
	Value        string                                `db:"value"`
	Options      JSONList[string]                      `db:"options"`
	Priority     inspection.Priority                   `db:"priority"`
	Visual       JSONValue[inspection.VisualEvidence]  `db:"visual_evidence"`
	Fixtures     JSONValue[inspection.FixtureCount]    `db:"fixtures"`
	Damage       JSONValue[inspection.DamageNote]      `db:"damage_or_wear"`
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timePtr(u *int64) *time.Time {
	if u == nil {
		return nil
	}
	t := time.Unix(*u, 0).UTC()
	return &t
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewInspectionRows splits a record into its header and item rows.
func NewInspectionRows(rec inspection.Record, now time.Time) (Inspection, []InspectionItem) {
	summary := inspection.Summarize(rec.Items)
	header := Inspection{
		ID:                rec.ID,
		PropertyID:        rec.PropertyID,
		InspectorID:       rec.InspectorID,
		Status:            rec.Status,
		OverallResult:     rec.OverallResult,
		StartedAt:         rec.StartedAt.Unix(),
		CompletedAt:       unixPtr(rec.CompletedAt),
		SubmittedAt:       unixPtr(rec.SubmittedAt),
		ApprovedBy:        strPtr(rec.ApprovedBy),
		ApprovedAt:        unixPtr(rec.ApprovedAt),
		RejectionReason:   strPtr(rec.RejectionReason),
		TotalItems:        summary.TotalItems,
		CompletedItems:    summary.CompletedItems,
		OkItems:           summary.OkItems,
		FaultItems:        summary.FaultItems,
		ActionNeededItems: summary.ActionNeededItems,
		CriticalIssues:    summary.CriticalIssues,
		Version:           rec.Version,
		UpdatedAt:         now.Unix(),
	}

	items := make([]InspectionItem, 0, len(rec.Items))
	for i, it := range rec.Items {
		items = append(items, InspectionItem{
			ID:           it.ID,
			InspectionID: rec.ID,
			RoomID:       strPtr(it.RoomID),
			Position:     i,
			Label:        it.Label,
			Description:  it.Description,
			Category:     it.Category,
			InputType:    it.Type,
			Required:     it.Required,
			Status:       it.Status,
			Notes:        it.Notes,
			Value:        it.Value,
			Options:      JSONList[string](it.Options),
			Priority:     it.Priority,
			Visual:       JSONValue[inspection.VisualEvidence]{V: it.Visual},
			Fixtures:     JSONValue[inspection.FixtureCount]{V: it.Fixtures},
			Damage:       JSONValue[inspection.DamageNote]{V: it.Damage},
		})
	}
	return header, items
}

// ToRecord rebuilds the in-memory record. Items must be ordered by position.
// The summary is recomputed from the items rather than read from the columns.
func (h *Inspection) ToRecord(items []InspectionItem) inspection.Record {
	rec := inspection.Record{
		ID:              h.ID,
		PropertyID:      h.PropertyID,
		InspectorID:     h.InspectorID,
		StartedAt:       time.Unix(h.StartedAt, 0).UTC(),
		CompletedAt:     timePtr(h.CompletedAt),
		SubmittedAt:     timePtr(h.SubmittedAt),
		Status:          h.Status,
		OverallResult:   h.OverallResult,
		ApprovedBy:      strVal(h.ApprovedBy),
		ApprovedAt:      timePtr(h.ApprovedAt),
		RejectionReason: strVal(h.RejectionReason),
		Version:         h.Version,
		Items:           make([]inspection.ChecklistItem, 0, len(items)),
	}
	for _, row := range items {
		item := inspection.ChecklistItem{
			ID:          row.ID,
			RoomID:      strVal(row.RoomID),
			Label:       row.Label,
			Description: row.Description,
			Category:    row.Category,
			Type:        row.InputType,
			Required:    row.Required,
			Status:      row.Status,
			Notes:       row.Notes,
			Value:       row.Value,
			Options:     []string(row.Options),
			Priority:    row.Priority,
			Visual:      row.Visual.V,
			Fixtures:    row.Fixtures.V,
			Damage:      row.Damage.V,
		}
		if item.Visual.Files == nil {
			item.Visual.Files = []inspection.MediaFile{}
		}
		if item.Damage.Files == nil {
			item.Damage.Files = []inspection.MediaFile{}
		}
		rec.Items = append(rec.Items, item)
	}
	rec.Summary = inspection.Summarize(rec.Items)
	return rec
}

// InspectionResponse is the API view of a record with progress figures.
type InspectionResponse struct {
	inspection.Record
	Progress         float64            `json:"progress"`
	RoomProgress     map[string]float64 `json:"roomProgress"`
	ReportDocumentID *string            `json:"reportDocumentId,omitempty"`
}

func NewInspectionResponse(rec inspection.Record, reportDocumentID *string) InspectionResponse {
	resp := InspectionResponse{
		Record:           rec,
		Progress:         rec.Progress(),
		RoomProgress:     map[string]float64{},
		ReportDocumentID: reportDocumentID,
	}
	seen := map[string]bool{}
	for _, item := range rec.Items {
		section := item.RoomID
		if section == "" {
			section = inspection.GeneralSection
		}
		if seen[section] {
			continue
		}
		seen[section] = true
		resp.RoomProgress[section] = inspection.RoomProgress(rec.Items, section)
	}
	return resp
}

// InspectionSummaryRow is a history list entry.
type InspectionSummaryRow struct {
	ID             string                   `json:"id" db:"id"`
	PropertyID     string                   `json:"property_id" db:"property_id"`
	InspectorID    string                   `json:"inspector_id" db:"inspector_id"`
	InspectorName  string                   `json:"inspector_name" db:"inspector_name"`
	Status         inspection.RecordStatus  `json:"status" db:"status"`
	OverallResult  inspection.OverallResult `json:"overall_result" db:"overall_result"`
	StartedAt      int64                    `json:"started_at" db:"started_at"`
	SubmittedAt    *int64                   `json:"submitted_at,omitempty" db:"submitted_at"`
	TotalItems     int                      `json:"total_items" db:"total_items"`
	CompletedItems int                      `json:"completed_items" db:"completed_items"`
	FaultItems     int                      `json:"fault_items" db:"fault_items"`
	CriticalIssues int                      `json:"critical_issues" db:"critical_issues"`
}

// StartInspectionRequest starts a record for an existing property, or for a
// property described inline (address and type required; landlord_id as for
// a created property).
type StartInspectionRequest struct {
	PropertyID string                  `json:"property_id,omitempty"`
	Address    string                  `json:"address,omitempty"`
	Type       inspection.PropertyType `json:"type,omitempty"`
	LandlordID string                  `json:"landlord_id,omitempty"`
	Rooms      []RoomRequest           `json:"rooms,omitempty"`
}

// ItemUpdateResponse reports whether the item id matched.
type ItemUpdateResponse struct {
	Applied    bool               `json:"applied"`
	Inspection InspectionResponse `json:"inspection"`
}
