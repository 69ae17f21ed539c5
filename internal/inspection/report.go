package inspection

import (
	"fmt"
	"strings"
	"time"
)

// RoomSection is one room's block in a report.
type RoomSection struct {
	Room    Room            `json:"room"`
	Items   []ChecklistItem `json:"items"`
	Summary Summary         `json:"summary"`
}

// Report is a finished record grouped for display.
type Report struct {
	RecordID      string          `json:"recordId"`
	Property      Property        `json:"property"`
	InspectorID   string          `json:"inspectorId"`
	InspectorName string          `json:"inspectorName,omitempty"`
	StartedAt     time.Time       `json:"startedAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	Result        OverallResult   `json:"overallResult"`
	Summary       Summary         `json:"summary"`
	General       []ChecklistItem `json:"general"`
	Rooms         []RoomSection   `json:"rooms"`
}

// Assemble groups a completed record's items into general and per-room
// sections. Rooms follow property order and rooms without items are omitted.
// Items whose room is no longer on the property are dropped from the sections
// but still count in the summary.
func Assemble(rec Record, property Property) (Report, error) {
	summary := Summarize(rec.Items)
	if !summary.Done() {
		return Report{}, ErrIncomplete
	}

	rep := Report{
		RecordID:    rec.ID,
		Property:    property,
		InspectorID: rec.InspectorID,
		StartedAt:   rec.StartedAt,
		CompletedAt: rec.CompletedAt,
		Result:      Classify(summary),
		Summary:     summary,
		General:     ItemsForSection(rec.Items, GeneralSection),
		Rooms:       []RoomSection{},
	}
	for _, room := range property.Rooms {
		items := ItemsForSection(rec.Items, room.ID)
		if len(items) == 0 {
			continue
		}
		rep.Rooms = append(rep.Rooms, RoomSection{
			Room:    room,
			Items:   items,
			Summary: Summarize(items),
		})
	}
	return rep, nil
}

func resultLabel(r OverallResult) string {
	return strings.ToUpper(strings.ReplaceAll(string(r), "-", " "))
}

func statusLabel(s ItemStatus) string {
	return strings.ToUpper(strings.Replace(string(s), "-", " ", 1))
}

// Text renders the report as a plain-text download.
func (r Report) Text() string {
	var b strings.Builder

	b.WriteString("MOT Inspection Report\n")
	b.WriteString("=====================\n\n")
	fmt.Fprintf(&b, "Property: %s\n", r.Property.Address)
	fmt.Fprintf(&b, "Type: %s\n", r.Property.Type)
	fmt.Fprintf(&b, "Inspection Date: %s\n", r.StartedAt.Format("2006-01-02"))
	if r.InspectorName != "" {
		fmt.Fprintf(&b, "Inspector: %s\n", r.InspectorName)
	}
	fmt.Fprintf(&b, "Overall Result: %s\n\n", resultLabel(r.Result))

	fmt.Fprintf(&b, "OK Items: %d\n", r.Summary.OkItems)
	fmt.Fprintf(&b, "Faults: %d\n", r.Summary.FaultItems)
	fmt.Fprintf(&b, "Action Needed: %d\n", r.Summary.ActionNeededItems)
	fmt.Fprintf(&b, "Critical Issues: %d\n", r.Summary.CriticalIssues)

	if len(r.General) > 0 {
		b.WriteString("\nGeneral Property Checks\n-----------------------\n")
		writeTextItems(&b, r.General)
	}
	for _, sec := range r.Rooms {
		fmt.Fprintf(&b, "\n%s\n%s\n", sec.Room.Name, strings.Repeat("-", len(sec.Room.Name)))
		writeTextItems(&b, sec.Items)
	}
	return b.String()
}

func writeTextItems(b *strings.Builder, items []ChecklistItem) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s [%s] %s\n", item.Label, strings.ToUpper(string(item.Priority)), statusLabel(item.Status))
		if item.Notes != "" {
			fmt.Fprintf(b, "    Notes: %s\n", item.Notes)
		}
		if item.Fixtures.Applicable && item.Fixtures.Count > 0 {
			fmt.Fprintf(b, "    Fixtures: %d %s\n", item.Fixtures.Count, strings.Replace(item.Fixtures.Type, "-", " ", 1))
		}
		if n := len(item.Visual.Files); item.Visual.Applicable && n > 0 {
			fmt.Fprintf(b, "    Visual evidence: %d file(s)\n", n)
		}
		if item.Damage.Present {
			fmt.Fprintf(b, "    Damage/Wear Noted: %s\n", item.Damage.Notes)
		}
	}
}

// Markdown renders the report for terminal display.
func (r Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# MOT Inspection Report: %s\n\n", resultLabel(r.Result))
	fmt.Fprintf(&b, "**Property:** %s (%s)  \n", r.Property.Address, r.Property.Type)
	fmt.Fprintf(&b, "**Inspection Date:** %s  \n", r.StartedAt.Format("2006-01-02"))
	if r.InspectorName != "" {
		fmt.Fprintf(&b, "**Inspector:** %s  \n", r.InspectorName)
	}
	b.WriteString("\n| OK | Faults | Action Needed | Critical |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n", r.Summary.OkItems, r.Summary.FaultItems,
		r.Summary.ActionNeededItems, r.Summary.CriticalIssues)

	if len(r.General) > 0 {
		b.WriteString("\n## General Property Checks\n\n")
		writeMarkdownItems(&b, r.General)
	}
	for _, sec := range r.Rooms {
		fmt.Fprintf(&b, "\n## %s\n\n", sec.Room.Name)
		writeMarkdownItems(&b, sec.Items)
	}
	return b.String()
}

func writeMarkdownItems(b *strings.Builder, items []ChecklistItem) {
	b.WriteString("| Check | Priority | Status | Notes |\n|---|---|---|---|\n")
	for _, item := range items {
		notes := item.Notes
		if item.Damage.Present {
			if notes != "" {
				notes += "; "
			}
			notes += "damage: " + item.Damage.Notes
		}
		notes = strings.ReplaceAll(notes, "|", "\\|")
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", item.Label, item.Priority, statusLabel(item.Status), notes)
	}
}
