package inspection

// Summary is the rollup of a record's checklist. It is always recomputed from
// the full item list and never patched incrementally.
type Summary struct {
	TotalItems        int `json:"totalItems"`
	CompletedItems    int `json:"completedItems"`
	OkItems           int `json:"okItems"`
	FaultItems        int `json:"faultItems"`
	ActionNeededItems int `json:"actionNeededItems"`
	CriticalIssues    int `json:"criticalIssues"`
}

// Summarize counts items by status. Only Status and Priority are read.
func Summarize(items []ChecklistItem) Summary {
	s := Summary{TotalItems: len(items)}
	for _, item := range items {
		if item.Status != StatusPending {
			s.CompletedItems++
		}
		switch item.Status {
		case StatusOK:
			s.OkItems++
		case StatusFault:
			s.FaultItems++
		case StatusActionNeeded:
			s.ActionNeededItems++
		}
		if item.Status.IsIssue() && item.Priority == PriorityCritical {
			s.CriticalIssues++
		}
	}
	return s
}

// Done reports whether every item has left pending.
func (s Summary) Done() bool {
	return s.CompletedItems == s.TotalItems
}

// Percent returns completion as 0-100. An empty list is 0% complete.
func (s Summary) Percent() float64 {
	if s.TotalItems == 0 {
		return 0
	}
	return float64(s.CompletedItems) / float64(s.TotalItems) * 100
}

// OverallResult is the verdict of a finished inspection.
type OverallResult string

const (
	ResultPassed      OverallResult = "passed"
	ResultFailed      OverallResult = "failed"
	ResultNeedsReview OverallResult = "needs-review"
)

func (r OverallResult) IsValid() bool {
	switch r {
	case ResultPassed, ResultFailed, ResultNeedsReview:
		return true
	}
	return false
}

// Classify derives the overall result from a summary: any critical issue
// fails, otherwise any fault needs review, otherwise the property passes.
func Classify(s Summary) OverallResult {
	switch {
	case s.CriticalIssues > 0:
		return ResultFailed
	case s.FaultItems > 0:
		return ResultNeedsReview
	default:
		return ResultPassed
	}
}

// GeneralSection is the pseudo room id used for property-wide items in
// progress lookups.
const GeneralSection = "general"

// ItemsForSection returns the items belonging to roomID, or the property-wide
// items when roomID is GeneralSection.
func ItemsForSection(items []ChecklistItem, roomID string) []ChecklistItem {
	var out []ChecklistItem
	for _, item := range items {
		if roomID == GeneralSection && item.RoomID == "" {
			out = append(out, item)
		} else if item.RoomID != "" && item.RoomID == roomID {
			out = append(out, item)
		}
	}
	return out
}

// RoomProgress is the completion percentage of one room or the general
// section.
func RoomProgress(items []ChecklistItem, roomID string) float64 {
	return Summarize(ItemsForSection(items, roomID)).Percent()
}
