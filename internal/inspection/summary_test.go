package inspection

import (
	"testing"
)

func itemsWith(statuses map[ItemStatus]int, priority Priority) []ChecklistItem {
	var items []ChecklistItem
	for status, n := range statuses {
		for i := 0; i < n; i++ {
			items = append(items, ChecklistItem{Status: status, Priority: priority})
		}
	}
	return items
}

func TestSummarize_Counts(t *testing.T) {
	tests := []struct {
		name  string
		items []ChecklistItem
		want  Summary
	}{
		{
			name:  "empty",
			items: nil,
			want:  Summary{},
		},
		{
			name:  "all pending",
			items: itemsWith(map[ItemStatus]int{StatusPending: 4}, PriorityHigh),
			want:  Summary{TotalItems: 4},
		},
		{
			name:  "not applicable counts as completed",
			items: itemsWith(map[ItemStatus]int{StatusNotApplicable: 2, StatusPending: 1}, PriorityLow),
			want:  Summary{TotalItems: 3, CompletedItems: 2},
		},
		{
			name:  "critical faults",
			items: itemsWith(map[ItemStatus]int{StatusFault: 2, StatusActionNeeded: 1, StatusOK: 3}, PriorityCritical),
			want:  Summary{
				TotalItems: 6, CompletedItems: 6, OkItems: 3,
				FaultItems: 2, ActionNeededItems: 1, CriticalIssues: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.items)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
			if got.CompletedItems > got.TotalItems {
				t.Errorf("CompletedItems %d > TotalItems %d", got.CompletedItems, got.TotalItems)
			}
			if again := Summarize(tt.items); again != got {
				t.Errorf("second Summarize() = %+v, want %+v", again, got)
			}
		})
	}
}

func TestSummarize_Scenario(t *testing.T) {
	var items []ChecklistItem
	for i := 0; i < 20; i++ {
		items = append(items, ChecklistItem{Status: StatusOK, Priority: PriorityMedium})
	}
	for i := 0; i < 3; i++ {
		items = append(items, ChecklistItem{Status: StatusFault, Priority: PriorityMedium})
	}
	items = append(items,
		ChecklistItem{Status: StatusActionNeeded, Priority: PriorityCritical},
		ChecklistItem{Status: StatusActionNeeded, Priority: PriorityLow},
	)

	got := Summarize(items)
	want := Summary{
		TotalItems: 25, CompletedItems: 25, OkItems: 20,
		FaultItems: 3, ActionNeededItems: 2, CriticalIssues: 1,
	}
	if got != want {
		t.Fatalf("Summarize() = %+v, want %+v", got, want)
	}
	if result := Classify(got); result != ResultFailed {
		t.Errorf("Classify() = %q, want %q", result, ResultFailed)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   Summary
		want OverallResult
	}{
		{"clean", Summary{TotalItems: 5, CompletedItems: 5, OkItems: 5}, ResultPassed},
		{"one fault", Summary{TotalItems: 5, CompletedItems: 5, OkItems: 4, FaultItems: 1}, ResultNeedsReview},
		{"action needed only", Summary{TotalItems: 5, CompletedItems: 5, OkItems: 4, ActionNeededItems: 1}, ResultPassed},
		{"critical without fault", Summary{TotalItems: 5, CompletedItems: 5, ActionNeededItems: 1, CriticalIssues: 1}, ResultFailed},
		{"critical with faults", Summary{FaultItems: 3, CriticalIssues: 2}, ResultFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%+v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummaryPercent(t *testing.T) {
	if got := (Summary{}).Percent(); got != 0 {
		t.Errorf("empty Percent() = %v, want 0", got)
	}
	s := Summary{TotalItems: 4, CompletedItems: 1}
	if got := s.Percent(); got != 25 {
		t.Errorf("Percent() = %v, want 25", got)
	}
}

func TestRoomProgress(t *testing.T) {
	items := []ChecklistItem{
		{ID: "g1", Status: StatusOK},
		{ID: "g2", Status: StatusPending},
		{ID: "k1", RoomID: "kitchen", Status: StatusOK},
		{ID: "k2", RoomID: "kitchen", Status: StatusFault},
	}
	if got := RoomProgress(items, GeneralSection); got != 50 {
		t.Errorf("RoomProgress(general) = %v, want 50", got)
	}
	if got := RoomProgress(items, "kitchen"); got != 100 {
		t.Errorf("RoomProgress(kitchen) = %v, want 100", got)
	}
	if got := RoomProgress(items, "missing"); got != 0 {
		t.Errorf("RoomProgress(missing) = %v, want 0", got)
	}
}
