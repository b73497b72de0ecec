package calculator

import (
	"math"
	"testing"

	"github.com/jmhart/crewlog/internal/models"
)

func TestMemberBreakdown(t *testing.T) {
	tests := []struct {
		name         string
		logs         []models.WorkLog
		validateFunc func(t *testing.T, segments []Segment)
	}{
		{
			name: "sums per member, sorted descending",
			logs: []models.WorkLog{
				{MemberID: "a", MemberName: "Alice", Minutes: 30},
				{MemberID: "b", MemberName: "Bob", Minutes: 10},
				{MemberID: "a", MemberName: "Alice", Minutes: 20},
			},
			validateFunc: func(t *testing.T, segments []Segment) {
				if len(segments) != 2 {
					t.Fatalf("segments = %d, want 2", len(segments))
				}
				if segments[0].ID != "a" || segments[0].Minutes != 50 {
					t.Errorf("first = %s/%d, want a/50", segments[0].ID, segments[0].Minutes)
				}
				if segments[1].ID != "b" || segments[1].Minutes != 10 {
					t.Errorf("second = %s/%d, want b/10", segments[1].ID, segments[1].Minutes)
				}
				if math.Abs(segments[0].Share-5.0/6.0) > 1e-9 {
					t.Errorf("first share = %v, want 5/6", segments[0].Share)
				}
				if math.Abs(segments[1].Share-1.0/6.0) > 1e-9 {
					t.Errorf("second share = %v, want 1/6", segments[1].Share)
				}
			},
		},
		{
			name: "missing ids fall back to name keys without merging",
			logs: []models.WorkLog{
				{MemberName: "Alice", Minutes: 10},
				{MemberName: "Bob", Minutes: 10},
				{MemberName: "Alice", Minutes: 5},
			},
			validateFunc: func(t *testing.T, segments []Segment) {
				if len(segments) != 2 {
					t.Fatalf("segments = %d, want 2", len(segments))
				}
				if segments[0].ID != "name:Alice" || segments[0].Minutes != 15 {
					t.Errorf("first = %s/%d, want name:Alice/15", segments[0].ID, segments[0].Minutes)
				}
			},
		},
		{
			name: "ties keep first-encountered order",
			logs: []models.WorkLog{
				{MemberID: "x", MemberName: "X", Minutes: 10},
				{MemberID: "y", MemberName: "Y", Minutes: 10},
				{MemberID: "z", MemberName: "Z", Minutes: 10},
			},
			validateFunc: func(t *testing.T, segments []Segment) {
				want := []string{"x", "y", "z"}
				for i, id := range want {
					if segments[i].ID != id {
						t.Errorf("segment %d = %s, want %s", i, segments[i].ID, id)
					}
				}
			},
		},
		{
			name: "no logs yields one neutral segment",
			logs: nil,
			validateFunc: func(t *testing.T, segments []Segment) {
				if len(segments) != 1 {
					t.Fatalf("segments = %d, want 1", len(segments))
				}
				if segments[0].Color != neutralColor || segments[0].Share != 1 {
					t.Errorf("neutral segment = %+v", segments[0])
				}
			},
		},
		{
			name: "zero-minute logs yield one neutral segment",
			logs: []models.WorkLog{{MemberID: "a", Minutes: 0}},
			validateFunc: func(t *testing.T, segments []Segment) {
				if len(segments) != 1 || segments[0].Color != neutralColor {
					t.Errorf("expected single neutral segment, got %+v", segments)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, MemberBreakdown(tt.logs))
		})
	}
}

func TestMemberBreakdownColorsDeterministic(t *testing.T) {
	logs := []models.WorkLog{
		{MemberID: "a", Minutes: 30},
		{MemberID: "b", Minutes: 20},
		{MemberID: "c", Minutes: 10},
	}

	first := MemberBreakdown(logs)
	second := MemberBreakdown(logs)

	for i := range first {
		if first[i].Color != second[i].Color {
			t.Errorf("segment %d color changed between runs: %s vs %s", i, first[i].Color, second[i].Color)
		}
		if first[i].Color != palette[i%len(palette)] {
			t.Errorf("segment %d color = %s, want palette position %d", i, first[i].Color, i)
		}
	}
}

func TestTaskBreakdown(t *testing.T) {
	me := models.User{ID: "dev_1", Email: "me@example.com"}

	logs := []models.WorkLog{
		{TaskID: "t1", TaskName: "Dishes", MemberID: "dev_1", Minutes: 25},
		{TaskID: "t2", TaskName: "Laundry", MemberID: "other", Minutes: 99},
		{TaskID: "t1", TaskName: "Dishes", MemberEmail: "me@example.com", Minutes: 5},
		{TaskID: "t3", TaskName: "Vacuum", MemberID: "dev_1", Minutes: 40},
	}

	segments := TaskBreakdown(logs, me)

	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2 (other member's logs filtered)", len(segments))
	}
	if segments[0].ID != "t3" || segments[0].Minutes != 40 {
		t.Errorf("first = %s/%d, want t3/40", segments[0].ID, segments[0].Minutes)
	}
	if segments[1].ID != "t1" || segments[1].Minutes != 30 {
		t.Errorf("second = %s/%d, want t1/30 (id and email matches merged)", segments[1].ID, segments[1].Minutes)
	}
	if segments[1].Label != "Dishes" {
		t.Errorf("label = %q, want Dishes", segments[1].Label)
	}
}

func TestTaskBreakdownKeyFallback(t *testing.T) {
	me := models.User{ID: "dev_1"}

	logs := []models.WorkLog{
		{TaskName: "Unplanned", MemberID: "dev_1", Minutes: 15},
		{TaskName: "Unplanned", MemberID: "dev_1", Minutes: 5},
	}

	segments := TaskBreakdown(logs, me)
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1 (grouped by task name)", len(segments))
	}
	if segments[0].Minutes != 20 {
		t.Errorf("minutes = %d, want 20", segments[0].Minutes)
	}
}

func TestMinutesFor(t *testing.T) {
	me := models.User{ID: "dev_1"}
	logs := []models.WorkLog{
		{MemberID: "dev_1", Minutes: 30},
		{MemberID: "other", Minutes: 10},
		{MemberID: "dev_1", Minutes: 15},
	}

	if got := MinutesFor(logs, me); got != 45 {
		t.Errorf("MinutesFor = %d, want 45", got)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{5, "5m"},
		{60, "1h"},
		{65, "1h 5m"},
		{125, "2h 5m"},
		{-3, "0m"},
	}

	for _, tt := range tests {
		if got := FormatMinutes(tt.minutes); got != tt.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
