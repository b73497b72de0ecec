// Package calculator derives proportional breakdowns from work logs.
//
// Both breakdowns feed proportional visualizations (donut charts, progress
// bars): each segment carries its share of the total and a deterministic
// palette color, so re-running aggregation on unchanged data reproduces the
// exact same rendering.
package calculator

import (
	"fmt"
	"sort"

	"github.com/jmhart/crewlog/internal/models"
)

// palette is the fixed segment color cycle. Colors are assigned by sort
// position, not by identity.
var palette = []string{
	"#F0D35B", "#66AEEF", "#F46D6D", "#8FD38F", "#B9A3FF", "#F5A25D",
}

// neutralColor fills the single placeholder segment when there is nothing
// to show (total of zero minutes).
const neutralColor = "#E5E5E5"

// Segment is one slice of a breakdown.
type Segment struct {
	// ID identifies what the slice aggregates: a member id for member
	// breakdowns, a task id for task breakdowns. Synthetic keys (e.g.
	// "name:Alice") appear when the source logs lack a real id.
	ID string `json:"id"`

	// Label is the display name for the slice.
	Label string `json:"label"`

	// Minutes is the summed time for the slice.
	Minutes int `json:"minutes"`

	// Share is Minutes over the breakdown total, in (0, 1].
	Share float64 `json:"share"`

	// Color is the palette color for the slice's sort position.
	Color string `json:"color"`
}

// MemberBreakdown groups all logs by author and sums minutes per member,
// largest first. Logs without a member id fall back to a synthetic
// name-derived key so distinct unnamed contributors do not merge. Ties keep
// first-encountered order.
func MemberBreakdown(logs []models.WorkLog) []Segment {
	type bucket struct {
		id      string
		label   string
		minutes int
	}
	byMember := make(map[string]*bucket)
	var order []string

	for _, log := range logs {
		name := log.MemberName
		if name == "" {
			name = models.DefaultUsername
		}
		key := log.MemberID
		if key == "" {
			key = "name:" + name
		}
		b, ok := byMember[key]
		if !ok {
			b = &bucket{id: key, label: name}
			byMember[key] = b
			order = append(order, key)
		}
		b.minutes += log.Minutes
	}

	segments := make([]Segment, 0, len(order))
	for _, key := range order {
		b := byMember[key]
		segments = append(segments, Segment{ID: b.id, Label: b.label, Minutes: b.minutes})
	}
	return finish(segments)
}

// TaskBreakdown filters logs to those authored by user (id or non-empty
// email match) and sums minutes per task, largest first. The grouping key
// falls back from task id to task name to a synthetic per-log key.
func TaskBreakdown(logs []models.WorkLog, user models.User) []Segment {
	type bucket struct {
		id      string
		label   string
		minutes int
	}
	byTask := make(map[string]*bucket)
	var order []string

	for _, log := range logs {
		if !user.IsAuthor(log) {
			continue
		}
		key := log.TaskID
		if key == "" {
			key = log.TaskName
		}
		if key == "" {
			key = models.NewID("taskkey")
		}
		b, ok := byTask[key]
		if !ok {
			label := log.TaskName
			if label == "" {
				label = models.DefaultTaskName
			}
			b = &bucket{id: key, label: label, minutes: 0}
			byTask[key] = b
			order = append(order, key)
		}
		b.minutes += log.Minutes
	}

	segments := make([]Segment, 0, len(order))
	for _, key := range order {
		b := byTask[key]
		segments = append(segments, Segment{ID: b.id, Label: b.label, Minutes: b.minutes})
	}
	return finish(segments)
}

// finish sorts segments by minutes descending (stable, so ties keep
// first-encountered order), computes shares and assigns palette colors.
// A zero total yields one neutral placeholder segment instead of a divide
// by zero.
func finish(segments []Segment) []Segment {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Minutes > segments[j].Minutes
	})

	total := 0
	for _, s := range segments {
		total += s.Minutes
	}
	if total == 0 {
		return []Segment{{ID: "", Label: "", Minutes: 0, Share: 1, Color: neutralColor}}
	}

	for i := range segments {
		segments[i].Share = float64(segments[i].Minutes) / float64(total)
		segments[i].Color = palette[i%len(palette)]
	}
	return segments
}

// TotalMinutes sums segment minutes.
func TotalMinutes(segments []Segment) int {
	total := 0
	for _, s := range segments {
		total += s.Minutes
	}
	return total
}

// MinutesFor sums the minutes of all logs authored by user.
func MinutesFor(logs []models.WorkLog, user models.User) int {
	total := 0
	for _, log := range logs {
		if user.IsAuthor(log) {
			total += log.Minutes
		}
	}
	return total
}

// FormatMinutes renders a minute total as "2h 5m", "2h" or "5m".
func FormatMinutes(totalMinutes int) string {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	h := totalMinutes / 60
	m := totalMinutes % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
