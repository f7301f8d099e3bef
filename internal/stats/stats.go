// Package stats aggregates tasks into per-status counts for the chart views.
package stats

import (
	"math"

	"tasktrack/internal/domain"
)

var colors = map[domain.Status]string{
	domain.StatusTodo:       "#0088FE",
	domain.StatusInProgress: "#FFBB28",
	domain.StatusCompleted:  "#00C49F",
}

type StatusCount struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
	Color  string        `json:"color"`
}

type Summary struct {
	Total          int            `json:"total"`
	Buckets        [3]StatusCount `json:"buckets"`
	CompletionRate int            `json:"completion_rate"`
}

// Aggregate counts tasks per status. Buckets are always in to_do, in_progress,
// completed order; tasks with any other status only add to Total.
func Aggregate(tasks []domain.Task) Summary {
	var s Summary
	index := make(map[domain.Status]int, len(s.Buckets))
	for i, st := range domain.Statuses() {
		s.Buckets[i] = StatusCount{Status: st, Label: st.Label(), Color: colors[st]}
		index[st] = i
	}
	for _, t := range tasks {
		s.Total++
		if i, ok := index[t.Status]; ok {
			s.Buckets[i].Count++
		}
	}
	if s.Total > 0 {
		done := s.Buckets[index[domain.StatusCompleted]].Count
		s.CompletionRate = int(math.Round(100 * float64(done) / float64(s.Total)))
	}
	return s
}

// Percent returns bucket i's rounded share of Total.
func (s Summary) Percent(i int) int {
	if i < 0 || i >= len(s.Buckets) {
		return 0
	}
	return s.Share(s.Buckets[i])
}

// Share returns b's count as a rounded percentage of Total.
func (s Summary) Share(b StatusCount) int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(b.Count) / float64(s.Total)))
}

// NonZero returns the buckets with at least one task, in bucket order.
func (s Summary) NonZero() []StatusCount {
	var out []StatusCount
	for _, b := range s.Buckets {
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}
