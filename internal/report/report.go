// Package report computes the dashboard and analytics views. Every function
// is a pure read over a snapshot of assignment records; nothing here mutates
// the store.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/ngcde/assignment-tracker/internal/assignment"
)

type StatusCount struct {
	Status assignment.Status `json:"status"`
	Count  int               `json:"count"`
}

type PriorityCount struct {
	Priority assignment.Priority `json:"priority"`
	Count    int                 `json:"count"`
}

// StatusDistribution counts records per status, in declared status order.
// Statuses with no records are omitted.
func StatusDistribution(records []*assignment.Assignment) []StatusCount {
	counts := make(map[assignment.Status]int)
	for _, a := range records {
		counts[a.Status]++
	}
	var out []StatusCount
	for _, st := range assignment.Statuses() {
		if counts[st] > 0 {
			out = append(out, StatusCount{Status: st, Count: counts[st]})
		}
	}
	return out
}

// PriorityDistribution counts records per priority, in declared priority
// order. Priorities with no records are omitted.
func PriorityDistribution(records []*assignment.Assignment) []PriorityCount {
	counts := make(map[assignment.Priority]int)
	for _, a := range records {
		counts[a.Priority]++
	}
	var out []PriorityCount
	for _, p := range assignment.Priorities() {
		if counts[p] > 0 {
			out = append(out, PriorityCount{Priority: p, Count: counts[p]})
		}
	}
	return out
}

// OverdueCount counts records whose due date lies before now. Completed
// records still count as overdue when late.
func OverdueCount(records []*assignment.Assignment, now time.Time) int {
	count := 0
	for _, a := range records {
		if a.DueDate.Before(now) {
			count++
		}
	}
	return count
}

type EngineerWorkload struct {
	Engineer       assignment.Engineer `json:"engineer"`
	Total          int                 `json:"total"`
	Completed      int                 `json:"completed"`
	CriticalCount  int                 `json:"critical_count"`
	Pending        int                 `json:"pending"`
	CompletionRate float64             `json:"completion_rate"`
}

// WorkloadByEngineer produces one row per engineer with at least one
// assignment, in the order engineers first appear in the data. CompletionRate
// is a percentage rounded to 1 decimal; engineers without records never
// appear, so the rate is always well defined.
func WorkloadByEngineer(records []*assignment.Assignment) []EngineerWorkload {
	index := make(map[assignment.Engineer]int)
	var rows []EngineerWorkload
	for _, a := range records {
		i, ok := index[a.AssignedTo]
		if !ok {
			i = len(rows)
			index[a.AssignedTo] = i
			rows = append(rows, EngineerWorkload{Engineer: a.AssignedTo})
		}
		rows[i].Total++
		if a.Status == assignment.StatusCompleted {
			rows[i].Completed++
		}
		if a.Priority == assignment.PriorityCritical {
			rows[i].CriticalCount++
		}
	}
	for i := range rows {
		rows[i].Pending = rows[i].Total - rows[i].Completed
		rows[i].CompletionRate = round1(float64(rows[i].Completed) / float64(rows[i].Total) * 100)
	}
	return rows
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyCreationCounts groups records by calendar month of creation,
// chronologically ascending. Months are rendered as "YYYY-MM".
func MonthlyCreationCounts(records []*assignment.Assignment) []MonthCount {
	counts := make(map[string]int)
	for _, a := range records {
		counts[a.CreatedDate.Format("2006-01")]++
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthCount, 0, len(months))
	for _, m := range months {
		out = append(out, MonthCount{Month: m, Count: counts[m]})
	}
	return out
}

// AverageCompletionAge returns the mean age in days of completed records,
// measured from creation to now. ok is false when nothing is completed.
func AverageCompletionAge(records []*assignment.Assignment, now time.Time) (float64, bool) {
	var totalDays float64
	n := 0
	for _, a := range records {
		if a.Status != assignment.StatusCompleted {
			continue
		}
		totalDays += now.Sub(a.CreatedDate.Time).Hours() / 24
		n++
	}
	if n == 0 {
		return 0, false
	}
	return totalDays / float64(n), true
}

// TimeEfficiency compares estimated to actual hours over completed records:
// sum(estimated)/sum(actual)*100, or 0 when no actual hours were logged. ok
// is false when the completed set has no estimated hours at all, in which
// case the metric is meaningless and should not be shown.
func TimeEfficiency(records []*assignment.Assignment) (float64, bool) {
	totalEstimated, totalActual := 0, 0
	for _, a := range records {
		if a.Status != assignment.StatusCompleted {
			continue
		}
		totalEstimated += a.EstimatedHours
		totalActual += a.ActualHours
	}
	if totalEstimated == 0 {
		return 0, false
	}
	if totalActual == 0 {
		return 0, true
	}
	return float64(totalEstimated) / float64(totalActual) * 100, true
}

type CategoryRate struct {
	Category assignment.Category `json:"category"`
	Rate     float64             `json:"completion_rate"`
}

// CompletionRateByCategory reports per category the percentage of records
// with status Completed, rounded to 1 decimal, in the order categories first
// appear in the data. Categories with no records are omitted.
func CompletionRateByCategory(records []*assignment.Assignment) []CategoryRate {
	type bucket struct {
		total     int
		completed int
	}
	index := make(map[assignment.Category]int)
	var order []assignment.Category
	var buckets []bucket
	for _, a := range records {
		i, ok := index[a.Category]
		if !ok {
			i = len(buckets)
			index[a.Category] = i
			order = append(order, a.Category)
			buckets = append(buckets, bucket{})
		}
		buckets[i].total++
		if a.Status == assignment.StatusCompleted {
			buckets[i].completed++
		}
	}
	out := make([]CategoryRate, 0, len(order))
	for i, c := range order {
		out = append(out, CategoryRate{
			Category: c,
			Rate:     round1(float64(buckets[i].completed) / float64(buckets[i].total) * 100),
		})
	}
	return out
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
