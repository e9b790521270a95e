package report

import (
	"sort"
	"time"

	"github.com/ngcde/assignment-tracker/internal/assignment"
)

// Summary is the headline metric row of the dashboard.
type Summary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Overdue    int `json:"overdue"`
}

func Summarize(records []*assignment.Assignment, now time.Time) Summary {
	s := Summary{
		Total:   len(records),
		Overdue: OverdueCount(records, now),
	}
	for _, a := range records {
		switch a.Status {
		case assignment.StatusCompleted:
			s.Completed++
		case assignment.StatusInProgress:
			s.InProgress++
		}
	}
	return s
}

// Recent returns up to n records ordered most recently created first. Records
// created in the same minute keep their store order.
func Recent(records []*assignment.Assignment, n int) []*assignment.Assignment {
	sorted := make([]*assignment.Assignment, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedDate.After(sorted[j].CreatedDate.Time)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// EngineerDetail is the expanded per-engineer workload view.
type EngineerDetail struct {
	Engineer    assignment.Engineer `json:"engineer"`
	Total       int                 `json:"total"`
	Completed   int                 `json:"completed"`
	AvgProgress float64             `json:"avg_progress"`
	HoursLogged int                 `json:"hours_logged"`
	Statuses    []StatusCount       `json:"statuses"`
	Priorities  []PriorityCount     `json:"priorities"`
}

// DetailForEngineer expands one engineer's workload. ok is false when the
// engineer has no assignments.
func DetailForEngineer(records []*assignment.Assignment, engineer assignment.Engineer) (EngineerDetail, bool) {
	var own []*assignment.Assignment
	for _, a := range records {
		if a.AssignedTo == engineer {
			own = append(own, a)
		}
	}
	if len(own) == 0 {
		return EngineerDetail{}, false
	}

	d := EngineerDetail{
		Engineer:   engineer,
		Total:      len(own),
		Statuses:   StatusDistribution(own),
		Priorities: PriorityDistribution(own),
	}
	progressSum := 0
	for _, a := range own {
		if a.Status == assignment.StatusCompleted {
			d.Completed++
		}
		progressSum += a.Progress
		d.HoursLogged += a.ActualHours
	}
	d.AvgProgress = round1(float64(progressSum) / float64(len(own)))
	return d, true
}
