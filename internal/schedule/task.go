package schedule

import (
	"math"
	"time"
)

// TimelineTask is one scheduled unit of work inside a project.
// Dependencies and Successors hold ids of other tasks in the same project.
type TimelineTask struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	Name         string     `json:"name"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	ActualStart  *time.Time `json:"actual_start,omitempty"`
	ActualEnd    *time.Time `json:"actual_end,omitempty"`
	Dependencies []string   `json:"dependencies"`
	Successors   []string   `json:"successors"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DurationDays returns the planned duration in whole calendar days,
// rounded up. A task whose window is shorter than a day still counts
// that partial day; an inverted window counts as zero.
func (t TimelineTask) DurationDays() int {
	d := t.EndDate.Sub(t.StartDate)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
