package schedule

import (
	"math"
	"time"
)

// TaskSchedule is the computed CPM view of a single task. All values are
// whole calendar days relative to the project start.
type TaskSchedule struct {
	TaskID      string `json:"task_id"`
	Duration    int    `json:"duration"`
	EarlyStart  int    `json:"early_start"`
	EarlyFinish int    `json:"early_finish"`
	LateStart   int    `json:"late_start"`
	LateFinish  int    `json:"late_finish"`
	Float       int    `json:"float"`
	Critical    bool   `json:"critical"`
}

// CriticalPath is the computed snapshot for one project. It is derived
// and transient; recomputation replaces the previous snapshot.
type CriticalPath struct {
	ProjectID      string                   `json:"project_id"`
	TaskIDs        []string                 `json:"task_ids"` // critical tasks, topological order
	TotalDuration  int                      `json:"total_duration"`
	StartDate      time.Time                `json:"start_date"`
	EndDate        time.Time                `json:"end_date"`
	BufferDays     int                      `json:"buffer_days"`
	NonWorkingDays int                      `json:"non_working_days"`
	Schedules      map[string]*TaskSchedule `json:"schedules"`
	LastCalculated time.Time                `json:"last_calculated"`
}

// CalculateCriticalPath runs the standard two-pass Critical Path Method
// over tasks and returns the critical (zero-float) set together with the
// full per-task schedule.
//
// Durations are whole calendar days. Holidays and working-day policy do
// not enter the arithmetic; cal (optional) is only consulted to count
// the non-working dates that fall inside the computed window, so
// reporting collaborators can surface them.
func CalculateCriticalPath(projectID string, tasks []TimelineTask, cal *Calendar) (*CriticalPath, error) {
	g, err := buildGraph(tasks)
	if err != nil {
		return nil, err
	}

	// Forward pass: earliest start is the max early finish over the
	// task's dependencies, zero when it has none.
	for _, id := range g.Order {
		n := g.Nodes[id]
		es := 0
		for _, dep := range n.Task.Dependencies {
			if ef := g.Nodes[dep].EarlyFinish; ef > es {
				es = ef
			}
		}
		n.EarlyStart = es
		n.EarlyFinish = es + n.Duration
	}

	projectEnd := 0
	for _, n := range g.Nodes {
		if n.EarlyFinish > projectEnd {
			projectEnd = n.EarlyFinish
		}
	}

	// Backward pass in reverse topological order: latest finish is the
	// min late start over successors, the project end for sinks.
	for i := len(g.Order) - 1; i >= 0; i-- {
		n := g.Nodes[g.Order[i]]
		lf := projectEnd
		for _, succ := range g.Succ[n.Task.ID] {
			if ls := g.Nodes[succ].LateStart; ls < lf {
				lf = ls
			}
		}
		n.LateFinish = lf
		n.LateStart = lf - n.Duration
		n.Float = n.LateStart - n.EarlyStart
		n.Critical = n.Float == 0
	}

	start := earliestStart(tasks)
	cp := &CriticalPath{
		ProjectID:      projectID,
		TotalDuration:  projectEnd,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, projectEnd),
		BufferDays:     int(math.Ceil(float64(projectEnd) * 0.1)),
		Schedules:      make(map[string]*TaskSchedule, len(g.Nodes)),
		LastCalculated: time.Now().UTC(),
	}
	for _, id := range g.Order {
		n := g.Nodes[id]
		cp.Schedules[id] = &TaskSchedule{
			TaskID:      id,
			Duration:    n.Duration,
			EarlyStart:  n.EarlyStart,
			EarlyFinish: n.EarlyFinish,
			LateStart:   n.LateStart,
			LateFinish:  n.LateFinish,
			Float:       n.Float,
			Critical:    n.Critical,
		}
		if n.Critical {
			cp.TaskIDs = append(cp.TaskIDs, id)
		}
	}

	if cal != nil {
		cp.NonWorkingDays = len(cal.NonWorkingDatesIn(cp.StartDate, cp.EndDate))
	}
	return cp, nil
}

func earliestStart(tasks []TimelineTask) time.Time {
	start := tasks[0].StartDate
	for _, t := range tasks[1:] {
		if t.StartDate.Before(start) {
			start = t.StartDate
		}
	}
	return start
}
