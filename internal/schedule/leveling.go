package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ResourceAssignment is one task's claim on a resource for a window.
type ResourceAssignment struct {
	TaskID    string    `json:"task_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Priority  int       `json:"priority"` // higher wins its requested slot
}

// ResourceConstraint is one resource together with the competing
// assignments on it. How contention was identified is the caller's
// concern; the leveler only resolves it.
type ResourceConstraint struct {
	ResourceID  string               `json:"resource_id"`
	Capacity    int                  `json:"capacity"` // concurrent tasks the resource can carry; min 1
	Assignments []ResourceAssignment `json:"assignments"`
}

// LevelingResult is the proposed window adjustment for one assignment.
// The caller decides whether to apply it back onto the task. Leveling
// sees only resource windows, not the dependency graph, so it cannot
// report post-shift float itself: after applying the shifts, re-run
// CalculateCriticalPath on the adjusted tasks to get updated floats.
type LevelingResult struct {
	TaskID        string    `json:"task_id"`
	ResourceID    string    `json:"resource_id"`
	OriginalStart time.Time `json:"original_start"`
	OriginalEnd   time.Time `json:"original_end"`
	LeveledStart  time.Time `json:"leveled_start"`
	LeveledEnd    time.Time `json:"leveled_end"`
	Shifted       bool      `json:"shifted"`
	Reason        string    `json:"reason"`
}

// ResourceConflict is one window during which a resource is assigned
// more concurrent work than its capacity allows.
type ResourceConflict struct {
	ResourceID string    `json:"resource_id"`
	TaskIDs    []string  `json:"task_ids"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Demand     int       `json:"demand"`
	Capacity   int       `json:"capacity"`
}

// LevelResources resolves over-allocation greedily, per resource:
// assignments are placed in priority order (then start date, then task
// id), each at its requested start if concurrent demand fits capacity,
// otherwise pushed to the earliest finish among the assignments
// occupying its slot. Durations are preserved.
func LevelResources(constraints []ResourceConstraint) []LevelingResult {
	var results []LevelingResult
	for _, rc := range constraints {
		results = append(results, levelOne(rc)...)
	}
	return results
}

func levelOne(rc ResourceConstraint) []LevelingResult {
	capacity := rc.Capacity
	if capacity < 1 {
		capacity = 1
	}

	order := append([]ResourceAssignment(nil), rc.Assignments...)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Priority != order[j].Priority {
			return order[i].Priority > order[j].Priority
		}
		if !order[i].StartDate.Equal(order[j].StartDate) {
			return order[i].StartDate.Before(order[j].StartDate)
		}
		return order[i].TaskID < order[j].TaskID
	})

	type placed struct{ start, end time.Time }
	var occupied []placed

	resultByTask := make(map[string]LevelingResult, len(order))
	for _, a := range order {
		dur := a.EndDate.Sub(a.StartDate)
		start := a.StartDate
		for {
			end := start.Add(dur)
			demand := 0
			nextFree := time.Time{}
			for _, p := range occupied {
				if p.start.Before(end) && start.Before(p.end) {
					demand++
					if nextFree.IsZero() || p.end.Before(nextFree) {
						nextFree = p.end
					}
				}
			}
			if demand < capacity {
				break
			}
			start = nextFree
		}
		end := start.Add(dur)
		occupied = append(occupied, placed{start: start, end: end})

		res := LevelingResult{
			TaskID:        a.TaskID,
			ResourceID:    rc.ResourceID,
			OriginalStart: a.StartDate,
			OriginalEnd:   a.EndDate,
			LeveledStart:  start,
			LeveledEnd:    end,
		}
		if start.Equal(a.StartDate) {
			res.Reason = "no adjustment needed"
		} else {
			res.Shifted = true
			// round partial days up so a sub-day shift never reads "0 day(s)"
			days := int(math.Ceil(start.Sub(a.StartDate).Hours() / 24))
			res.Reason = fmt.Sprintf("shifted %d day(s): resource %s at capacity %d", days, rc.ResourceID, capacity)
		}
		resultByTask[a.TaskID] = res
	}

	// Report in the caller's assignment order.
	results := make([]LevelingResult, 0, len(rc.Assignments))
	for _, a := range rc.Assignments {
		results = append(results, resultByTask[a.TaskID])
	}
	return results
}

// CheckResourceConflicts sweeps each resource's assignments and emits
// one conflict per maximal window where concurrent demand exceeds
// capacity.
func CheckResourceConflicts(constraints []ResourceConstraint) []ResourceConflict {
	var conflicts []ResourceConflict
	for _, rc := range constraints {
		conflicts = append(conflicts, scanOne(rc)...)
	}
	return conflicts
}

func scanOne(rc ResourceConstraint) []ResourceConflict {
	capacity := rc.Capacity
	if capacity < 1 {
		capacity = 1
	}
	if len(rc.Assignments) <= capacity {
		return nil
	}

	// Sweep over the sorted set of window boundaries.
	boundSet := make(map[time.Time]struct{})
	for _, a := range rc.Assignments {
		boundSet[a.StartDate] = struct{}{}
		boundSet[a.EndDate] = struct{}{}
	}
	bounds := make([]time.Time, 0, len(boundSet))
	for b := range boundSet {
		bounds = append(bounds, b)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Before(bounds[j]) })

	var conflicts []ResourceConflict
	var open *ResourceConflict
	for i := 0; i+1 < len(bounds); i++ {
		segStart, segEnd := bounds[i], bounds[i+1]
		var ids []string
		for _, a := range rc.Assignments {
			if a.StartDate.Before(segEnd) && segStart.Before(a.EndDate) {
				ids = append(ids, a.TaskID)
			}
		}
		if len(ids) > capacity {
			sort.Strings(ids)
			if open != nil && open.EndDate.Equal(segStart) && equalIDs(open.TaskIDs, ids) {
				open.EndDate = segEnd
				continue
			}
			if open != nil {
				conflicts = append(conflicts, *open)
			}
			open = &ResourceConflict{
				ResourceID: rc.ResourceID,
				TaskIDs:    ids,
				StartDate:  segStart,
				EndDate:    segEnd,
				Demand:     len(ids),
				Capacity:   capacity,
			}
		} else if open != nil {
			conflicts = append(conflicts, *open)
			open = nil
		}
	}
	if open != nil {
		conflicts = append(conflicts, *open)
	}
	return conflicts
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
