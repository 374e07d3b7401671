package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assign(taskID string, startDay, endDay, priority int) ResourceAssignment {
	return ResourceAssignment{
		TaskID:    taskID,
		StartDate: base.AddDate(0, 0, startDay),
		EndDate:   base.AddDate(0, 0, endDay),
		Priority:  priority,
	}
}

func TestLevelResources_ShiftsLowerPriority(t *testing.T) {
	results := LevelResources([]ResourceConstraint{{
		ResourceID: "eng-1",
		Capacity:   1,
		Assignments: []ResourceAssignment{
			assign("low", 0, 5, 1),
			assign("high", 0, 3, 9),
		},
	}})
	require.Len(t, results, 2)

	byTask := map[string]LevelingResult{}
	for _, r := range results {
		byTask[r.TaskID] = r
	}

	high := byTask["high"]
	assert.False(t, high.Shifted)
	assert.Equal(t, "no adjustment needed", high.Reason)
	assert.Equal(t, high.OriginalStart, high.LeveledStart)

	// Low-priority task moves to the end of the high-priority window
	// and keeps its duration.
	low := byTask["low"]
	assert.True(t, low.Shifted)
	assert.Equal(t, base.AddDate(0, 0, 3), low.LeveledStart)
	assert.Equal(t, base.AddDate(0, 0, 8), low.LeveledEnd)
	assert.Contains(t, low.Reason, "eng-1")
}

func TestLevelResources_CapacityTwoFitsWithoutShifting(t *testing.T) {
	results := LevelResources([]ResourceConstraint{{
		ResourceID: "crane",
		Capacity:   2,
		Assignments: []ResourceAssignment{
			assign("a", 0, 4, 1),
			assign("b", 0, 4, 1),
		},
	}})
	for _, r := range results {
		assert.False(t, r.Shifted, r.TaskID)
	}
}

func TestLevelResources_ChainOfThreeOnCapacityOne(t *testing.T) {
	results := LevelResources([]ResourceConstraint{{
		ResourceID: "surveyor",
		Capacity:   1,
		Assignments: []ResourceAssignment{
			assign("a", 0, 2, 3),
			assign("b", 0, 2, 2),
			assign("c", 0, 2, 1),
		},
	}})
	byTask := map[string]LevelingResult{}
	for _, r := range results {
		byTask[r.TaskID] = r
	}

	assert.Equal(t, base, byTask["a"].LeveledStart)
	assert.Equal(t, base.AddDate(0, 0, 2), byTask["b"].LeveledStart)
	assert.Equal(t, base.AddDate(0, 0, 4), byTask["c"].LeveledStart)

	// After leveling no two windows overlap.
	windows := []LevelingResult{byTask["a"], byTask["b"], byTask["c"]}
	for i := range windows {
		for j := i + 1; j < len(windows); j++ {
			overlap := windows[i].LeveledStart.Before(windows[j].LeveledEnd) &&
				windows[j].LeveledStart.Before(windows[i].LeveledEnd)
			assert.False(t, overlap, "%s overlaps %s", windows[i].TaskID, windows[j].TaskID)
		}
	}
}

func TestLevelResources_SubDayShiftRoundsUp(t *testing.T) {
	// The blocking window ends mid-day: a 36-hour shift must read as
	// 2 day(s), never 0 or 1.
	results := LevelResources([]ResourceConstraint{{
		ResourceID: "eng-1",
		Capacity:   1,
		Assignments: []ResourceAssignment{
			assign("low", 0, 1, 1),
			{
				TaskID:    "high",
				StartDate: base,
				EndDate:   base.Add(36 * time.Hour),
				Priority:  9,
			},
		},
	}})
	byTask := map[string]LevelingResult{}
	for _, r := range results {
		byTask[r.TaskID] = r
	}

	low := byTask["low"]
	require.True(t, low.Shifted)
	assert.Equal(t, base.Add(36*time.Hour), low.LeveledStart)
	assert.Contains(t, low.Reason, "shifted 2 day(s)")
}

func TestLevelResources_NoConstraints(t *testing.T) {
	assert.Empty(t, LevelResources(nil))
}

func TestCheckResourceConflicts_FindsOverlap(t *testing.T) {
	conflicts := CheckResourceConflicts([]ResourceConstraint{{
		ResourceID: "eng-1",
		Capacity:   1,
		Assignments: []ResourceAssignment{
			assign("a", 0, 5, 0),
			assign("b", 3, 8, 0),
		},
	}})
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, "eng-1", c.ResourceID)
	assert.ElementsMatch(t, []string{"a", "b"}, c.TaskIDs)
	assert.Equal(t, base.AddDate(0, 0, 3), c.StartDate)
	assert.Equal(t, base.AddDate(0, 0, 5), c.EndDate)
	assert.Equal(t, 2, c.Demand)
	assert.Equal(t, 1, c.Capacity)
}

func TestCheckResourceConflicts_WithinCapacity(t *testing.T) {
	conflicts := CheckResourceConflicts([]ResourceConstraint{{
		ResourceID: "crane",
		Capacity:   2,
		Assignments: []ResourceAssignment{
			assign("a", 0, 5, 0),
			assign("b", 3, 8, 0),
		},
	}})
	assert.Empty(t, conflicts)
}

func TestCheckResourceConflicts_BackToBackWindows(t *testing.T) {
	// Touching windows (end == start) are not an overlap.
	conflicts := CheckResourceConflicts([]ResourceConstraint{{
		ResourceID: "eng-1",
		Capacity:   1,
		Assignments: []ResourceAssignment{
			assign("a", 0, 3, 0),
			assign("b", 3, 6, 0),
		},
	}})
	assert.Empty(t, conflicts)
}

func TestCheckResourceConflicts_MergesAdjacentSegments(t *testing.T) {
	// Three mutually overlapping tasks produce distinct demand levels
	// across segments; each offending segment set is reported once.
	conflicts := CheckResourceConflicts([]ResourceConstraint{{
		ResourceID: "eng-1",
		Capacity:   2,
		Assignments: []ResourceAssignment{
			assign("a", 0, 10, 0),
			assign("b", 2, 8, 0),
			assign("c", 4, 6, 0),
		},
	}})
	require.Len(t, conflicts, 1)
	assert.Equal(t, base.AddDate(0, 0, 4), conflicts[0].StartDate)
	assert.Equal(t, base.AddDate(0, 0, 6), conflicts[0].EndDate)
	assert.Equal(t, 3, conflicts[0].Demand)
}

func TestLevelResources_PreservesDuration(t *testing.T) {
	results := LevelResources([]ResourceConstraint{{
		ResourceID: "eng-1",
		Assignments: []ResourceAssignment{
			assign("a", 0, 7, 2),
			assign("b", 1, 4, 1),
		},
	}})
	for _, r := range results {
		orig := r.OriginalEnd.Sub(r.OriginalStart)
		leveled := r.LeveledEnd.Sub(r.LeveledStart)
		assert.Equal(t, orig, leveled, r.TaskID)
	}
}
