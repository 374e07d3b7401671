package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func task(id string, startDay, endDay int, deps ...string) TimelineTask {
	if deps == nil {
		deps = []string{}
	}
	return TimelineTask{
		ID:           id,
		ProjectID:    "p1",
		Name:         id,
		StartDate:    base.AddDate(0, 0, startDay),
		EndDate:      base.AddDate(0, 0, endDay),
		Dependencies: deps,
	}
}

func TestCalculateCriticalPath_Chain(t *testing.T) {
	// A (0-5), B (0-3) after A, C (0-10) after B.
	tasks := []TimelineTask{
		task("a", 0, 5),
		task("b", 0, 3, "a"),
		task("c", 0, 10, "b"),
	}

	cp, err := CalculateCriticalPath("p1", tasks, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cp.Schedules["a"].EarlyStart)
	assert.Equal(t, 5, cp.Schedules["a"].EarlyFinish)
	assert.Equal(t, 5, cp.Schedules["b"].EarlyStart)
	assert.Equal(t, 8, cp.Schedules["b"].EarlyFinish)
	assert.Equal(t, 8, cp.Schedules["c"].EarlyStart)
	assert.Equal(t, 18, cp.Schedules["c"].EarlyFinish)

	assert.Equal(t, 18, cp.TotalDuration)
	assert.Equal(t, []string{"a", "b", "c"}, cp.TaskIDs)
	assert.Equal(t, 2, cp.BufferDays) // ceil(18 * 0.1)
	assert.Equal(t, base, cp.StartDate)
	assert.Equal(t, base.AddDate(0, 0, 18), cp.EndDate)
}

func TestCalculateCriticalPath_ZeroDependencyTaskStartsAtZero(t *testing.T) {
	tasks := []TimelineTask{
		task("a", 0, 4),
		task("b", 10, 12), // later start date, still no deps
		task("c", 0, 2, "a"),
	}

	cp, err := CalculateCriticalPath("p1", tasks, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cp.Schedules["a"].EarlyStart)
	assert.Equal(t, 0, cp.Schedules["b"].EarlyStart)
}

func TestCalculateCriticalPath_Diamond(t *testing.T) {
	// a -> b(3) -> d, a -> c(7) -> d: the c branch is critical.
	tasks := []TimelineTask{
		task("a", 0, 2),
		task("b", 0, 3, "a"),
		task("c", 0, 7, "a"),
		task("d", 0, 1, "b", "c"),
	}

	cp, err := CalculateCriticalPath("p1", tasks, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, cp.TotalDuration)
	assert.Equal(t, []string{"a", "c", "d"}, cp.TaskIDs)

	b := cp.Schedules["b"]
	assert.False(t, b.Critical)
	assert.Equal(t, 4, b.Float)
}

func TestCalculateCriticalPath_Properties(t *testing.T) {
	tasks := []TimelineTask{
		task("a", 0, 2),
		task("b", 0, 3, "a"),
		task("c", 0, 7, "a"),
		task("d", 0, 1, "b", "c"),
		task("e", 0, 4),
	}

	cp, err := CalculateCriticalPath("p1", tasks, nil)
	require.NoError(t, err)

	maxEF := 0
	criticalFinishesAtEnd := false
	for _, ts := range cp.Schedules {
		// duration consistency
		assert.Equal(t, ts.Duration, ts.EarlyFinish-ts.EarlyStart, ts.TaskID)
		// float non-negative on an acyclic graph
		assert.GreaterOrEqual(t, ts.Float, 0, ts.TaskID)
		// critical <=> zero float
		assert.Equal(t, ts.Float == 0, ts.Critical, ts.TaskID)
		if ts.EarlyFinish > maxEF {
			maxEF = ts.EarlyFinish
		}
		if ts.Critical && ts.EarlyFinish == cp.TotalDuration {
			criticalFinishesAtEnd = true
		}
	}
	assert.Equal(t, maxEF, cp.TotalDuration)
	assert.True(t, criticalFinishesAtEnd, "some critical task must finish at the project end")

	for _, id := range cp.TaskIDs {
		assert.Zero(t, cp.Schedules[id].Float, id)
	}
}

func TestCalculateCriticalPath_Idempotent(t *testing.T) {
	tasks := []TimelineTask{
		task("a", 0, 5),
		task("b", 0, 3, "a"),
		task("c", 0, 10, "b"),
	}

	first, err := CalculateCriticalPath("p1", tasks, nil)
	require.NoError(t, err)
	second, err := CalculateCriticalPath("p1", tasks, nil)
	require.NoError(t, err)

	assert.Equal(t, first.TaskIDs, second.TaskIDs)
	assert.Equal(t, first.TotalDuration, second.TotalDuration)
	assert.Equal(t, first.StartDate, second.StartDate)
	assert.Equal(t, first.EndDate, second.EndDate)
	assert.Equal(t, first.BufferDays, second.BufferDays)
	assert.Equal(t, first.Schedules, second.Schedules)
}

func TestCalculateCriticalPath_CountsNonWorkingDays(t *testing.T) {
	cal := NewCalendar([]Holiday{
		{Date: base.AddDate(0, 0, 1), Name: "Firm holiday", Type: "firm"},
	})

	// base is a Monday; a 7-day window spans one weekend + the holiday.
	tasks := []TimelineTask{task("a", 0, 7)}
	cp, err := CalculateCriticalPath("p1", tasks, cal)
	require.NoError(t, err)

	assert.Equal(t, 3, cp.NonWorkingDays)
}
