package schedule

import (
	"sync"
	"time"
)

// Holiday is a single non-working calendar date.
type Holiday struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
	Type string    `json:"type"` // federal, state, firm
}

// GanttConfig is the working-day / working-hour policy consumed by
// rendering and reporting collaborators. The critical-path arithmetic
// itself stays in calendar days.
type GanttConfig struct {
	WorkingDays     []time.Weekday `json:"working_days"`
	WorkStartHour   int            `json:"work_start_hour"`
	WorkEndHour     int            `json:"work_end_hour"`
	ExcludeHolidays bool           `json:"exclude_holidays"`
	Holidays        []Holiday      `json:"holidays"`
}

// GanttConfigPatch is a partial update; nil fields are left unchanged.
type GanttConfigPatch struct {
	WorkingDays     *[]time.Weekday `json:"working_days,omitempty"`
	WorkStartHour   *int            `json:"work_start_hour,omitempty"`
	WorkEndHour     *int            `json:"work_end_hour,omitempty"`
	ExcludeHolidays *bool           `json:"exclude_holidays,omitempty"`
}

// Calendar holds the holiday list and gantt policy. Safe for concurrent
// readers and writers.
type Calendar struct {
	mu       sync.RWMutex
	holidays []Holiday
	cfg      GanttConfig
}

// NewCalendar returns a calendar seeded with the given holidays and a
// Monday-Friday 9-18 default policy.
func NewCalendar(holidays []Holiday) *Calendar {
	c := &Calendar{
		holidays: append([]Holiday(nil), holidays...),
		cfg: GanttConfig{
			WorkingDays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
			WorkStartHour:   9,
			WorkEndHour:     18,
			ExcludeHolidays: true,
		},
	}
	c.cfg.Holidays = append([]Holiday(nil), holidays...)
	return c
}

// AddHoliday appends to both the holiday list and the gantt config's
// copy. No duplicate check, matching how the firm calendar is curated
// upstream.
func (c *Calendar) AddHoliday(h Holiday) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h.Date = dateOnly(h.Date)
	c.holidays = append(c.holidays, h)
	c.cfg.Holidays = append(c.cfg.Holidays, h)
}

// RemoveHoliday removes every holiday on the given date, from both
// lists, ignoring name and type.
func (c *Calendar) RemoveHoliday(date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	date = dateOnly(date)
	c.holidays = removeOnDate(c.holidays, date)
	c.cfg.Holidays = removeOnDate(c.cfg.Holidays, date)
}

func removeOnDate(hs []Holiday, date time.Time) []Holiday {
	out := hs[:0]
	for _, h := range hs {
		if !dateOnly(h.Date).Equal(date) {
			out = append(out, h)
		}
	}
	return out
}

// Holidays returns a copy of the current holiday list.
func (c *Calendar) Holidays() []Holiday {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Holiday(nil), c.holidays...)
}

// Config returns a copy of the current gantt config.
func (c *Calendar) Config() GanttConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg := c.cfg
	cfg.WorkingDays = append([]time.Weekday(nil), c.cfg.WorkingDays...)
	cfg.Holidays = append([]Holiday(nil), c.cfg.Holidays...)
	return cfg
}

// UpdateConfig merges the non-nil fields of patch into the config and
// returns the result.
func (c *Calendar) UpdateConfig(patch GanttConfigPatch) GanttConfig {
	c.mu.Lock()
	if patch.WorkingDays != nil {
		c.cfg.WorkingDays = append([]time.Weekday(nil), (*patch.WorkingDays)...)
	}
	if patch.WorkStartHour != nil {
		c.cfg.WorkStartHour = *patch.WorkStartHour
	}
	if patch.WorkEndHour != nil {
		c.cfg.WorkEndHour = *patch.WorkEndHour
	}
	if patch.ExcludeHolidays != nil {
		c.cfg.ExcludeHolidays = *patch.ExcludeHolidays
	}
	c.mu.Unlock()
	return c.Config()
}

// IsWorkingDay reports whether t falls on a configured working weekday
// that is not a holiday (when ExcludeHolidays is set).
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isWorkingDayLocked(t)
}

func (c *Calendar) isWorkingDayLocked(t time.Time) bool {
	working := false
	for _, wd := range c.cfg.WorkingDays {
		if t.Weekday() == wd {
			working = true
			break
		}
	}
	if !working {
		return false
	}
	if !c.cfg.ExcludeHolidays {
		return true
	}
	day := dateOnly(t)
	for _, h := range c.holidays {
		if dateOnly(h.Date).Equal(day) {
			return false
		}
	}
	return true
}

// WorkingDaysBetween counts working days in [from, to), stepping one
// calendar day at a time.
func (c *Calendar) WorkingDaysBetween(from, to time.Time) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for d := dateOnly(from); d.Before(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		if c.isWorkingDayLocked(d) {
			n++
		}
	}
	return n
}

// NonWorkingDatesIn returns every non-working date in [from, to).
func (c *Calendar) NonWorkingDatesIn(from, to time.Time) []time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []time.Time
	for d := dateOnly(from); d.Before(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		if !c.isWorkingDayLocked(d) {
			out = append(out, d)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SeedHolidays picks the holiday set for a calendar seeded from the
// database: the stored rows when the query succeeded and found any,
// the built-in federal table otherwise. Holidays curated at runtime
// survive a restart this way.
func SeedHolidays(stored []Holiday, err error) []Holiday {
	if err != nil || len(stored) == 0 {
		return MalaysianFederalHolidays()
	}
	return stored
}

// MalaysianFederalHolidays is the built-in fallback used when neither
// a calendar file nor persisted rows are available.
func MalaysianFederalHolidays() []Holiday {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []Holiday{
		{Date: day(2026, time.January, 1), Name: "New Year's Day", Type: "federal"},
		{Date: day(2026, time.February, 17), Name: "Chinese New Year", Type: "federal"},
		{Date: day(2026, time.February, 18), Name: "Chinese New Year (Day 2)", Type: "federal"},
		{Date: day(2026, time.March, 21), Name: "Hari Raya Aidilfitri", Type: "federal"},
		{Date: day(2026, time.March, 22), Name: "Hari Raya Aidilfitri (Day 2)", Type: "federal"},
		{Date: day(2026, time.May, 1), Name: "Labour Day", Type: "federal"},
		{Date: day(2026, time.May, 27), Name: "Hari Raya Aidiladha", Type: "federal"},
		{Date: day(2026, time.June, 1), Name: "Agong's Birthday", Type: "federal"},
		{Date: day(2026, time.August, 31), Name: "Merdeka Day", Type: "federal"},
		{Date: day(2026, time.September, 16), Name: "Malaysia Day", Type: "federal"},
		{Date: day(2026, time.November, 8), Name: "Deepavali", Type: "federal"},
		{Date: day(2026, time.December, 25), Name: "Christmas Day", Type: "federal"},
	}
}
