package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"daritana-backend/internal/schedule"
)

type calendarFile struct {
	Holidays []calendarEntry `yaml:"holidays"`
}

type calendarEntry struct {
	Date string `yaml:"date"` // 2006-01-02
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadHolidayCalendar reads a YAML calendar file of the form
//
//	holidays:
//	  - date: 2026-08-31
//	    name: Merdeka Day
//	    type: federal
//
// Entries with an unparseable date are rejected rather than skipped.
func LoadHolidayCalendar(path string) ([]schedule.Holiday, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file calendarFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse holiday calendar: %w", err)
	}

	holidays := make([]schedule.Holiday, 0, len(file.Holidays))
	for _, e := range file.Holidays {
		d, err := time.ParseInLocation("2006-01-02", e.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: bad date %q", e.Name, e.Date)
		}
		typ := e.Type
		if typ == "" {
			typ = "federal"
		}
		holidays = append(holidays, schedule.Holiday{Date: d, Name: e.Name, Type: typ})
	}
	return holidays, nil
}
