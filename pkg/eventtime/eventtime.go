// Package eventtime parses and formats the date and time fields of events.
package eventtime

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Parse combines date (YYYY-MM-DD) and clock (HH:MM) into a time in loc.
func Parse(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("date and time required (YYYY-MM-DD and HH:MM)")
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD, e.g. 2026-02-15)", date)
	}
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (expected HH:MM, e.g. 14:00)", clock)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// ValidateDate accepts an empty string or a YYYY-MM-DD date.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return nil
}

// ValidateTime accepts an empty string or an HH:MM time.
func ValidateTime(clock string) error {
	if clock == "" {
		return nil
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return fmt.Errorf("invalid time %q (expected HH:MM)", clock)
	}
	return nil
}

// Format renders date and clock for display, "" when either is missing or invalid.
func Format(date, clock string) string {
	t, err := Parse(date, clock, time.UTC)
	if err != nil {
		return ""
	}
	return t.Format("Mon 02 Jan 2006 at 15:04")
}
