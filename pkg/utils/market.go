package utils

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Day layouts.
const (
	DayLayout      = "2006-01-02"
	DayLabelLayout = "Jan 2"
	// legacyDayLayout is the browser Date.toDateString form, e.g. "Wed May 01 2024".
	legacyDayLayout = "Mon Jan 02 2006"
)

// LoadLocation resolves a timezone name. Empty means IndiaLocation.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return IndiaLocation, nil
	}
	return time.LoadLocation(name)
}

// DayKey returns the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a day in YYYY-MM-DD form, or the legacy "Mon Jan 02 2006"
// form, as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DayLayout, legacyDayLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DayLabel returns the short chart label for a day key, e.g. "May 1".
// Unparseable input is returned unchanged.
func DayLabel(day string) string {
	t, ok := ParseDay(day, time.UTC)
	if !ok {
		return day
	}
	return t.Format(DayLabelLayout)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
