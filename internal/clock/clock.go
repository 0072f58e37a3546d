package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SecondsPerDay is the length of a calendar day in time-of-day units.
const SecondsPerDay = 86400

// Date is a calendar date in the reference time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// TimeOfDay returns the wall-clock seconds since midnight of t in loc.
func TimeOfDay(t time.Time, loc *time.Location) int {
	h, m, s := t.In(loc).Clock()
	return h*3600 + m*60 + s
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into seconds since midnight.
// "24:00" is accepted as the end of the day.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("time of day %q: expected HH:MM or HH:MM:SS", s)
	}
	var fields [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || len(p) != 2 {
			return 0, fmt.Errorf("time of day %q: bad field %q", s, p)
		}
		fields[i] = v
	}
	h, m, sec := fields[0], fields[1], fields[2]
	if m > 59 || sec > 59 || m < 0 || sec < 0 || h < 0 {
		return 0, fmt.Errorf("time of day %q: out of range", s)
	}
	total := h*3600 + m*60 + sec
	if total > SecondsPerDay {
		return 0, errors.New("time of day " + s + " is past 24:00")
	}
	return total, nil
}

// FormatTimeOfDay renders seconds since midnight as "HH:MM" (or "HH:MM:SS").
func FormatTimeOfDay(sec int) string {
	h, m, s := sec/3600, (sec%3600)/60, sec%60
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
