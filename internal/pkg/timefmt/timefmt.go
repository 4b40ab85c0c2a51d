package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
	DisplayLayout = "02 Jan 2006"
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidClock = errors.New("invalid time of day")
)

// To12Hour converts "HH:MM" to "h:MM AM|PM". The minutes segment is passed
// through as given and defaults to "00" when missing. Empty input or a
// non-numeric hour yields "".
func To12Hour(time24 string) string {
	if time24 == "" {
		return ""
	}

	parts := strings.Split(time24, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ""
	}
	minute := "00"
	if len(parts) > 1 && parts[1] != "" {
		minute = parts[1]
	}

	switch {
	case hour == 0:
		return fmt.Sprintf("12:%s AM", minute)
	case hour < 12:
		return fmt.Sprintf("%d:%s AM", hour, minute)
	case hour == 12:
		return fmt.Sprintf("12:%s PM", minute)
	default:
		return fmt.Sprintf("%d:%s PM", hour-12, minute)
	}
}

// FormatDate renders t as "02 Jan 2006" in loc. A nil loc means UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayLayout)
}

// FormatDateString formats a "2006-01-02" date. Unparseable input yields "".
func FormatDateString(date string) string {
	d, err := ParseDate(date, time.UTC)
	if err != nil {
		return ""
	}
	return d.Format(DisplayLayout)
}

// ParseDate parses a calendar date at midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return d, nil
}

// ParseClock parses "HH:MM" (an optional ":SS" suffix is accepted) and
// returns hour and minute.
func ParseClock(clock string) (int, int, error) {
	clock = strings.TrimSpace(clock)
	if len(clock) > 5 && strings.Count(clock, ":") == 2 {
		clock = clock[:strings.LastIndex(clock, ":")]
	}
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	return t.Hour(), t.Minute(), nil
}

// Combine returns the instant of date+clock in loc.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, d.Location()), nil
}

// SameDay reports calendar-date equality of a and b as seen in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DateKey returns the "2006-01-02" form of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// HeaderTitle is the calendar header caption: "January 2026" for month view,
// "12 Jan 2026" otherwise.
func HeaderTitle(view string, ref time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	if view == "month" {
		return ref.In(loc).Format("January 2006")
	}
	return FormatDate(ref, loc)
}
