package schedule

import (
	"sort"
	"time"

	"studiodesk/internal/domain"
	"studiodesk/internal/pkg/timefmt"
)

const DefaultUpcomingLimit = 5

type UpcomingBooking struct {
	Booking   domain.Booking `json:"booking"`
	At        time.Time      `json:"at"`
	DateLabel string         `json:"date_label"`
	Time12    string         `json:"time_12h"`
}

// Upcoming returns the next bookings at or after now, soonest first.
// A non-positive limit means DefaultUpcomingLimit.
func Upcoming(bookings []domain.Booking, now time.Time, loc *time.Location, limit int) []UpcomingBooking {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	loc = orUTC(loc)

	out := make([]UpcomingBooking, 0)
	for _, b := range bookings {
		at, err := timefmt.Combine(b.Date, b.Time, loc)
		if err != nil || at.Before(now) {
			continue
		}
		out = append(out, UpcomingBooking{
			Booking:   b,
			At:        at,
			DateLabel: dateLabel(at, now, loc),
			Time12:    timefmt.To12Hour(b.Time),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func dateLabel(at, now time.Time, loc *time.Location) string {
	switch {
	case timefmt.SameDay(at, now, loc):
		return "Today"
	case timefmt.SameDay(at, now.In(loc).AddDate(0, 0, 1), loc):
		return "Tomorrow"
	default:
		return at.In(loc).Format("2 Jan")
	}
}
