package schedule

import (
	"sort"
	"time"

	"studiodesk/internal/domain"
	"studiodesk/internal/pkg/timefmt"
)

type TimeBucket string

const (
	BucketCompleted TimeBucket = "completed"
	BucketUrgent    TimeBucket = "urgent"
	BucketUpcoming  TimeBucket = "upcoming"
	BucketScheduled TimeBucket = "scheduled"
)

const (
	urgentWindow   = 30 * time.Minute
	upcomingWindow = 120 * time.Minute
)

// TimeStatus is the presentational urgency of a booking. It never changes
// the booking's own status.
type TimeStatus struct {
	Bucket TimeBucket `json:"status"`
	Label  string     `json:"label"`
	Color  string     `json:"color"`
}

// Classify buckets the distance from now to the scheduled instant.
func Classify(scheduled, now time.Time) TimeStatus {
	diff := scheduled.Sub(now)
	switch {
	case diff < 0:
		return TimeStatus{Bucket: BucketCompleted, Label: "Completed", Color: "green"}
	case diff < urgentWindow:
		return TimeStatus{Bucket: BucketUrgent, Label: "Starting Soon", Color: "red"}
	case diff < upcomingWindow:
		return TimeStatus{Bucket: BucketUpcoming, Label: "Upcoming", Color: "yellow"}
	default:
		return TimeStatus{Bucket: BucketScheduled, Label: "Scheduled", Color: "blue"}
	}
}

// ClassifyBooking classifies b by its own date and time in loc. ok is false
// when the booking's date or time cannot be parsed.
func ClassifyBooking(b domain.Booking, now time.Time, loc *time.Location) (TimeStatus, bool) {
	at, err := timefmt.Combine(b.Date, b.Time, loc)
	if err != nil {
		return TimeStatus{}, false
	}
	return Classify(at, now), true
}

type TodayShoot struct {
	Booking    domain.Booking `json:"booking"`
	Time12     string         `json:"time_12h"`
	TimeStatus TimeStatus     `json:"time_status"`
}

// TodayShoots returns the bookings falling on the current date of now in loc,
// ordered by time, each with its time status. Malformed records are dropped.
func TodayShoots(bookings []domain.Booking, now time.Time, loc *time.Location) []TodayShoot {
	type entry struct {
		at   time.Time
		shot TodayShoot
	}

	today := timefmt.DateKey(now, loc)
	entries := make([]entry, 0)
	for _, b := range bookings {
		at, err := timefmt.Combine(b.Date, b.Time, loc)
		if err != nil || timefmt.DateKey(at, loc) != today {
			continue
		}
		entries = append(entries, entry{at: at, shot: TodayShoot{
			Booking:    b,
			Time12:     timefmt.To12Hour(b.Time),
			TimeStatus: Classify(at, now),
		}})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	out := make([]TodayShoot, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.shot)
	}
	return out
}
