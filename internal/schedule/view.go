package schedule

import (
	"fmt"
	"time"

	"studiodesk/internal/domain"
)

type Direction string

const (
	Next Direction = "next"
	Prev Direction = "prev"
)

// ViewState is the calendar's navigation state: a reference date, the active
// view and at most one selected booking.
type ViewState struct {
	Ref      time.Time
	Mode     ViewMode
	Selected *domain.Booking
}

func NewViewState(ref time.Time, mode ViewMode) (*ViewState, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidView, mode)
	}
	return &ViewState{Ref: ref, Mode: mode}, nil
}

// Navigate moves the reference date one unit of the active view.
func (v *ViewState) Navigate(dir Direction) error {
	step := 1
	switch dir {
	case Next:
	case Prev:
		step = -1
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	switch v.Mode {
	case ViewMonth:
		v.Ref = addMonthsClamped(v.Ref, step)
	case ViewWeek:
		v.Ref = v.Ref.AddDate(0, 0, 7*step)
	case ViewDay:
		v.Ref = v.Ref.AddDate(0, 0, step)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidView, v.Mode)
	}
	return nil
}

func (v *ViewState) GoToToday(now time.Time) {
	v.Ref = now
}

// ChangeView switches the view mode and keeps the reference date.
func (v *ViewState) ChangeView(mode ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidView, mode)
	}
	v.Mode = mode
	return nil
}

// SelectBooking replaces any current selection.
func (v *ViewState) SelectBooking(b domain.Booking) {
	v.Selected = &b
}

func (v *ViewState) CloseSelection() {
	v.Selected = nil
}

// addMonthsClamped moves t by n months, keeping the day of month where it
// exists and using the month's last day otherwise (Jan 31 -> Feb 28).
func addMonthsClamped(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	last := target.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return target.AddDate(0, 0, day-1)
}
