package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"studiodesk/internal/domain"
	"studiodesk/internal/pkg/timefmt"
	"studiodesk/internal/repository"
	"studiodesk/internal/schedule"
)

var (
	ErrInvalidQuery = errors.New("invalid calendar query")
	ErrNotFound     = errors.New("booking not found")
	ErrStorage      = errors.New("failed to load bookings")
	ErrTimeout      = errors.New("storage did not respond in time")
	ErrUnavailable  = errors.New("booking store unavailable")
)

type BookingRepository interface {
	ListRange(ctx context.Context, operatorID, from, to string) ([]domain.Booking, error)
	GetByID(ctx context.Context, operatorID, id string) (*domain.Booking, error)
}

// Query is the calendar state sent by the client plus the action to apply.
type Query struct {
	View     string `form:"view"`
	Date     string `form:"date"`
	Action   string `form:"action"`
	Selected string `form:"selected"`
}

type SelectedBooking struct {
	domain.Booking
	Revenue    schedule.Revenue     `json:"revenue"`
	TimeStatus *schedule.TimeStatus `json:"time_status,omitempty"`
}

type View struct {
	View     schedule.ViewMode `json:"view"`
	Date     string            `json:"date"`
	Title    string            `json:"title"`
	Grid     schedule.Grid     `json:"grid"`
	Selected *SelectedBooking  `json:"selected"`
}

type Service struct {
	bookings BookingRepository
	loc      *time.Location
	timeout  time.Duration
	now      func() time.Time
}

func NewService(bookings BookingRepository, loc *time.Location, timeout time.Duration) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{bookings: bookings, loc: loc, timeout: timeout, now: time.Now}
}

// View applies q.Action to the state described by q and lays out the
// resulting range. An empty date means today; an empty view means month.
func (s *Service) View(ctx context.Context, operatorID string, q Query) (*View, error) {
	now := s.now()

	ref := now.In(s.loc)
	if q.Date != "" {
		d, err := timefmt.ParseDate(q.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidQuery)
		}
		ref = d
	}

	mode := schedule.ViewMonth
	if q.View != "" {
		mode = schedule.ViewMode(q.View)
	}
	state, err := schedule.NewViewState(ref, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	switch q.Action {
	case "":
	case "today":
		state.GoToToday(now.In(s.loc))
	default:
		if err := state.Navigate(schedule.Direction(q.Action)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
	}

	from, to := visibleRange(state.Mode, state.Ref, s.loc)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bookings, err := s.bookings.ListRange(ctx, operatorID, from, to)
	if err != nil {
		log.Printf("calendar_load_failed operator_id=%s from=%s to=%s error=%v", operatorID, from, to, err)
		return nil, storageError(err)
	}

	grid, err := schedule.Layout(state.Mode, state.Ref, bookings, now, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	for _, id := range grid.Skipped() {
		log.Printf("calendar_skipped_booking operator_id=%s booking_id=%s reason=unparseable_date_or_time", operatorID, id)
	}

	if q.Selected != "" {
		b, err := s.bookings.GetByID(ctx, operatorID, q.Selected)
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return nil, ErrNotFound
		case err != nil:
			return nil, storageError(err)
		}
		state.SelectBooking(*b)
	}

	return &View{
		View:     state.Mode,
		Date:     timefmt.DateKey(state.Ref, s.loc),
		Title:    timefmt.HeaderTitle(string(state.Mode), state.Ref, s.loc),
		Grid:     grid,
		Selected: s.selected(state.Selected, now),
	}, nil
}

func (s *Service) selected(b *domain.Booking, now time.Time) *SelectedBooking {
	if b == nil {
		return nil
	}
	out := &SelectedBooking{Booking: *b, Revenue: schedule.BookingRevenue(*b)}
	if st, ok := schedule.ClassifyBooking(*b, now, s.loc); ok {
		out.TimeStatus = &st
	}
	return out
}

func storageError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case repository.IsSchemaError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}

// visibleRange returns the first and last date shown by the view.
func visibleRange(mode schedule.ViewMode, ref time.Time, loc *time.Location) (string, string) {
	ref = ref.In(loc)
	switch mode {
	case schedule.ViewMonth:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		return timefmt.DateKey(first, loc), timefmt.DateKey(first.AddDate(0, 1, -1), loc)
	case schedule.ViewWeek:
		start := ref.AddDate(0, 0, -int(ref.Weekday()))
		return timefmt.DateKey(start, loc), timefmt.DateKey(start.AddDate(0, 0, 6), loc)
	default:
		d := timefmt.DateKey(ref, loc)
		return d, d
	}
}
