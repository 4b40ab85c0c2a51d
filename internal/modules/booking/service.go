package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"studiodesk/internal/domain"
	"studiodesk/internal/events"
	"studiodesk/internal/pkg/timefmt"
	"studiodesk/internal/pkg/validator"
	"studiodesk/internal/repository"
	"studiodesk/internal/schedule"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	Location *time.Location
	// Timeout bounds every repository call. Calls are never retried.
	Timeout time.Duration
}

type Service struct {
	bookings BookingRepository
	events   EventPublisher
	live     LiveNotifier
	loc      *time.Location
	timeout  time.Duration
	now      func() time.Time

	pending sync.WaitGroup
}

func NewService(bookings BookingRepository, publisher EventPublisher, notifier LiveNotifier, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Service{
		bookings: bookings,
		events:   publisher,
		live:     notifier,
		loc:      cfg.Location,
		timeout:  cfg.Timeout,
		now:      time.Now,
	}
}

// List returns all bookings of the operator ordered by date, then time.
func (s *Service) List(ctx context.Context, operatorID string) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.bookings.ListAll(ctx, operatorID)
	if err != nil {
		return nil, s.storageError("list", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *Service) ListForDate(ctx context.Context, operatorID, date string) ([]domain.Booking, error) {
	if _, err := timefmt.ParseDate(date, s.loc); err != nil {
		return nil, ErrInvalidDate
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.bookings.ListForDate(ctx, operatorID, date)
	if err != nil {
		return nil, s.storageError("list day", err)
	}
	return out, nil
}

// Today returns today's shoots with their time status against the live clock.
func (s *Service) Today(ctx context.Context, operatorID string) (TodayResponse, error) {
	now := s.now()
	date := timefmt.DateKey(now, s.loc)

	bookings, err := s.ListForDate(ctx, operatorID, date)
	if err != nil {
		return TodayResponse{}, err
	}
	return TodayResponse{
		Date:   date,
		Title:  timefmt.FormatDate(now, s.loc),
		Shoots: schedule.TodayShoots(bookings, now, s.loc),
	}, nil
}

func (s *Service) Upcoming(ctx context.Context, operatorID string, limit int) ([]schedule.UpcomingBooking, error) {
	bookings, err := s.List(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	return schedule.Upcoming(bookings, s.now(), s.loc, limit), nil
}

func (s *Service) Get(ctx context.Context, operatorID, id string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := s.bookings.GetByID(ctx, operatorID, id)
	if err != nil {
		return nil, s.storageError("get", err)
	}
	return b, nil
}

func (s *Service) Costs(ctx context.Context, operatorID, id string) ([]domain.CostItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.bookings.GetCosts(ctx, operatorID, id)
	if err != nil {
		return nil, s.storageError("get costs", err)
	}
	return items, nil
}

// Create runs the draft through a create-mode form and stores it.
func (s *Service) Create(ctx context.Context, operatorID string, req DraftRequest) (*domain.Booking, error) {
	form := schedule.NewForm()
	if errs := applyDraft(form, req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	saved, err := form.Submit(ctx, s.saverFor(operatorID))
	if err != nil {
		return nil, submitError(form, err)
	}

	s.afterChange(ctx, events.BookingCreated, *saved)
	return saved, nil
}

// Update replaces the booking with the draft merged over the stored record.
func (s *Service) Update(ctx context.Context, operatorID, id string, req DraftRequest) (*domain.Booking, error) {
	existing, err := s.Get(ctx, operatorID, id)
	if err != nil {
		return nil, err
	}

	form := schedule.EditForm(*existing)
	if errs := applyDraft(form, req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	saved, err := form.Submit(ctx, s.saverFor(operatorID))
	if err != nil {
		return nil, submitError(form, err)
	}

	s.afterChange(ctx, events.BookingUpdated, *saved)
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, operatorID, id string) error {
	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ok, err := s.bookings.Delete(tctx, operatorID, id)
	if err != nil {
		return s.storageError("delete", err)
	}
	if !ok {
		return ErrNotFound
	}

	s.afterChange(ctx, events.BookingDeleted, domain.Booking{ID: id, OperatorID: operatorID})
	return nil
}

// ReplaceCosts swaps the cost breakdown of a booking.
func (s *Service) ReplaceCosts(ctx context.Context, operatorID, id string, req CostItemsRequest) ([]domain.CostItem, error) {
	if errs := validator.Validate(req); errs != nil {
		fields := make(map[string]string, len(errs))
		for k := range errs {
			fields[k] = "Cost cannot be negative"
		}
		return nil, &ValidationError{Fields: fields}
	}

	items := make([]domain.CostItem, 0, len(req.CostBreakdown))
	for _, c := range req.CostBreakdown {
		items = append(items, domain.CostItem{Label: c.Label, Cost: c.Cost, Vendor: c.Vendor})
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	saved, err := s.bookings.UpdateCosts(tctx, operatorID, id, items)
	if err != nil {
		return nil, s.storageError("update costs", err)
	}

	if b, err := s.Get(ctx, operatorID, id); err == nil {
		s.afterChange(ctx, events.BookingUpdated, *b)
	}
	return saved, nil
}

// CheckDraft validates a draft without storing it and returns its live
// revenue.
func (s *Service) CheckDraft(req DraftRequest) DraftCheckResponse {
	form := schedule.NewForm()
	applyErrs := applyDraft(form, req)
	res := form.Validate()
	for k, v := range applyErrs {
		if res.Errors == nil {
			res.Errors = map[string]string{}
		}
		res.Errors[k] = v
		res.Valid = false
	}
	return DraftCheckResponse{ValidationResult: res, Revenue: form.Revenue()}
}

// DraftRevenue computes the revenue of a possibly incomplete draft.
func (s *Service) DraftRevenue(req DraftRequest) (schedule.Revenue, error) {
	form := schedule.NewForm()
	if errs := applyDraft(form, req); len(errs) > 0 {
		return schedule.Revenue{}, &ValidationError{Fields: errs}
	}
	return form.Revenue(), nil
}

// Summary totals revenue over bookings dated within [from, to]; empty bounds
// are open.
func (s *Service) Summary(ctx context.Context, operatorID, from, to string) (schedule.RevenueSummary, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := timefmt.ParseDate(d, s.loc); err != nil {
			return schedule.RevenueSummary{}, ErrInvalidDate
		}
	}

	bookings, err := s.List(ctx, operatorID)
	if err != nil {
		return schedule.RevenueSummary{}, err
	}

	in := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if (from == "" || b.Date >= from) && (to == "" || b.Date <= to) {
			in = append(in, b)
		}
	}
	return schedule.Summarize(in), nil
}

// afterChange publishes the change event and notifies live dashboards off
// the request goroutine. Both are best effort and bounded by the service
// timeout.
func (s *Service) afterChange(ctx context.Context, t events.Type, b domain.Booking) {
	if s.events == nil && s.live == nil {
		return
	}
	ev := events.NewEvent(t, b, s.now())
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if s.events != nil {
			if err := s.events.Publish(ctx, ev); err != nil {
				log.Printf("booking_event_publish_failed type=%s booking_id=%s error=%v", t, b.ID, err)
			}
		}
		if s.live != nil {
			s.live.BookingChanged(ctx, b.OperatorID, b.ID)
		}
	}()
}

// Wait blocks until every notification started by a mutation has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// storageError maps repository failures onto the service errors. The stored
// state is left as it was.
func (s *Service) storageError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("booking_storage_timeout op=%s timeout=%s error=%v", op, s.timeout, err)
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case errors.Is(err, repository.ErrConstraint):
		log.Printf("booking_storage_conflict op=%s error=%v", op, err)
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	case repository.IsSchemaError(err):
		log.Printf("booking_storage_unavailable op=%s error=%v", op, err)
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	default:
		log.Printf("booking_storage_failed op=%s error=%v", op, err)
		return fmt.Errorf("%s: %w: %v", op, ErrPersistence, err)
	}
}

func submitError(form *schedule.Form, err error) error {
	if errors.Is(err, schedule.ErrInvalidDraft) {
		return &ValidationError{Fields: form.Errors()}
	}
	return err
}

// operatorSaver stores drafts on behalf of one operator.
type operatorSaver struct {
	s          *Service
	operatorID string
}

func (s *Service) saverFor(operatorID string) schedule.BookingSaver {
	return operatorSaver{s: s, operatorID: operatorID}
}

func (o operatorSaver) Create(ctx context.Context, b domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, o.s.timeout)
	defer cancel()

	b.OperatorID = o.operatorID
	saved, err := o.s.bookings.Create(ctx, b)
	if err != nil {
		return nil, o.s.storageError("create", err)
	}
	return saved, nil
}

func (o operatorSaver) Update(ctx context.Context, id string, b domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, o.s.timeout)
	defer cancel()

	saved, err := o.s.bookings.Update(ctx, o.operatorID, id, b)
	if err != nil {
		return nil, o.s.storageError("update", err)
	}
	return saved, nil
}
