package live

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"studiodesk/internal/domain"
	"studiodesk/internal/pkg/timefmt"
	"studiodesk/internal/schedule"
)

// BookingSource loads the bookings of one operator for one date.
type BookingSource interface {
	ListForDate(ctx context.Context, operatorID, date string) ([]domain.Booking, error)
}

// Broadcaster pushes today's shoots, with their time status recomputed
// against the live clock, to connected operators.
type Broadcaster struct {
	hub     *Hub
	source  BookingSource
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
}

func NewBroadcaster(hub *Hub, source BookingSource, loc *time.Location, timeout time.Duration) *Broadcaster {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Broadcaster{hub: hub, source: source, loc: loc, timeout: timeout, now: time.Now}
}

// TodayShoots loads and classifies the operator's shoots for the current date.
func (b *Broadcaster) TodayShoots(ctx context.Context, operatorID string) ([]schedule.TodayShoot, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	now := b.now()
	bookings, err := b.source.ListForDate(ctx, operatorID, timefmt.DateKey(now, b.loc))
	if err != nil {
		return nil, err
	}
	return schedule.TodayShoots(bookings, now, b.loc), nil
}

// PushOperator sends the operator's current shoot list to all their
// connections.
func (b *Broadcaster) PushOperator(ctx context.Context, operatorID string) error {
	shoots, err := b.TodayShoots(ctx, operatorID)
	if err != nil {
		return err
	}
	b.hub.SendToOperator(operatorID, Message{Type: MessageTodayShoots, Data: shoots, At: b.now().UTC()})
	return nil
}

// Refresh pushes to every connected operator. Failures are logged per
// operator and do not stop the sweep.
func (b *Broadcaster) Refresh(ctx context.Context) {
	for _, op := range b.hub.Operators() {
		if err := b.PushOperator(ctx, op); err != nil {
			log.Printf("live_refresh_failed operator_id=%s error=%v", op, err)
		}
	}
}

// BookingChanged tells the operator's dashboards that a booking changed and
// sends the refreshed shoot list.
func (b *Broadcaster) BookingChanged(ctx context.Context, operatorID, bookingID string) {
	if !b.hub.IsOnline(operatorID) {
		return
	}
	b.hub.SendToOperator(operatorID, Message{
		Type: MessageBookingChanged,
		Data: map[string]string{"booking_id": bookingID},
		At:   b.now().UTC(),
	})
	if err := b.PushOperator(ctx, operatorID); err != nil {
		log.Printf("live_push_failed operator_id=%s error=%v", operatorID, err)
	}
}

// Start schedules Refresh every tick and returns the stop function, which
// waits for a running refresh to finish.
func (b *Broadcaster) Start(tick time.Duration) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", tick), func() {
		b.Refresh(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("schedule live refresh: %w", err)
	}

	c.Start()
	log.Printf("live scheduler started tick=%s", tick)

	return func() {
		<-c.Stop().Done()
	}, nil
}
