package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"studiodesk/internal/domain"
	"studiodesk/internal/schedule"
)

type Type string

const (
	BookingCreated Type = "booking.created"
	BookingUpdated Type = "booking.updated"
	BookingDeleted Type = "booking.deleted"
)

// Event describes a booking change. Deleted events carry only the ids.
type Event struct {
	Type       Type      `json:"type"`
	BookingID  string    `json:"booking_id"`
	OperatorID string    `json:"operator_id"`
	Date       string    `json:"date,omitempty"`
	Time       string    `json:"time,omitempty"`
	Status     string    `json:"status,omitempty"`
	NetRevenue *float64  `json:"net_revenue,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent builds an event for b. The net revenue is derived, never stored.
func NewEvent(t Type, b domain.Booking, at time.Time) Event {
	ev := Event{
		Type:       t,
		BookingID:  b.ID,
		OperatorID: b.OperatorID,
		OccurredAt: at.UTC(),
	}
	if t == BookingDeleted {
		return ev
	}
	net := schedule.BookingRevenue(b).Net
	ev.Date = b.Date
	ev.Time = b.Time
	ev.Status = string(b.Status)
	ev.NetRevenue = &net
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// KafkaPublisher writes events to a topic keyed by booking id so changes to
// one booking stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: data,
		Time:  ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, ev Event) error {
	log.Printf("booking_event type=%s booking_id=%s operator_id=%s date=%s time=%s status=%s",
		ev.Type, ev.BookingID, ev.OperatorID, ev.Date, ev.Time, ev.Status)
	return nil
}

func (LogPublisher) Close() error { return nil }

// New returns a Kafka publisher when brokers are configured and a
// LogPublisher otherwise.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}
	log.Printf("booking events: kafka brokers=%v topic=%s", brokers, topic)
	return NewKafkaPublisher(brokers, topic)
}
