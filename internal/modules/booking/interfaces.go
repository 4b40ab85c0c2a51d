package booking

import (
	"context"

	"studiodesk/internal/domain"
	"studiodesk/internal/events"
)

// BookingRepository is the persistence collaborator. All calls are scoped to
// the owning operator.
type BookingRepository interface {
	ListAll(ctx context.Context, operatorID string) ([]domain.Booking, error)
	ListForDate(ctx context.Context, operatorID, date string) ([]domain.Booking, error)
	GetByID(ctx context.Context, operatorID, id string) (*domain.Booking, error)
	Create(ctx context.Context, b domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, operatorID, id string, b domain.Booking) (*domain.Booking, error)
	Delete(ctx context.Context, operatorID, id string) (bool, error)
	GetCosts(ctx context.Context, operatorID, id string) ([]domain.CostItem, error)
	UpdateCosts(ctx context.Context, operatorID, id string, items []domain.CostItem) ([]domain.CostItem, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// LiveNotifier is told about every successful mutation.
type LiveNotifier interface {
	BookingChanged(ctx context.Context, operatorID, bookingID string)
}
