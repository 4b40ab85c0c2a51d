package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"studiodesk/internal/domain"
)

// BookingRepository stores bookings and their cost items. Every read and
// write is scoped to the operator that owns the records.
type BookingRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db, now: time.Now}
}

// ListAll returns every booking of the operator ordered by date and time.
func (r *BookingRepository) ListAll(ctx context.Context, operatorID string) ([]domain.Booking, error) {
	return r.list(ctx, "list bookings", r.db.WithContext(ctx).Where("operator_id = ?", operatorID))
}

func (r *BookingRepository) ListForDate(ctx context.Context, operatorID, date string) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Where("operator_id = ? AND date = ?", operatorID, date)
	return r.list(ctx, "list day bookings", q)
}

// ListRange returns bookings whose date falls in [from, to]. Dates compare
// lexically because they are stored as YYYY-MM-DD.
func (r *BookingRepository) ListRange(ctx context.Context, operatorID, from, to string) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).Where("operator_id = ? AND date >= ? AND date <= ?", operatorID, from, to)
	return r.list(ctx, "list range bookings", q)
}

func (r *BookingRepository) list(ctx context.Context, op string, q *gorm.DB) ([]domain.Booking, error) {
	var rows []bookingModel
	if err := q.Order("date ASC, time ASC").Find(&rows).Error; err != nil {
		return nil, classify(op, err)
	}
	if len(rows) == 0 {
		return []domain.Booking{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}
	costs, err := r.costsFor(r.db.WithContext(ctx), ids)
	if err != nil {
		return nil, classify(op, err)
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainBooking(m, costs[m.ID]))
	}
	return out, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, operatorID, id string) (*domain.Booking, error) {
	db := r.db.WithContext(ctx)
	m, err := findOwned(db, operatorID, id)
	if err != nil {
		return nil, classify("get booking", err)
	}
	costs, err := r.costsFor(db, []string{id})
	if err != nil {
		return nil, classify("get booking", err)
	}
	b := toDomainBooking(*m, costs[id])
	return &b, nil
}

// Create stores b with its cost items in a single transaction and returns the
// stored record with id and timestamps assigned.
func (r *BookingRepository) Create(ctx context.Context, b domain.Booking) (*domain.Booking, error) {
	now := r.now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	m := toBookingModel(b)
	costs := toCostModels(b.ID, b.CostBreakdown)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		if len(costs) > 0 {
			if err := tx.Create(&costs).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify("create booking", err)
	}

	out := toDomainBooking(m, costs)
	return &out, nil
}

// Update replaces every mutable field of the booking and its cost items.
// Cost items are deleted and re-inserted inside the same transaction.
func (r *BookingRepository) Update(ctx context.Context, operatorID, id string, b domain.Booking) (*domain.Booking, error) {
	var (
		m     bookingModel
		costs []bookingCostModel
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findOwned(tx, operatorID, id)
		if err != nil {
			return err
		}

		b.ID = id
		b.OperatorID = operatorID
		b.CreatedAt = existing.CreatedAt
		b.UpdatedAt = r.now().UTC()
		m = toBookingModel(b)

		if err := tx.Model(&bookingModel{}).
			Where("id = ? AND operator_id = ?", id, operatorID).
			Select("*").
			Omit("id", "operator_id", "created_at").
			Updates(&m).Error; err != nil {
			return err
		}

		costs, err = replaceCosts(tx, id, b.CostBreakdown)
		return err
	})
	if err != nil {
		return nil, classify("update booking", err)
	}

	out := toDomainBooking(m, costs)
	return &out, nil
}

// Delete removes the booking and its cost items. It reports false when the
// operator owns no booking with that id.
func (r *BookingRepository) Delete(ctx context.Context, operatorID, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND operator_id = ?", id, operatorID).Delete(&bookingModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("booking_id = ?", id).Delete(&bookingCostModel{}).Error
	})
	if err != nil {
		return false, classify("delete booking", err)
	}
	return deleted, nil
}

// GetCosts returns the cost items of a booking in insertion order.
func (r *BookingRepository) GetCosts(ctx context.Context, operatorID, id string) ([]domain.CostItem, error) {
	db := r.db.WithContext(ctx)
	if _, err := findOwned(db, operatorID, id); err != nil {
		return nil, classify("get costs", err)
	}
	costs, err := r.costsFor(db, []string{id})
	if err != nil {
		return nil, classify("get costs", err)
	}
	return toDomainCosts(costs[id]), nil
}

// UpdateCosts replaces only the cost items of a booking.
func (r *BookingRepository) UpdateCosts(ctx context.Context, operatorID, id string, items []domain.CostItem) ([]domain.CostItem, error) {
	var costs []bookingCostModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned(tx, operatorID, id); err != nil {
			return err
		}
		if err := tx.Model(&bookingModel{}).Where("id = ?", id).
			Update("updated_at", r.now().UTC()).Error; err != nil {
			return err
		}
		var err error
		costs, err = replaceCosts(tx, id, items)
		return err
	})
	if err != nil {
		return nil, classify("update costs", err)
	}
	return toDomainCosts(costs), nil
}

func findOwned(db *gorm.DB, operatorID, id string) (*bookingModel, error) {
	var m bookingModel
	err := db.Where("id = ? AND operator_id = ?", id, operatorID).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func replaceCosts(tx *gorm.DB, bookingID string, items []domain.CostItem) ([]bookingCostModel, error) {
	if err := tx.Where("booking_id = ?", bookingID).Delete(&bookingCostModel{}).Error; err != nil {
		return nil, err
	}
	costs := toCostModels(bookingID, items)
	if len(costs) == 0 {
		return costs, nil
	}
	if err := tx.Create(&costs).Error; err != nil {
		return nil, err
	}
	return costs, nil
}

func (r *BookingRepository) costsFor(db *gorm.DB, ids []string) (map[string][]bookingCostModel, error) {
	var rows []bookingCostModel
	err := db.Where("booking_id IN ?", ids).
		Order("booking_id ASC, position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string][]bookingCostModel, len(ids))
	for _, c := range rows {
		out[c.BookingID] = append(out[c.BookingID], c)
	}
	return out, nil
}
