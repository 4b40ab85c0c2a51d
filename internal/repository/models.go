package repository

import (
	"time"

	"studiodesk/internal/domain"
)

type bookingModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:36"`
	OperatorID   string    `gorm:"column:operator_id;size:64;not null;index:idx_bookings_operator_date,priority:1"`
	ClientName   string    `gorm:"column:client_name;not null"`
	Phone        string    `gorm:"column:phone;size:32;not null"`
	Location     string    `gorm:"column:location"`
	Deliverables string    `gorm:"column:deliverables"`
	Notes        *string   `gorm:"column:notes"`
	ShootType    string    `gorm:"column:shoot_type;size:32;not null"`
	Date         string    `gorm:"column:date;size:10;not null;index:idx_bookings_operator_date,priority:2"`
	Time         string    `gorm:"column:time;size:8;not null"`
	Duration     int       `gorm:"column:duration;not null"`
	Price        *float64  `gorm:"column:price"`
	GST          *float64  `gorm:"column:gst"`
	Advance      float64   `gorm:"column:advance;not null;default:0"`
	Status       string    `gorm:"column:status;size:16;not null"`
	PaymentDone  bool      `gorm:"column:payment_done;not null;default:false"`
	InvoiceSent  bool      `gorm:"column:invoice_sent;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingCostModel struct {
	ID        int64   `gorm:"column:id;primaryKey;autoIncrement"`
	BookingID string  `gorm:"column:booking_id;size:36;not null;index"`
	Position  int     `gorm:"column:position;not null"`
	Label     string  `gorm:"column:label"`
	Cost      float64 `gorm:"column:cost;not null;default:0"`
	Vendor    *string `gorm:"column:vendor"`
}

func (bookingCostModel) TableName() string { return "booking_costs" }

// Models lists every table the repositories read or write, in migration order.
func Models() []any {
	return []any{
		&bookingModel{},
		&bookingCostModel{},
		&domain.EnumValue{},
	}
}

func toDomainBooking(m bookingModel, costs []bookingCostModel) domain.Booking {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}

	return domain.Booking{
		ID:            m.ID,
		OperatorID:    m.OperatorID,
		ClientName:    m.ClientName,
		Phone:         m.Phone,
		Location:      m.Location,
		Deliverables:  m.Deliverables,
		Notes:         notes,
		ShootType:     domain.ShootType(m.ShootType),
		Date:          m.Date,
		Time:          m.Time,
		Duration:      m.Duration,
		Price:         m.Price,
		GST:           m.GST,
		Advance:       m.Advance,
		Status:        domain.BookingStatus(m.Status),
		PaymentDone:   m.PaymentDone,
		InvoiceSent:   m.InvoiceSent,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		CostBreakdown: toDomainCosts(costs),
	}
}

func toBookingModel(b domain.Booking) bookingModel {
	var notes *string
	if b.Notes != "" {
		v := b.Notes
		notes = &v
	}

	return bookingModel{
		ID:           b.ID,
		OperatorID:   b.OperatorID,
		ClientName:   b.ClientName,
		Phone:        b.Phone,
		Location:     b.Location,
		Deliverables: b.Deliverables,
		Notes:        notes,
		ShootType:    string(b.ShootType),
		Date:         b.Date,
		Time:         b.Time,
		Duration:     b.Duration,
		Price:        b.Price,
		GST:          b.GST,
		Advance:      b.Advance,
		Status:       string(b.Status),
		PaymentDone:  b.PaymentDone,
		InvoiceSent:  b.InvoiceSent,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toDomainCosts(rows []bookingCostModel) []domain.CostItem {
	out := make([]domain.CostItem, 0, len(rows))
	for _, r := range rows {
		var vendor string
		if r.Vendor != nil {
			vendor = *r.Vendor
		}
		out = append(out, domain.CostItem{Label: r.Label, Cost: r.Cost, Vendor: vendor})
	}
	return out
}

func toCostModels(bookingID string, items []domain.CostItem) []bookingCostModel {
	out := make([]bookingCostModel, 0, len(items))
	for i, c := range items {
		var vendor *string
		if c.Vendor != "" {
			v := c.Vendor
			vendor = &v
		}
		out = append(out, bookingCostModel{
			BookingID: bookingID,
			Position:  i,
			Label:     c.Label,
			Cost:      c.Cost,
			Vendor:    vendor,
		})
	}
	return out
}
