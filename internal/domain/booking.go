package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingStatuses is the display order used by the booking form.
var BookingStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingCompleted,
	BookingCancelled,
}

func (s BookingStatus) Valid() bool {
	for _, v := range BookingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type ShootType string

const (
	ShootWedding       ShootType = "wedding"
	ShootPortrait      ShootType = "portrait"
	ShootCommercial    ShootType = "commercial"
	ShootEvent         ShootType = "event"
	ShootProduct       ShootType = "product"
	ShootMaternity     ShootType = "maternity"
	ShootFashion       ShootType = "fashion"
	ShootPodcasting    ShootType = "podcasting"
	ShootBaby          ShootType = "baby"
	ShootModeling      ShootType = "modeling"
	ShootStudioRentals ShootType = "studio_rentals"
	ShootFood          ShootType = "food"
	ShootMakeupArtist  ShootType = "makeup_artist"
	ShootOther         ShootType = "other"
)

var ShootTypes = []ShootType{
	ShootWedding,
	ShootPortrait,
	ShootCommercial,
	ShootEvent,
	ShootProduct,
	ShootMaternity,
	ShootFashion,
	ShootPodcasting,
	ShootBaby,
	ShootModeling,
	ShootStudioRentals,
	ShootFood,
	ShootMakeupArtist,
	ShootOther,
}

func (t ShootType) Valid() bool {
	for _, v := range ShootTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Booking is a scheduled shoot. Date and Time are kept in their wire form
// ("2006-01-02" and "15:04") and parsed where a time instant is needed.
type Booking struct {
	ID           string        `json:"id"`
	OperatorID   string        `json:"operator_id"`
	ClientName   string        `json:"client_name"`
	Phone        string        `json:"phone"`
	Location     string        `json:"location"`
	Deliverables string        `json:"deliverables"`
	Notes        string        `json:"notes,omitempty"`
	ShootType    ShootType     `json:"shoot_type"`
	Date         string        `json:"date"`
	Time         string        `json:"time"`
	Duration     int           `json:"duration"`
	Price        *float64      `json:"price"`
	GST          *float64      `json:"gst"`
	Advance      float64       `json:"advance"`
	Status       BookingStatus `json:"status"`
	PaymentDone  bool          `json:"payment_done"`
	InvoiceSent  bool          `json:"invoice_sent"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	CostBreakdown []CostItem `json:"cost_breakdown"`
}

// CostItem is one line of itemized expense owned by a booking.
type CostItem struct {
	Label  string  `json:"label"`
	Cost   float64 `json:"cost"`
	Vendor string  `json:"vendor,omitempty"`
}

// SameMutableFields reports whether two bookings carry the same client-editable
// data, ignoring the id and timestamps assigned by storage.
func (b Booking) SameMutableFields(o Booking) bool {
	if b.ClientName != o.ClientName || b.Phone != o.Phone || b.Location != o.Location ||
		b.Deliverables != o.Deliverables || b.Notes != o.Notes || b.ShootType != o.ShootType ||
		b.Date != o.Date || b.Time != o.Time || b.Duration != o.Duration ||
		b.Advance != o.Advance || b.Status != o.Status ||
		b.PaymentDone != o.PaymentDone || b.InvoiceSent != o.InvoiceSent {
		return false
	}
	if !equalPtr(b.Price, o.Price) || !equalPtr(b.GST, o.GST) {
		return false
	}
	if len(b.CostBreakdown) != len(o.CostBreakdown) {
		return false
	}
	for i := range b.CostBreakdown {
		if b.CostBreakdown[i] != o.CostBreakdown[i] {
			return false
		}
	}
	return true
}

func equalPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
