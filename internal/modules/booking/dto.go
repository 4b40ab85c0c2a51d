package booking

import (
	"studiodesk/internal/domain"
	"studiodesk/internal/schedule"
)

// DraftRequest is a booking draft as sent by the form: field name to value.
// Values keep their JSON types (json.Number for numbers).
type DraftRequest map[string]any

// CostItemsRequest replaces only the cost breakdown of a booking.
type CostItemsRequest struct {
	CostBreakdown []CostItemInput `json:"cost_breakdown" validate:"dive"`
}

type CostItemInput struct {
	Label  string  `json:"label"`
	Cost   float64 `json:"cost" validate:"gte=0"`
	Vendor string  `json:"vendor"`
}

type BookingResponse struct {
	domain.Booking
	Revenue schedule.Revenue `json:"revenue"`
}

func toResponse(b domain.Booking) BookingResponse {
	return BookingResponse{Booking: b, Revenue: schedule.BookingRevenue(b)}
}

func toResponses(bookings []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toResponse(b))
	}
	return out
}

type DraftCheckResponse struct {
	schedule.ValidationResult
	Revenue schedule.Revenue `json:"revenue"`
}

type TodayResponse struct {
	Date   string                `json:"date"`
	Title  string                `json:"title"`
	Shoots []schedule.TodayShoot `json:"shoots"`
}

type DayResponse struct {
	Date     string            `json:"date"`
	Title    string            `json:"title"`
	Bookings []BookingResponse `json:"bookings"`
}
