package schedule

import (
	"math"
	"sort"

	"studiodesk/internal/domain"
)

// Revenue is the derived financial view of a booking. It is never stored.
type Revenue struct {
	Gross        float64 `json:"gross"`
	TotalCosts   float64 `json:"total_costs"`
	NetBeforeTax float64 `json:"net_before_tax"`
	Net          float64 `json:"net_revenue"`
}

// NetRevenue derives net revenue from the gross price, the itemized costs and
// the GST percentage. The result is rounded only when GST applies and may be
// negative for a loss-making booking.
func NetRevenue(price *float64, costs []domain.CostItem, gst *float64) Revenue {
	var r Revenue
	if price != nil {
		r.Gross = *price
	}
	for _, c := range costs {
		r.TotalCosts += c.Cost
	}
	r.NetBeforeTax = r.Gross - r.TotalCosts
	r.Net = r.NetBeforeTax
	if gst != nil && *gst > 0 {
		r.Net = math.Round(r.NetBeforeTax - r.NetBeforeTax*(*gst)/100)
	}
	return r
}

func BookingRevenue(b domain.Booking) Revenue {
	return NetRevenue(b.Price, b.CostBreakdown, b.GST)
}

type ShootTypeTotals struct {
	ShootType domain.ShootType `json:"shoot_type"`
	Bookings  int              `json:"bookings"`
	Gross     float64          `json:"gross"`
	Net       float64          `json:"net_revenue"`
}

type RevenueSummary struct {
	Bookings    int               `json:"bookings"`
	Gross       float64           `json:"gross"`
	TotalCosts  float64           `json:"total_costs"`
	Net         float64           `json:"net_revenue"`
	Outstanding float64           `json:"outstanding"`
	ByShootType []ShootTypeTotals `json:"by_shoot_type"`
}

// Summarize totals the revenue of all non-cancelled bookings. Outstanding is
// the unpaid balance (gross minus advance) of bookings not marked paid.
func Summarize(bookings []domain.Booking) RevenueSummary {
	var s RevenueSummary
	byType := make(map[domain.ShootType]*ShootTypeTotals)

	for _, b := range bookings {
		if b.Status == domain.BookingCancelled {
			continue
		}
		r := BookingRevenue(b)
		s.Bookings++
		s.Gross += r.Gross
		s.TotalCosts += r.TotalCosts
		s.Net += r.Net
		if !b.PaymentDone {
			s.Outstanding += math.Max(r.Gross-b.Advance, 0)
		}

		t, ok := byType[b.ShootType]
		if !ok {
			t = &ShootTypeTotals{ShootType: b.ShootType}
			byType[b.ShootType] = t
		}
		t.Bookings++
		t.Gross += r.Gross
		t.Net += r.Net
	}

	s.ByShootType = make([]ShootTypeTotals, 0, len(byType))
	for _, t := range byType {
		s.ByShootType = append(s.ByShootType, *t)
	}
	sort.Slice(s.ByShootType, func(i, j int) bool {
		if s.ByShootType[i].Gross != s.ByShootType[j].Gross {
			return s.ByShootType[i].Gross > s.ByShootType[j].Gross
		}
		return s.ByShootType[i].ShootType < s.ByShootType[j].ShootType
	})
	return s
}
