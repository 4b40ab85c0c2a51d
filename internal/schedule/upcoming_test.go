package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/domain"
)

func TestUpcoming(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	bookings := []domain.Booking{
		{ID: "past", Date: "2026-10-19", Time: "09:00"},
		{ID: "later", Date: "2026-11-02", Time: "08:00"},
		{ID: "tomorrow", Date: "2026-10-20", Time: "18:30"},
		{ID: "today", Date: "2026-10-19", Time: "10:00"},
		{ID: "broken", Date: "soon", Time: "10:00"},
	}

	got := Upcoming(bookings, now, time.UTC, 0)

	require.Len(t, got, 3)
	assert.Equal(t, "today", got[0].Booking.ID)
	assert.Equal(t, "Today", got[0].DateLabel)
	assert.Equal(t, "10:00 AM", got[0].Time12)
	assert.Equal(t, "Tomorrow", got[1].DateLabel)
	assert.Equal(t, "6:30 PM", got[1].Time12)
	assert.Equal(t, "2 Nov", got[2].DateLabel)
}

func TestUpcoming_Limit(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	bookings := make([]domain.Booking, 0, 8)
	for d := 20; d < 28; d++ {
		bookings = append(bookings, domain.Booking{Date: time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), Time: "12:00"})
	}

	assert.Len(t, Upcoming(bookings, now, time.UTC, 0), DefaultUpcomingLimit)
	assert.Len(t, Upcoming(bookings, now, time.UTC, 2), 2)
}
