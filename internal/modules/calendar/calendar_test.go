package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/domain"
	"studiodesk/internal/repository"
	"studiodesk/internal/schedule"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) ListRange(ctx context.Context, operatorID, from, to string) ([]domain.Booking, error) {
	args := m.Called(ctx, operatorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, operatorID, id string) (*domain.Booking, error) {
	args := m.Called(ctx, operatorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func newTestService(repo *MockBookingRepository) *Service {
	svc := NewService(repo, time.UTC, time.Second)
	svc.now = func() time.Time { return time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestView_DefaultsToCurrentMonth(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("ListRange", mock.Anything, "op-1", "2026-01-01", "2026-01-31").Return([]domain.Booking{
		{ID: "bk-1", Date: "2026-01-20", Time: "10:00"},
		{ID: "bad", Date: "2026-01-xx", Time: "10:00"},
	}, nil)

	v, err := newTestService(repo).View(context.Background(), "op-1", Query{})

	require.NoError(t, err)
	assert.Equal(t, schedule.ViewMonth, v.View)
	assert.Equal(t, "2026-01-14", v.Date)
	assert.Equal(t, "January 2026", v.Title)
	require.NotNil(t, v.Grid.Month)
	assert.Equal(t, []string{"bad"}, v.Grid.Skipped())
	assert.Nil(t, v.Selected)
}

func TestView_NavigateMonthClamps(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("ListRange", mock.Anything, "op-1", "2026-02-01", "2026-02-28").Return([]domain.Booking{}, nil)

	v, err := newTestService(repo).View(context.Background(), "op-1", Query{Date: "2026-01-31", Action: "next"})

	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", v.Date)
}

func TestView_WeekRangeStartsSunday(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("ListRange", mock.Anything, "op-1", "2026-01-04", "2026-01-10").Return([]domain.Booking{}, nil)

	v, err := newTestService(repo).View(context.Background(), "op-1", Query{View: "week", Date: "2026-01-14", Action: "prev"})

	require.NoError(t, err)
	assert.Equal(t, "2026-01-07", v.Date)
	require.NotNil(t, v.Grid.Week)
	assert.Len(t, v.Grid.Week.Days, 7)
}

func TestView_TodayAndSelection(t *testing.T) {
	repo := new(MockBookingRepository)
	price := 5000.0
	repo.On("ListRange", mock.Anything, "op-1", "2026-01-14", "2026-01-14").Return([]domain.Booking{}, nil)
	repo.On("GetByID", mock.Anything, "op-1", "bk-7").Return(&domain.Booking{
		ID: "bk-7", Date: "2026-01-14", Time: "09:20", Price: &price,
		CostBreakdown: []domain.CostItem{{Cost: 1000}},
	}, nil)

	v, err := newTestService(repo).View(context.Background(), "op-1", Query{View: "day", Date: "2025-12-01", Action: "today", Selected: "bk-7"})

	require.NoError(t, err)
	assert.Equal(t, "2026-01-14", v.Date)
	require.NotNil(t, v.Selected)
	assert.Equal(t, 4000.0, v.Selected.Revenue.Net)
	require.NotNil(t, v.Selected.TimeStatus)
	assert.Equal(t, schedule.BucketUrgent, v.Selected.TimeStatus.Bucket)
}

func TestView_InvalidQuery(t *testing.T) {
	svc := newTestService(new(MockBookingRepository))

	for _, q := range []Query{{View: "year"}, {Date: "14-01-2026"}, {Action: "sideways"}} {
		_, err := svc.View(context.Background(), "op-1", q)
		assert.ErrorIs(t, err, ErrInvalidQuery, "%+v", q)
	}
}

func TestView_SelectedMissing(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("ListRange", mock.Anything, "op-1", mock.Anything, mock.Anything).Return([]domain.Booking{}, nil)
	repo.On("GetByID", mock.Anything, "op-1", "gone").Return(nil, repository.ErrBookingNotFound)

	_, err := newTestService(repo).View(context.Background(), "op-1", Query{Selected: "gone"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(MockBookingRepository)
	repo.On("ListRange", mock.Anything, "op-1", "2026-03-01", "2026-03-31").Return([]domain.Booking{
		{ID: "bk-1", Date: "2026-03-03", Time: "10:00"},
		{ID: "bk-2", Date: "2026-03-03", Time: "11:00"},
		{ID: "bk-3", Date: "2026-03-03", Time: "12:00"},
		{ID: "bk-4", Date: "2026-03-03", Time: "13:00"},
	}, nil)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) { c.Set("operator_id", "op-1"); c.Next() })
	NewHandler(newTestService(repo)).RegisterRoutes(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/calendar?view=month&date=2026-03-10", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env struct {
		Data struct {
			Title string `json:"title"`
			Grid  struct {
				Month struct {
					LeadingBlanks int `json:"leading_blanks"`
					Cells         []*struct {
						Day           int               `json:"day"`
						Bookings      []json.RawMessage `json:"bookings"`
						OverflowLabel string            `json:"overflow_label"`
					} `json:"cells"`
				} `json:"month"`
			} `json:"grid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "March 2026", env.Data.Title)
	assert.Equal(t, 0, env.Data.Grid.Month.LeadingBlanks)
	cell := env.Data.Grid.Month.Cells[2]
	require.NotNil(t, cell)
	assert.Equal(t, 3, cell.Day)
	assert.Len(t, cell.Bookings, 3)
	assert.Equal(t, "+1 more", cell.OverflowLabel)
}

func TestHandler_StorageErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
		body string
	}{
		{fmt.Errorf("list range: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "STORAGE_TIMEOUT"},
		{fmt.Errorf("list range: %w", repository.ErrUnavailable), http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
		{errors.New("disk full"), http.StatusInternalServerError, "PERSISTENCE_ERROR"},
	}
	for _, tc := range cases {
		repo := new(MockBookingRepository)
		repo.On("ListRange", mock.Anything, "", mock.Anything, mock.Anything).Return(nil, tc.err)
		r := gin.New()
		NewHandler(newTestService(repo)).RegisterRoutes(r.Group("/api/v1"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/calendar", nil))

		assert.Equal(t, tc.code, w.Code, tc.body)
		assert.Contains(t, w.Body.String(), tc.body)
	}
}

func TestHandler_BadView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(newTestService(new(MockBookingRepository))).RegisterRoutes(api)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/calendar?view=year", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_QUERY")
}
