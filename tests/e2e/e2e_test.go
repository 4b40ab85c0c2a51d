package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/app"
	"studiodesk/internal/config"
	jwtsvc "studiodesk/internal/pkg/jwt"
)

const testSecret = "test_secret_key_32_characters_min"

type E2ETestSuite struct {
	handler http.Handler
	jwt     *jwtsvc.Service
	loc     *time.Location
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", name))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DISPLAY_TZ", "Asia/Kolkata")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := app.New(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &E2ETestSuite{
		handler: a.Handler(),
		jwt:     jwtsvc.New(testSecret, time.Hour),
		loc:     cfg.Location(),
	}
}

func (s *E2ETestSuite) token(t *testing.T, operatorID string) string {
	tok, err := s.jwt.GenerateToken(operatorID, "Operator "+operatorID)
	require.NoError(t, err)
	return tok
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, TestResponse) {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var resp TestResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (s *E2ETestSuite) today() string {
	return time.Now().In(s.loc).Format("2006-01-02")
}

func validDraft(date string) map[string]interface{} {
	return map[string]interface{}{
		"client_name":  "Asha Menon",
		"phone":        "+91 98450 11223",
		"location":     "Studio A",
		"deliverables": "40 edited photos",
		"shoot_type":   "portrait",
		"date":         date,
		"time":         "23:30",
		"duration":     2,
		"price":        20000,
		"gst":          18,
		"advance":      5000,
		"status":       "confirmed",
		"cost_breakdown": []map[string]interface{}{
			{"label": "Assistant", "cost": 3000, "vendor": "Freelance"},
			{"label": "Travel", "cost": 1000},
		},
	}
}

func (s *E2ETestSuite) createBooking(t *testing.T, token string, draft map[string]interface{}) map[string]interface{} {
	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/bookings", draft, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return resp.Data["booking"].(map[string]interface{})
}

func TestHealth(t *testing.T) {
	s := setupTestSuite(t)

	w, _ := s.makeRequest(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)

	w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/bookings", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)
}

func TestBookingLifecycle(t *testing.T) {
	s := setupTestSuite(t)
	token := s.token(t, "op-1")
	date := s.today()

	created := s.createBooking(t, token, validDraft(date))
	id := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "op-1", created["operator_id"])

	revenue := created["revenue"].(map[string]interface{})
	assert.Equal(t, 16000.0, revenue["net_before_tax"])
	assert.Equal(t, 13120.0, revenue["net_revenue"])

	t.Run("get keeps cost order", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/bookings/"+id, nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		b := resp.Data["booking"].(map[string]interface{})
		costs := b["cost_breakdown"].([]interface{})
		require.Len(t, costs, 2)
		assert.Equal(t, "Assistant", costs[0].(map[string]interface{})["label"])
		assert.Equal(t, "Travel", costs[1].(map[string]interface{})["label"])
	})

	t.Run("listed for its date and today", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/bookings/day?date="+date, nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data["bookings"], 1)

		w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/bookings/today", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, date, resp.Data["date"])
		assert.Len(t, resp.Data["shoots"], 1)
	})

	t.Run("calendar month shows the booking", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/calendar?view=month&date="+date+"&selected="+id, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, date, resp.Data["date"])
		selected := resp.Data["selected"].(map[string]interface{})
		assert.Equal(t, id, selected["id"])
	})

	t.Run("update merges over stored booking", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodPut, "/api/v1/bookings/"+id, map[string]interface{}{
			"price":  30000,
			"status": "completed",
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, "Asha Menon", b["client_name"])
		assert.Equal(t, "completed", b["status"])
		assert.Len(t, b["cost_breakdown"], 2)
	})

	t.Run("replace costs", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodPut, "/api/v1/bookings/"+id+"/costs", map[string]interface{}{
			"cost_breakdown": []map[string]interface{}{{"label": "Prints", "cost": 1500}},
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, resp.Data["cost_breakdown"], 1)

		w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/bookings/"+id+"/costs", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp.Data["cost_breakdown"], 1)
	})

	t.Run("delete then not found", func(t *testing.T) {
		w, _ := s.makeRequest(t, http.MethodDelete, "/api/v1/bookings/"+id, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/bookings/"+id, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "BOOKING_NOT_FOUND", resp.Error.Code)
	})
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	s := setupTestSuite(t)
	token := s.token(t, "op-1")

	draft := validDraft(s.today())
	draft["advance"] = 25000
	draft["phone"] = "call me"

	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/bookings", draft, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "Advance cannot be greater than total price", resp.Error.Details["advance"])
	assert.Equal(t, "Enter a valid phone number", resp.Error.Details["phone"])

	w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/bookings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data["bookings"])
}

func TestCreateRejectsNonFiniteAmounts(t *testing.T) {
	s := setupTestSuite(t)
	token := s.token(t, "op-1")

	draft := validDraft(s.today())
	draft["price"] = "Infinity"
	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/bookings", draft, token)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "price")

	draft = validDraft(s.today())
	draft["cost_breakdown"] = []map[string]interface{}{{"label": "Lights", "cost": "Infinity"}}
	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/bookings", draft, token)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, resp.Error.Details, "cost_breakdown[0].cost")

	w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/bookings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data["bookings"])
}

func TestDraftPreviewEndpoints(t *testing.T) {
	s := setupTestSuite(t)
	token := s.token(t, "op-1")

	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/bookings/revenue", map[string]interface{}{
		"price": 10000,
		"gst":   10,
		"cost_breakdown": []map[string]interface{}{
			{"label": "Lights", "cost": 2000},
			{"label": "Props", "cost": 1000},
		},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rev := resp.Data["revenue"].(map[string]interface{})
	assert.Equal(t, 6300.0, rev["net_revenue"])

	w, resp = s.makeRequest(t, http.MethodPost, "/api/v1/bookings/validate", map[string]interface{}{
		"client_name": "Rahul",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data["valid"])
	errs := resp.Data["errors"].(map[string]interface{})
	assert.Contains(t, errs, "phone")
	assert.NotContains(t, errs, "client_name")
}

func TestOperatorIsolation(t *testing.T) {
	s := setupTestSuite(t)
	owner := s.token(t, "op-1")
	other := s.token(t, "op-2")

	created := s.createBooking(t, owner, validDraft(s.today()))
	id := created["id"].(string)

	w, _ := s.makeRequest(t, http.MethodGet, "/api/v1/bookings/"+id, nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.makeRequest(t, http.MethodDelete, "/api/v1/bookings/"+id, nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/bookings", nil, other)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data["bookings"])
}

func TestLookups(t *testing.T) {
	s := setupTestSuite(t)
	token := s.token(t, "op-1")

	w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/lookups/booking_status", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"pending", "confirmed", "completed", "cancelled"}, resp.Data["values"])

	w, resp = s.makeRequest(t, http.MethodGet, "/api/v1/lookups/shoot_type?refresh=true", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["values"], 14)

	w, _ = s.makeRequest(t, http.MethodGet, "/api/v1/lookups/colour", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
