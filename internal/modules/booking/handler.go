package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studiodesk/internal/middleware"
	"studiodesk/internal/pkg/response"
	"studiodesk/internal/pkg/timefmt"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	b := rg.Group("/bookings")
	{
		b.GET("", h.List)
		b.GET("/day", h.Day)
		b.GET("/today", h.Today)
		b.GET("/upcoming", h.Upcoming)
		b.GET("/revenue/summary", h.RevenueSummary)
		b.GET("/:id", h.Get)
		b.GET("/:id/costs", h.GetCosts)
		b.PUT("/:id/costs", h.ReplaceCosts)
		b.POST("", h.Create)
		b.PUT("/:id", h.Update)
		b.DELETE("/:id", h.Delete)
		b.POST("/validate", h.Validate)
		b.POST("/revenue", h.Revenue)
	}
}

func (h *Handler) List(c *gin.Context) {
	bookings, err := h.service.List(c.Request.Context(), middleware.OperatorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": toResponses(bookings)})
}

func (h *Handler) Day(c *gin.Context) {
	date := c.Query("date")
	bookings, err := h.service.ListForDate(c.Request.Context(), middleware.OperatorID(c), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, DayResponse{
		Date:     date,
		Title:    timefmt.FormatDateString(date),
		Bookings: toResponses(bookings),
	})
}

func (h *Handler) Today(c *gin.Context) {
	today, err := h.service.Today(c.Request.Context(), middleware.OperatorID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, today)
}

func (h *Handler) Upcoming(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			response.Error(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	upcoming, err := h.service.Upcoming(c.Request.Context(), middleware.OperatorID(c), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": upcoming})
}

func (h *Handler) Get(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), middleware.OperatorID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toResponse(*b)})
}

func (h *Handler) GetCosts(c *gin.Context) {
	items, err := h.service.Costs(c.Request.Context(), middleware.OperatorID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cost_breakdown": items})
}

func (h *Handler) ReplaceCosts(c *gin.Context) {
	var req CostItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	items, err := h.service.ReplaceCosts(c.Request.Context(), middleware.OperatorID(c), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cost_breakdown": items})
}

func (h *Handler) Create(c *gin.Context) {
	req, ok := bindDraft(c)
	if !ok {
		return
	}

	b, err := h.service.Create(c.Request.Context(), middleware.OperatorID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": toResponse(*b)})
}

func (h *Handler) Update(c *gin.Context) {
	req, ok := bindDraft(c)
	if !ok {
		return
	}

	b, err := h.service.Update(c.Request.Context(), middleware.OperatorID(c), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": toResponse(*b)})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.OperatorID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Validate(c *gin.Context) {
	req, ok := bindDraft(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, h.service.CheckDraft(req))
}

func (h *Handler) Revenue(c *gin.Context) {
	req, ok := bindDraft(c)
	if !ok {
		return
	}

	rev, err := h.service.DraftRevenue(req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revenue": rev})
}

func (h *Handler) RevenueSummary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), middleware.OperatorID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// bindDraft decodes the body keeping numbers as json.Number so integer and
// decimal input reach the form unchanged.
func bindDraft(c *gin.Context) (DraftRequest, bool) {
	var req DraftRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil || req == nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return nil, false
	}
	return req, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.Validation(c, verr.Fields)
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "date must be in YYYY-MM-DD format")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrTimeout):
		_ = c.Error(err)
		response.Error(c, http.StatusGatewayTimeout, "STORAGE_TIMEOUT", "The booking store did not respond in time, please retry")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "The booking conflicts with stored data")
	case errors.Is(err, ErrUnavailable):
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "The booking store is unavailable, please retry later")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to save or load bookings")
	}
}
