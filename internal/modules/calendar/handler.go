package calendar

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studiodesk/internal/middleware"
	"studiodesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/calendar", h.Get)
}

// Get handles GET /calendar?view=&date=&action=next|prev|today&selected=
func (h *Handler) Get(c *gin.Context) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid calendar query")
		return
	}

	view, err := h.service.View(c.Request.Context(), middleware.OperatorID(c), q)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuery):
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Selected booking not found")
		case errors.Is(err, ErrTimeout):
			_ = c.Error(err)
			response.Error(c, http.StatusGatewayTimeout, "STORAGE_TIMEOUT", "The booking store did not respond in time, please retry")
		case errors.Is(err, ErrUnavailable):
			_ = c.Error(err)
			response.Error(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "The booking store is unavailable, please retry later")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to load calendar")
		}
		return
	}

	response.Success(c, http.StatusOK, view)
}
