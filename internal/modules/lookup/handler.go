package lookup

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studiodesk/internal/lookup"
	"studiodesk/internal/pkg/response"
)

// EnumService is satisfied by *lookup.Service.
type EnumService interface {
	EnumValues(ctx context.Context, name string, opts lookup.Options) ([]string, error)
}

type Handler struct {
	service EnumService
}

func NewHandler(service EnumService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/lookups/:name", h.GetEnum)
}

type EnumResponse struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// GetEnum handles GET /lookups/:name?refresh=true
func (h *Handler) GetEnum(c *gin.Context) {
	name := c.Param("name")

	refresh := false
	if raw := c.Query("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "refresh must be a boolean")
			return
		}
		refresh = v
	}

	values, err := h.service.EnumValues(c.Request.Context(), name, lookup.Options{ForceRefresh: refresh})
	if err != nil {
		if errors.Is(err, lookup.ErrUnknownEnum) {
			response.Error(c, http.StatusNotFound, "ENUM_NOT_FOUND", "Unknown enumeration: "+name)
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "LOOKUP_FAILED", "Failed to load values")
		return
	}

	response.Success(c, http.StatusOK, EnumResponse{Name: name, Values: values})
}
