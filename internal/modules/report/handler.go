package report

import (
	"errors"
	"net/http"
	"time"

	"propertydesk/internal/middleware"
	"propertydesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	reports.GET("/cash", middleware.RequireRole("admin", "manager"), h.Cash)
	reports.GET("/occupancy", h.Occupancy)
}

// Cash reads from/to as YYYY-MM-DD (to inclusive) or RFC3339 (to exclusive).
// Without parameters it reports the current day.
func (h *Handler) Cash(c *gin.Context) {
	today := time.Now().Truncate(24 * time.Hour)
	from, to := today, today.Add(24*time.Hour)

	if raw := c.Query("from"); raw != "" {
		t, _, err := parseBound(raw)
		if err != nil {
			response.BadRequest(c, "VALIDATION_ERROR", "from must be YYYY-MM-DD or RFC3339")
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, dateOnly, err := parseBound(raw)
		if err != nil {
			response.BadRequest(c, "VALIDATION_ERROR", "to must be YYYY-MM-DD or RFC3339")
			return
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		to = t
	}

	rep, err := h.service.Cash(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			response.BadRequest(c, "VALIDATION_ERROR", err.Error())
			return
		}
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, rep)
}

func (h *Handler) Occupancy(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		t, _, err := parseBound(raw)
		if err != nil {
			response.BadRequest(c, "VALIDATION_ERROR", "at must be YYYY-MM-DD or RFC3339")
			return
		}
		at = t
	}
	rep, err := h.service.Occupancy(c.Request.Context(), at)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, rep)
}

func parseBound(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}
