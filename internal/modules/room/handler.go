package room

import (
	"errors"
	"net/http"
	"strconv"
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
	rooms := rg.Group("/rooms")
	rooms.GET("", h.List)
	rooms.GET("/board", h.Board)
	rooms.GET("/:id", h.Get)
	rooms.GET("/:id/status", h.Status)
	rooms.POST("", middleware.AdminOnly(), h.Create)
	rooms.POST("/:id/maintenance", middleware.RequireRole("admin", "manager"), h.SetMaintenance)
	rooms.POST("/flag-checkouts", middleware.RequireRole("admin", "manager"), h.FlagCheckouts)
}

// RegisterInternalRoutes mounts the scheduler entry point; rg carries the
// internal token check instead of JWT.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/flag-checkouts", h.FlagCheckouts)
}

// ParseInstant reads the optional ?at= query as RFC3339 or a plain date.
func ParseInstant(c *gin.Context) (time.Time, bool) {
	raw := c.Query("at")
	if raw == "" {
		return time.Now(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, fieldErrs, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, fieldErrs)
		return
	}
	response.Success(c, http.StatusCreated, r)
}

func (h *Handler) List(c *gin.Context) {
	rooms, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) Status(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	at, ok := ParseInstant(c)
	if !ok {
		response.BadRequest(c, "VALIDATION_ERROR", "at must be RFC3339 or YYYY-MM-DD")
		return
	}
	view, err := h.service.Status(c.Request.Context(), id, at)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) Board(c *gin.Context) {
	at, ok := ParseInstant(c)
	if !ok {
		response.BadRequest(c, "VALIDATION_ERROR", "at must be RFC3339 or YYYY-MM-DD")
		return
	}
	views, err := h.service.Board(c.Request.Context(), at)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": views, "at": at})
}

func (h *Handler) SetMaintenance(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "enabled is required")
		return
	}
	r, err := h.service.SetMaintenance(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) FlagCheckouts(c *gin.Context) {
	flagged, err := h.service.FlagCheckouts(c.Request.Context(), time.Now())
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"flagged": flagged})
}

func (h *Handler) fail(c *gin.Context, err error, details map[string]string) {
	switch {
	case errors.Is(err, ErrValidation):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room", details)
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "NOT_FOUND", "Room not found")
	case errors.Is(err, ErrDuplicate):
		response.Error(c, http.StatusConflict, "ROOM_EXISTS", err.Error())
	case errors.Is(err, ErrRoomInUse), errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "ROOM_IN_USE", err.Error())
	default:
		response.Internal(c, err)
	}
}

func roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "INVALID_ID", "Invalid room ID")
		return 0, false
	}
	return id, true
}
