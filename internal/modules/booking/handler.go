package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"propertydesk/internal/modules/billing"
	"propertydesk/internal/pkg/response"
	"propertydesk/internal/pkg/saga"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	bookings.POST("", h.Create)
	bookings.GET("/:id", h.Get)
	bookings.POST("/:id/confirm", h.Confirm)
	bookings.POST("/:id/check-in", h.CheckIn)
	bookings.POST("/:id/cancel", h.Cancel)
	bookings.POST("/:id/extend", h.Extend)
	bookings.GET("/:id/checkout", h.CheckoutChoice)
	bookings.POST("/:id/checkout/depart", h.Depart)
	bookings.POST("/:id/checkout/extend", h.CheckoutExtend)

	rg.GET("/rooms/:id/bookings", h.ListByRoom)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	details, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, details)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	details, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, details)
}

func (h *Handler) ListByRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.service.ListByRoom(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.CheckIn(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CancelRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) Extend(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "new_end is required")
		return
	}
	res, err := h.service.Extend(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) CheckoutChoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var proposed *time.Time
	if raw := c.Query("new_end"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			response.BadRequest(c, "VALIDATION_ERROR", "new_end must be RFC3339 or YYYY-MM-DD")
			return
		}
		proposed = &t
	}
	choice, err := h.service.CheckoutChoice(c.Request.Context(), id, proposed)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, choice)
}

func (h *Handler) Depart(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.service.Depart(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) CheckoutExtend(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "new_end is required")
		return
	}
	res, err := h.service.CheckoutExtend(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if se, ok := saga.AsError(err); ok {
		_ = c.Error(err)
		msg := "Operation failed and was rolled back"
		if !se.Consistent() {
			msg = "Operation failed and could not be fully rolled back"
		}
		response.ErrorWithDetails(c, http.StatusInternalServerError, "OPERATION_FAILED", msg, se.Details())
		return
	}

	switch {
	case errors.Is(err, ErrValidation):
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid booking dates or amounts")
	case errors.Is(err, billing.ErrExtensionNotAfterEnd),
		errors.Is(err, billing.ErrNegativeNightDiscount),
		errors.Is(err, billing.ErrInvalidDiscount):
		response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrRoomNotFound):
		response.NotFound(c, "ROOM_NOT_FOUND", "Room not found")
	case errors.Is(err, ErrTenantNotFound):
		response.NotFound(c, "TENANT_NOT_FOUND", "Tenant not found")
	case errors.Is(err, ErrNotAvailable):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", err.Error())
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrRoomUnavailable),
		errors.Is(err, ErrNotCheckedIn),
		errors.Is(err, billing.ErrExtensionNotAllowed):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	default:
		response.Internal(c, err)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
