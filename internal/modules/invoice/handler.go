package invoice

import (
	"errors"
	"net/http"
	"strconv"

	"propertydesk/internal/middleware"
	"propertydesk/internal/modules/billing"
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
	rg.GET("/invoices/:id", h.Get)
	rg.POST("/invoices/:id/discount", h.ApplyDiscount)
	rg.DELETE("/invoices/:id/discount", h.RemoveDiscount)
	rg.POST("/invoices/:id/cancel", middleware.RequireRole("admin", "manager"), h.Cancel)
	rg.GET("/bookings/:id/invoices", h.ListByBooking)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *Handler) ListByBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.service.ListByBooking(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"invoices": list})
}

func (h *Handler) ApplyDiscount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	inv, err := h.service.ApplyDiscount(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *Handler) RemoveDiscount(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inv, err := h.service.RemoveDiscount(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inv, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrInvalidDiscount), errors.Is(err, billing.ErrInvalidTaxRate):
		response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "NOT_FOUND", "Invoice not found")
	case errors.Is(err, billing.ErrInvoiceClosed), errors.Is(err, ErrHasPayments):
		response.Error(c, http.StatusConflict, "INVOICE_CLOSED", err.Error())
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
