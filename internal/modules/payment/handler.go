package payment

import (
	"errors"
	"net/http"
	"strconv"

	"propertydesk/internal/middleware"
	"propertydesk/internal/modules/billing"
	"propertydesk/internal/pkg/idempotency"
	"propertydesk/internal/pkg/response"
	"propertydesk/internal/pkg/saga"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	idem    idempotency.Store
}

// NewHandler wires the payment routes. With a non-nil store, POST /payments
// honours the Idempotency-Key header.
func NewHandler(service *Service, idem idempotency.Store) *Handler {
	return &Handler{service: service, idem: idem}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	record := []gin.HandlerFunc{h.Record}
	if h.idem != nil {
		record = append([]gin.HandlerFunc{middleware.Idempotency(h.idem)}, record...)
	}
	rg.POST("/payments", record...)
	rg.POST("/payments/preview", h.Preview)
	rg.GET("/invoices/:id/balance", h.Balance)
	rg.GET("/invoices/:id/payments", h.List)
}

func (h *Handler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	res, err := h.service.Record(c.Request.Context(), req, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	s, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, s)
}

func (h *Handler) Balance(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	proj, err := h.service.Balance(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, proj)
}

func (h *Handler) List(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	list, err := h.service.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": list})
}

func (h *Handler) fail(c *gin.Context, err error) {
	if se, ok := saga.AsError(err); ok {
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "OPERATION_FAILED", "Payment was not recorded", se.Details())
		return
	}
	switch {
	case errors.Is(err, ErrValidation):
		response.BadRequest(c, "VALIDATION_ERROR", "method must be CASH, MOBILE_MONEY, BANK_TRANSFER or CARD")
	case errors.Is(err, billing.ErrNegativeAmount), errors.Is(err, billing.ErrEmptyPayment), errors.Is(err, billing.ErrInvalidRate):
		response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvoiceNotFound):
		response.NotFound(c, "NOT_FOUND", "Invoice not found")
	case errors.Is(err, ErrInvoiceClosed), errors.Is(err, ErrNothingDue):
		response.Error(c, http.StatusConflict, "INVOICE_CLOSED", err.Error())
	default:
		response.Internal(c, err)
	}
}

func invoiceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "INVALID_ID", "Invalid invoice ID")
		return 0, false
	}
	return id, true
}
