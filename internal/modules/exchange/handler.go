package exchange

import (
	"errors"
	"net/http"
	"strconv"

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

// RegisterRoutes mounts the read routes on rg and the update route behind
// the manager/admin role check.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exchange-rate", h.GetRate)
	rg.GET("/exchange-rate/history", h.GetHistory)
	rg.PUT("/exchange-rate", middleware.RequireRole("admin", "manager"), h.SetRate)
}

func (h *Handler) GetRate(c *gin.Context) {
	rate, err := h.service.Rate(c.Request.Context())
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, rate)
}

func (h *Handler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rates, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rates": rates})
}

func (h *Handler) SetRate(c *gin.Context) {
	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "cdf_per_usd must be a positive number")
		return
	}

	rate, err := h.service.Set(c.Request.Context(), req.CdfPerUsd, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, ErrInvalidRate) {
			response.BadRequest(c, "VALIDATION_ERROR", err.Error())
			return
		}
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, rate)
}
