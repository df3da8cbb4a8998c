package tenant

import (
	"errors"
	"net/http"
	"strconv"

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
	tenants := rg.Group("/tenants")
	tenants.POST("", h.Create)
	tenants.GET("", h.List)
	tenants.GET("/:id", h.Get)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	t, fieldErrs, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid tenant", fieldErrs)
			return
		}
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "INVALID_ID", "Invalid tenant ID")
		return
	}
	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "NOT_FOUND", "Tenant not found")
			return
		}
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	out, err := h.service.Search(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
