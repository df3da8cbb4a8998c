package task

import (
	"errors"
	"net/http"
	"strconv"

	"propertydesk/internal/middleware"
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
	tasks := rg.Group("/tasks")
	tasks.GET("", h.ListOpen)
	tasks.POST("", h.Create)
	tasks.POST("/:id/complete", h.Complete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	t, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) ListOpen(c *gin.Context) {
	var roomID int64
	if raw := c.Query("room_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			response.BadRequest(c, "VALIDATION_ERROR", "Invalid room_id")
			return
		}
		roomID = id
	}
	list, err := h.service.ListOpen(c.Request.Context(), roomID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tasks": list})
}

func (h *Handler) Complete(c *gin.Context) {
	t, err := h.service.Complete(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if se, ok := saga.AsError(err); ok {
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "OPERATION_FAILED", "Task was not completed", se.Details())
		return
	}
	switch {
	case errors.Is(err, ErrValidation):
		response.BadRequest(c, "VALIDATION_ERROR", "kind must be CLEANING or MAINTENANCE")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "NOT_FOUND", "Task not found")
	case errors.Is(err, ErrRoomNotFound):
		response.NotFound(c, "ROOM_NOT_FOUND", "Room not found")
	case errors.Is(err, ErrAlreadyClosed):
		response.Error(c, http.StatusConflict, "TASK_CLOSED", err.Error())
	default:
		response.Internal(c, err)
	}
}
