package task

import "propertydesk/internal/domain"

type CreateTaskRequest struct {
	RoomID      int64           `json:"room_id" binding:"required"`
	Kind        domain.TaskKind `json:"kind" binding:"required"`
	Description string          `json:"description"`
}
