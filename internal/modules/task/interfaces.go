package task

import (
	"context"

	"propertydesk/internal/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	ListOpen(ctx context.Context, roomID int64) ([]domain.Task, error)
}

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error
}

type RoomNotifier interface {
	RoomChanged(ctx context.Context, roomID int64)
}
