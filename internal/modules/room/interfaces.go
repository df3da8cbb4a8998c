package room

import (
	"context"
	"time"

	"propertydesk/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error
}

type BookingRepository interface {
	ListByRoom(ctx context.Context, roomID int64) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error)
	InProgressForRoom(ctx context.Context, roomID int64) (*domain.Booking, error)
	ListDueForCheckout(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

// RoomNotifier is told whenever a room's physical status changes.
type RoomNotifier interface {
	RoomChanged(ctx context.Context, roomID int64)
}
