package board

import (
	"context"

	"propertydesk/internal/domain"
)

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
}

type BookingRepository interface {
	ListByRoom(ctx context.Context, roomID int64) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error)
}

// Broadcaster is what the board needs from the Hub.
type Broadcaster interface {
	Broadcast(message any) int
}
