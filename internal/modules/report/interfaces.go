package report

import (
	"context"
	"time"

	"propertydesk/internal/domain"
)

type PaymentRepository interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Payment, error)
}

type RoomRepository interface {
	List(ctx context.Context) ([]domain.Room, error)
}

type BookingRepository interface {
	ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error)
}

type RateSource interface {
	Current(ctx context.Context) (float64, error)
}
