package booking

import (
	"context"
	"time"

	"propertydesk/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	Delete(ctx context.Context, id int64) error
	ListByRoom(ctx context.Context, roomID int64) ([]domain.Booking, error)
	HasOverlap(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (bool, error)
}

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error)
	UpdateTotals(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id int64) error
}

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// TenantDirectory resolves tenants referenced by bookings.
type TenantDirectory interface {
	Get(ctx context.Context, id int64) (*domain.Tenant, error)
	DisplayName(ctx context.Context, id int64) string
}

type RoomNotifier interface {
	RoomChanged(ctx context.Context, roomID int64)
}
