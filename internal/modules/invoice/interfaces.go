package invoice

import (
	"context"

	"propertydesk/internal/domain"
)

type InvoiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error)
	UpdateTotals(ctx context.Context, inv *domain.Invoice) error
}

type PaymentRepository interface {
	ListByInvoice(ctx context.Context, invoiceID int64) ([]domain.Payment, error)
}

type RateSource interface {
	Current(ctx context.Context) (float64, error)
}
