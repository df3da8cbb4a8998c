package payment

import (
	"context"

	"propertydesk/internal/domain"
)

type InvoiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	UpdateTotals(ctx context.Context, inv *domain.Invoice) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	Delete(ctx context.Context, id int64) error
	ListByInvoice(ctx context.Context, invoiceID int64) ([]domain.Payment, error)
}

// RateSource yields the current CDF per USD rate.
type RateSource interface {
	Current(ctx context.Context) (float64, error)
}
