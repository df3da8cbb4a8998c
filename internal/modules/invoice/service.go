package invoice

import (
	"context"
	"errors"
	"fmt"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
	"propertydesk/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	invoices InvoiceRepository
	payments PaymentRepository
	rates    RateSource
	log      logrus.FieldLogger
}

func NewService(invoices InvoiceRepository, payments PaymentRepository, rates RateSource, log logrus.FieldLogger) *Service {
	return &Service{invoices: invoices, payments: payments, rates: rates, log: logger.OrDiscard(log)}
}

// Get returns the invoice with its live balance at the current rate.
func (s *Service) Get(ctx context.Context, id int64) (*InvoiceDetails, error) {
	inv, payments, rate, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	proj, err := billing.ProjectBalance(inv, payments, rate)
	if err != nil {
		return nil, err
	}
	return &InvoiceDetails{Invoice: inv, Balance: proj}, nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	list, err := s.invoices.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Invoice{}
	}
	return list, nil
}

func (s *Service) ApplyDiscount(ctx context.Context, id int64, req DiscountRequest) (*InvoiceDetails, error) {
	return s.mutate(ctx, id, func(inv *domain.Invoice) error {
		return billing.ApplyDiscount(inv, req.Amount, req.Percent)
	})
}

func (s *Service) RemoveDiscount(ctx context.Context, id int64) (*InvoiceDetails, error) {
	return s.mutate(ctx, id, billing.RemoveDiscount)
}

// Cancel voids an invoice nobody has paid anything on.
func (s *Service) Cancel(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := s.invoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceCancelled {
		return inv, nil
	}
	if !inv.Status.IsOpen() {
		return nil, billing.ErrInvoiceClosed
	}
	payments, err := s.payments.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(payments) > 0 {
		return nil, ErrHasPayments
	}

	inv.Status = domain.InvoiceCancelled
	if err := s.invoices.UpdateTotals(ctx, inv); err != nil {
		return nil, fmt.Errorf("cancel invoice: %w", err)
	}
	s.log.WithField("invoice_id", id).Info("invoice cancelled")
	return inv, nil
}

// mutate applies change, then re-derives the paid amount and status from the
// payments at the current rate before saving.
func (s *Service) mutate(ctx context.Context, id int64, change func(*domain.Invoice) error) (*InvoiceDetails, error) {
	inv, payments, rate, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(inv); err != nil {
		return nil, err
	}
	if err := billing.RefreshPaid(inv, payments, rate); err != nil {
		return nil, err
	}
	if err := s.invoices.UpdateTotals(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice totals: %w", err)
	}
	proj, err := billing.ProjectBalance(inv, payments, rate)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"invoice_id": id,
		"discount":   inv.DiscountAmount,
		"net_total":  inv.NetTotal,
		"status":     inv.Status,
	}).Info("invoice discount updated")
	return &InvoiceDetails{Invoice: inv, Balance: proj}, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Invoice, []domain.Payment, float64, error) {
	inv, err := s.invoice(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	payments, err := s.payments.ListByInvoice(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	rate, err := s.rates.Current(ctx)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("load exchange rate: %w", err)
	}
	return inv, payments, rate, nil
}

func (s *Service) invoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return inv, err
}
