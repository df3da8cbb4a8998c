package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/pkg/saga"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	invoices InvoiceRepository
	payments PaymentRepository
	rates    RateSource
	events   events.Publisher
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(invoices InvoiceRepository, payments PaymentRepository, rates RateSource, publisher events.Publisher, log logrus.FieldLogger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		invoices: invoices,
		payments: payments,
		rates:    rates,
		events:   publisher,
		log:      logger.OrDiscard(log),
		now:      time.Now,
	}
}

// Record stores a mixed-currency payment against an invoice at the current
// rate and refreshes the invoice's paid amount and status. A surplus is
// recorded as handed over; the change to give back is in the settlement.
func (s *Service) Record(ctx context.Context, req RecordPaymentRequest, receivedBy int64) (*RecordResult, error) {
	method := domain.PaymentMethod(strings.ToUpper(string(req.Method)))
	if !domain.ValidPaymentMethod(method) {
		return nil, ErrValidation
	}
	if err := checkAmounts(req.UsdAmount, req.CdfAmount); err != nil {
		return nil, err
	}

	inv, payments, rate, err := s.load(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	// a PAID invoice can owe again after the rate moves; the live balance decides
	if inv.Status == domain.InvoiceCancelled {
		return nil, ErrInvoiceClosed
	}
	before, err := billing.ProjectBalance(inv, payments, rate)
	if err != nil {
		return nil, err
	}
	if before.FullyPaid {
		return nil, ErrNothingDue
	}
	settlement, err := billing.ClassifyPayment(before.BalanceDue, req.UsdAmount, req.CdfAmount, rate)
	if err != nil {
		return nil, err
	}

	p := &domain.Payment{
		InvoiceID:     inv.ID,
		BookingID:     inv.BookingID,
		UsdAmount:     req.UsdAmount,
		CdfAmount:     req.CdfAmount,
		ExchangeRate:  rate,
		UsdEquivalent: settlement.PaidUSD,
		Method:        method,
		Note:          strings.TrimSpace(req.Note),
		ReceivedBy:    receivedBy,
		PaidAt:        s.now(),
	}
	prev := *inv

	run := saga.New("record_payment", s.log).
		Add(saga.Step{
			Name: "insert_payment",
			Do:   func(ctx context.Context) error { return s.payments.Create(ctx, p) },
			Undo: func(ctx context.Context) error { return s.payments.Delete(ctx, p.ID) },
		}).
		Add(saga.Step{
			Name: "refresh_invoice",
			Do: func(ctx context.Context) error {
				if err := billing.RefreshPaid(inv, append(payments, *p), rate); err != nil {
					return err
				}
				return s.invoices.UpdateTotals(ctx, inv)
			},
			Undo: func(ctx context.Context) error { return s.invoices.UpdateTotals(ctx, &prev) },
		})
	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	after, err := billing.ProjectBalance(inv, append(payments, *p), rate)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"invoice_id": inv.ID,
		"payment_id": p.ID,
		"usd":        p.UsdAmount,
		"cdf":        p.CdfAmount,
		"rate":       rate,
		"settlement": settlement.Kind,
	}).Info("payment recorded")
	if err := s.events.Publish(ctx, events.PaymentRecorded, map[string]any{
		"payment":        p,
		"invoice_id":     inv.ID,
		"invoice_status": inv.Status,
		"settlement":     settlement.Kind,
	}); err != nil {
		s.log.WithError(err).Warn("publish payment event")
	}

	return &RecordResult{Payment: p, Invoice: inv, Settlement: settlement, Balance: after}, nil
}

// Preview classifies a prospective payment without storing anything.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*billing.Settlement, error) {
	if err := checkAmounts(req.UsdAmount, req.CdfAmount); err != nil {
		return nil, err
	}
	inv, payments, rate, err := s.load(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	before, err := billing.ProjectBalance(inv, payments, rate)
	if err != nil {
		return nil, err
	}
	settlement, err := billing.ClassifyPayment(before.BalanceDue, req.UsdAmount, req.CdfAmount, rate)
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

// Balance is the live balance of an invoice at the current rate.
func (s *Service) Balance(ctx context.Context, invoiceID int64) (*billing.BalanceProjection, error) {
	inv, payments, rate, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	proj, err := billing.ProjectBalance(inv, payments, rate)
	if err != nil {
		return nil, err
	}
	return &proj, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID int64) ([]domain.Payment, error) {
	if _, err := s.invoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	list, err := s.payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Payment{}
	}
	return list, nil
}

func (s *Service) load(ctx context.Context, invoiceID int64) (*domain.Invoice, []domain.Payment, float64, error) {
	inv, err := s.invoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, 0, err
	}
	payments, err := s.payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("list payments: %w", err)
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
		return nil, ErrInvoiceNotFound
	}
	return inv, err
}

func checkAmounts(usd, cdf float64) error {
	if usd < 0 || cdf < 0 {
		return billing.ErrNegativeAmount
	}
	if usd == 0 && cdf == 0 {
		return billing.ErrEmptyPayment
	}
	return nil
}
