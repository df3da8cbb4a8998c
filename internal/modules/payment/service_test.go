package payment

import (
	"context"
	"errors"
	"testing"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/saga"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateTotals(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 31
	}
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type fixedRate float64

func (r fixedRate) Current(context.Context) (float64, error) { return float64(r), nil }

func newTestService(rate float64) (*Service, *MockInvoiceRepository, *MockPaymentRepository, *events.Recorder) {
	invoices := new(MockInvoiceRepository)
	payments := new(MockPaymentRepository)
	rec := &events.Recorder{}
	return NewService(invoices, payments, fixedRate(rate), rec, nil), invoices, payments, rec
}

func withInvoiceStatus(s domain.InvoiceStatus) any {
	return mock.MatchedBy(func(inv *domain.Invoice) bool { return inv.Status == s })
}

func TestRecord_MixedCurrencyCompletesInvoice(t *testing.T) {
	svc, invoices, payments, rec := newTestService(2800)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(4)).Return(&domain.Invoice{ID: 4, BookingID: 7, NetTotal: 100, Status: domain.InvoiceIssued}, nil)
	payments.On("ListByInvoice", ctx, int64(4)).Return([]domain.Payment{}, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil)
	invoices.On("UpdateTotals", ctx, withInvoiceStatus(domain.InvoicePaid)).Return(nil)

	res, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: 40, CdfAmount: 168000, Method: "cash"}, 2)
	require.NoError(t, err)

	assert.Equal(t, billing.SettlementComplete, res.Settlement.Kind)
	assert.Equal(t, int64(31), res.Payment.ID)
	assert.Equal(t, domain.PaymentCash, res.Payment.Method)
	assert.Equal(t, 2800.0, res.Payment.ExchangeRate)
	assert.Equal(t, 100.0, res.Payment.UsdEquivalent)
	assert.Equal(t, int64(7), res.Payment.BookingID)
	assert.Equal(t, int64(2), res.Payment.ReceivedBy)
	assert.Equal(t, domain.InvoicePaid, res.Invoice.Status)
	assert.Equal(t, 100.0, res.Invoice.AmountPaid)
	assert.True(t, res.Balance.FullyPaid)
	assert.Equal(t, []string{events.PaymentRecorded}, rec.Topics())
}

func TestRecord_PartialPaymentAtCurrentRate(t *testing.T) {
	svc, invoices, payments, _ := newTestService(2800)
	ctx := context.Background()

	// the earlier payment was recorded at 2500 but counts at today's rate
	earlier := []domain.Payment{{UsdAmount: 0, CdfAmount: 140000, ExchangeRate: 2500}}
	invoices.On("GetByID", ctx, int64(4)).Return(&domain.Invoice{ID: 4, NetTotal: 135, AmountPaid: 56, Status: domain.InvoicePartiallyPaid}, nil)
	payments.On("ListByInvoice", ctx, int64(4)).Return(earlier, nil)
	payments.On("Create", ctx, mock.Anything).Return(nil)
	invoices.On("UpdateTotals", ctx, withInvoiceStatus(domain.InvoicePartiallyPaid)).Return(nil)

	res, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: 35, Method: domain.PaymentMobileMoney}, 1)
	require.NoError(t, err)

	assert.Equal(t, 85.0, res.Settlement.BalanceDueUSD)
	assert.Equal(t, billing.SettlementPartial, res.Settlement.Kind)
	assert.Equal(t, 50.0, res.Settlement.RemainingUSD)
	assert.Equal(t, 140000.0, res.Settlement.RemainingCDF)
	assert.Equal(t, 85.0, res.Invoice.AmountPaid)
	assert.Equal(t, 50.0, res.Balance.BalanceDue)
}

func TestRecord_SurplusReportsChange(t *testing.T) {
	svc, invoices, payments, _ := newTestService(2800)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(4)).Return(&domain.Invoice{ID: 4, NetTotal: 100, Status: domain.InvoiceIssued}, nil)
	payments.On("ListByInvoice", ctx, int64(4)).Return(nil, nil)
	payments.On("Create", ctx, mock.Anything).Return(nil)
	invoices.On("UpdateTotals", ctx, mock.Anything).Return(nil)

	res, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: 120, Method: domain.PaymentCash}, 1)
	require.NoError(t, err)
	assert.Equal(t, billing.SettlementSurplus, res.Settlement.Kind)
	assert.Equal(t, 20.0, res.Settlement.ChangeUSD)
	assert.Equal(t, 56000.0, res.Settlement.ChangeCDF)
	assert.Equal(t, 120.0, res.Payment.UsdAmount)
	assert.Equal(t, 20.0, res.Balance.Overpaid)
}

func TestRecord_Validation(t *testing.T) {
	svc, invoices, payments, _ := newTestService(2800)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: 10, Method: "CHEQUE"}, 1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, Method: domain.PaymentCash}, 1)
	assert.ErrorIs(t, err, billing.ErrEmptyPayment)

	_, err = svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: -5, Method: domain.PaymentCash}, 1)
	assert.ErrorIs(t, err, billing.ErrNegativeAmount)

	invoices.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecord_ClosedOrSettledInvoice(t *testing.T) {
	svc, invoices, payments, _ := newTestService(2800)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(1)).Return(&domain.Invoice{ID: 1, NetTotal: 50, Status: domain.InvoiceCancelled}, nil)
	invoices.On("GetByID", ctx, int64(2)).Return(&domain.Invoice{ID: 2, NetTotal: 50, Status: domain.InvoicePartiallyPaid}, nil)
	invoices.On("GetByID", ctx, int64(3)).Return(nil, gorm.ErrRecordNotFound)
	payments.On("ListByInvoice", ctx, int64(1)).Return([]domain.Payment{}, nil)
	// rate moved since the partial payment: it now covers the whole invoice
	payments.On("ListByInvoice", ctx, int64(2)).Return([]domain.Payment{{CdfAmount: 140000, ExchangeRate: 3000}}, nil)

	_, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 1, UsdAmount: 5, Method: domain.PaymentCash}, 1)
	assert.ErrorIs(t, err, ErrInvoiceClosed)

	_, err = svc.Record(ctx, RecordPaymentRequest{InvoiceID: 2, UsdAmount: 5, Method: domain.PaymentCash}, 1)
	assert.ErrorIs(t, err, ErrNothingDue)

	_, err = svc.Record(ctx, RecordPaymentRequest{InvoiceID: 3, UsdAmount: 5, Method: domain.PaymentCash}, 1)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestRecord_SettledInvoiceReopenedByRateRise(t *testing.T) {
	svc, invoices, payments, _ := newTestService(3000)
	ctx := context.Background()

	// settled in francs at 2800, worth less at 3000
	settled := []domain.Payment{{ID: 9, InvoiceID: 4, CdfAmount: 280000, ExchangeRate: 2800, UsdEquivalent: 100}}
	invoices.On("GetByID", ctx, int64(4)).Return(&domain.Invoice{ID: 4, NetTotal: 100, AmountPaid: 100, Status: domain.InvoicePaid}, nil)
	payments.On("ListByInvoice", ctx, int64(4)).Return(settled, nil)
	payments.On("Create", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil)
	invoices.On("UpdateTotals", ctx, withInvoiceStatus(domain.InvoicePaid)).Return(nil)

	bal, err := svc.Balance(ctx, 4)
	require.NoError(t, err)
	assert.False(t, bal.FullyPaid)
	assert.Equal(t, 6.67, bal.BalanceDue)

	res, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: 6.67, Method: domain.PaymentCash}, 1)
	require.NoError(t, err)
	assert.Equal(t, 6.67, res.Settlement.BalanceDueUSD)
	assert.Equal(t, domain.InvoicePaid, res.Invoice.Status)
	assert.True(t, res.Balance.FullyPaid)
}

func TestRecord_SettledInvoiceStillFullyPaid(t *testing.T) {
	svc, invoices, payments, _ := newTestService(2800)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(4)).Return(&domain.Invoice{ID: 4, NetTotal: 100, AmountPaid: 100, Status: domain.InvoicePaid}, nil)
	payments.On("ListByInvoice", ctx, int64(4)).Return([]domain.Payment{{UsdAmount: 100, ExchangeRate: 2800}}, nil)

	_, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: 5, Method: domain.PaymentCash}, 1)
	assert.ErrorIs(t, err, ErrNothingDue)
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecord_InvoiceUpdateFailureRemovesPayment(t *testing.T) {
	svc, invoices, payments, rec := newTestService(2800)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(4)).Return(&domain.Invoice{ID: 4, NetTotal: 100, Status: domain.InvoiceIssued}, nil)
	payments.On("ListByInvoice", ctx, int64(4)).Return([]domain.Payment{}, nil)
	payments.On("Create", ctx, mock.Anything).Return(nil)
	invoices.On("UpdateTotals", ctx, mock.Anything).Return(errors.New("lock timeout"))
	payments.On("Delete", mock.Anything, int64(31)).Return(nil)

	_, err := svc.Record(ctx, RecordPaymentRequest{InvoiceID: 4, UsdAmount: 10, Method: domain.PaymentCash}, 1)
	se, ok := saga.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "refresh_invoice", se.FailedStep)
	assert.Equal(t, []string{"insert_payment"}, se.Compensated)
	payments.AssertCalled(t, "Delete", mock.Anything, int64(31))
	assert.Empty(t, rec.Events)
}

func TestPreviewAndBalance(t *testing.T) {
	svc, invoices, payments, _ := newTestService(2800)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(4)).Return(&domain.Invoice{ID: 4, NetTotal: 100, Status: domain.InvoiceIssued}, nil)
	payments.On("ListByInvoice", ctx, int64(4)).Return([]domain.Payment{{UsdAmount: 50}}, nil)

	s, err := svc.Preview(ctx, PreviewRequest{InvoiceID: 4, CdfAmount: 140000})
	require.NoError(t, err)
	assert.Equal(t, billing.SettlementComplete, s.Kind)

	proj, err := svc.Balance(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 50.0, proj.BalanceDue)
	assert.Equal(t, 140000.0, proj.BalanceCDF)
	assert.Equal(t, 2800.0, proj.Rate)
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
