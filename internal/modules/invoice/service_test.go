package invoice

import (
	"context"
	"testing"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"

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

func (m *MockInvoiceRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateTotals(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
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

func stayInvoice(status domain.InvoiceStatus) *domain.Invoice {
	return &domain.Invoice{
		ID:       9,
		Items:    []domain.InvoiceItem{{Description: "Stay", Quantity: 2, UnitPrice: 50}},
		Subtotal: 100,
		Total:    100,
		NetTotal: 100,
		Status:   status,
	}
}

func TestApplyDiscount_CompletesPartiallyPaidInvoice(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	payments := new(MockPaymentRepository)
	svc := NewService(invoices, payments, fixedRate(2800), nil)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(9)).Return(stayInvoice(domain.InvoicePartiallyPaid), nil)
	payments.On("ListByInvoice", ctx, int64(9)).Return([]domain.Payment{{UsdAmount: 60}, {CdfAmount: 56000}}, nil)
	invoices.On("UpdateTotals", ctx, mock.Anything).Return(nil)

	got, err := svc.ApplyDiscount(ctx, 9, DiscountRequest{Percent: 20})
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.DiscountAmount)
	assert.Equal(t, 80.0, got.NetTotal)
	assert.Equal(t, 80.0, got.AmountPaid)
	assert.Equal(t, domain.InvoicePaid, got.Status)
	assert.True(t, got.Balance.FullyPaid)
}

func TestRemoveDiscount_RestoresNetTotal(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	payments := new(MockPaymentRepository)
	svc := NewService(invoices, payments, fixedRate(2800), nil)
	ctx := context.Background()

	inv := stayInvoice(domain.InvoiceIssued)
	inv.DiscountAmount = 15
	inv.NetTotal = 85
	invoices.On("GetByID", ctx, int64(9)).Return(inv, nil)
	payments.On("ListByInvoice", ctx, int64(9)).Return([]domain.Payment{}, nil)
	invoices.On("UpdateTotals", ctx, mock.Anything).Return(nil)

	got, err := svc.RemoveDiscount(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.DiscountAmount)
	assert.Equal(t, got.Total, got.NetTotal)
	assert.Equal(t, 100.0, got.Balance.BalanceDue)
}

func TestApplyDiscount_RejectsInvalidAndClosed(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	payments := new(MockPaymentRepository)
	svc := NewService(invoices, payments, fixedRate(2800), nil)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(9)).Return(stayInvoice(domain.InvoiceIssued), nil)
	invoices.On("GetByID", ctx, int64(10)).Return(stayInvoice(domain.InvoicePaid), nil)
	payments.On("ListByInvoice", ctx, mock.Anything).Return([]domain.Payment{}, nil)

	_, err := svc.ApplyDiscount(ctx, 9, DiscountRequest{Percent: 120})
	assert.ErrorIs(t, err, billing.ErrInvalidDiscount)

	_, err = svc.ApplyDiscount(ctx, 10, DiscountRequest{Amount: 5})
	assert.ErrorIs(t, err, billing.ErrInvoiceClosed)

	invoices.AssertNotCalled(t, "UpdateTotals", mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	payments := new(MockPaymentRepository)
	svc := NewService(invoices, payments, fixedRate(2800), nil)
	ctx := context.Background()

	invoices.On("GetByID", ctx, int64(1)).Return(stayInvoice(domain.InvoiceIssued), nil)
	invoices.On("GetByID", ctx, int64(2)).Return(stayInvoice(domain.InvoicePartiallyPaid), nil)
	invoices.On("GetByID", ctx, int64(3)).Return(nil, gorm.ErrRecordNotFound)
	payments.On("ListByInvoice", ctx, int64(1)).Return(nil, nil)
	payments.On("ListByInvoice", ctx, int64(2)).Return([]domain.Payment{{UsdAmount: 10}}, nil)
	invoices.On("UpdateTotals", ctx, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Status == domain.InvoiceCancelled
	})).Return(nil)

	inv, err := svc.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceCancelled, inv.Status)

	_, err = svc.Cancel(ctx, 2)
	assert.ErrorIs(t, err, ErrHasPayments)

	_, err = svc.Cancel(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByBooking_NeverNil(t *testing.T) {
	invoices := new(MockInvoiceRepository)
	svc := NewService(invoices, new(MockPaymentRepository), fixedRate(2800), nil)
	invoices.On("ListByBooking", mock.Anything, int64(5)).Return(nil, nil)

	list, err := svc.ListByBooking(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
