package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propertydesk/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type paymentModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	Reference     string    `gorm:"column:reference;type:varchar(40);uniqueIndex;not null"`
	InvoiceID     int64     `gorm:"column:invoice_id;not null;index"`
	BookingID     int64     `gorm:"column:booking_id;index"`
	UsdAmount     float64   `gorm:"column:usd_amount;not null;default:0"`
	CdfAmount     float64   `gorm:"column:cdf_amount;not null;default:0"`
	ExchangeRate  float64   `gorm:"column:exchange_rate;not null"`
	UsdEquivalent float64   `gorm:"column:usd_equivalent;not null"`
	Method        string    `gorm:"column:method;type:varchar(20);not null"`
	Note          *string   `gorm:"column:note"`
	ReceivedBy    int64     `gorm:"column:received_by"`
	PaidAt        time.Time `gorm:"column:paid_at;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (paymentModel) TableName() string { return "payments" }

func toDomainPayment(m paymentModel) domain.Payment {
	return domain.Payment{
		ID:            m.ID,
		Reference:     m.Reference,
		InvoiceID:     m.InvoiceID,
		BookingID:     m.BookingID,
		UsdAmount:     m.UsdAmount,
		CdfAmount:     m.CdfAmount,
		ExchangeRate:  m.ExchangeRate,
		UsdEquivalent: m.UsdEquivalent,
		Method:        domain.PaymentMethod(m.Method),
		Note:          deref(m.Note),
		ReceivedBy:    m.ReceivedBy,
		PaidAt:        m.PaidAt,
		CreatedAt:     m.CreatedAt,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.Reference == "" {
		p.Reference = fmt.Sprintf("PAY-%s", strings.ToUpper(uuid.NewString()[:13]))
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	m := paymentModel{
		Reference:     p.Reference,
		InvoiceID:     p.InvoiceID,
		BookingID:     p.BookingID,
		UsdAmount:     p.UsdAmount,
		CdfAmount:     p.CdfAmount,
		ExchangeRate:  p.ExchangeRate,
		UsdEquivalent: p.UsdEquivalent,
		Method:        string(p.Method),
		Note:          ptr(p.Note),
		ReceivedBy:    p.ReceivedBy,
		PaidAt:        p.PaidAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*p = toDomainPayment(m)
	return nil
}

// Delete removes a payment. Only used to compensate a failed recording.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&paymentModel{}, id).Error
}

func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]domain.Payment, error) {
	var rows []paymentModel
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("paid_at, id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

// ListBetween returns payments with paid_at in [from, to).
func (r *PaymentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	var rows []paymentModel
	err := r.db.WithContext(ctx).
		Where("paid_at >= ? AND paid_at < ?", from.UTC(), to.UTC()).
		Order("paid_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

func toDomainPayments(rows []paymentModel) []domain.Payment {
	out := make([]domain.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainPayment(m))
	}
	return out
}
