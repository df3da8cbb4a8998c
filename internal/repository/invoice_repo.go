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

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

type invoiceModel struct {
	ID              int64              `gorm:"column:id;primaryKey"`
	Number          string             `gorm:"column:number;type:varchar(40);uniqueIndex;not null"`
	BookingID       int64              `gorm:"column:booking_id;not null;index"`
	TenantID        int64              `gorm:"column:tenant_id;index"`
	Kind            string             `gorm:"column:kind;type:varchar(20);not null"`
	PeriodStart     time.Time          `gorm:"column:period_start"`
	PeriodEnd       time.Time          `gorm:"column:period_end"`
	Subtotal        float64            `gorm:"column:subtotal"`
	DiscountAmount  float64            `gorm:"column:discount_amount"`
	DiscountPercent float64            `gorm:"column:discount_percent"`
	TaxRate         float64            `gorm:"column:tax_rate"`
	TaxAmount       float64            `gorm:"column:tax_amount"`
	Total           float64            `gorm:"column:total"`
	NetTotal        float64            `gorm:"column:net_total"`
	AmountPaid      float64            `gorm:"column:amount_paid"`
	Status          string             `gorm:"column:status;type:varchar(20);not null;index"`
	IssuedAt        *time.Time         `gorm:"column:issued_at"`
	CreatedAt       time.Time          `gorm:"column:created_at"`
	UpdatedAt       time.Time          `gorm:"column:updated_at"`
	Items           []invoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (invoiceModel) TableName() string { return "invoices" }

type invoiceItemModel struct {
	ID          int64   `gorm:"column:id;primaryKey"`
	InvoiceID   int64   `gorm:"column:invoice_id;not null;index"`
	Description string  `gorm:"column:description;not null"`
	Quantity    float64 `gorm:"column:quantity"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	LineTotal   float64 `gorm:"column:line_total"`
}

func (invoiceItemModel) TableName() string { return "invoice_items" }

func toDomainInvoice(m invoiceModel) *domain.Invoice {
	items := make([]domain.InvoiceItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.InvoiceItem{
			ID:          it.ID,
			InvoiceID:   it.InvoiceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return &domain.Invoice{
		ID:              m.ID,
		Number:          m.Number,
		BookingID:       m.BookingID,
		TenantID:        m.TenantID,
		Kind:            domain.InvoiceKind(m.Kind),
		PeriodStart:     m.PeriodStart,
		PeriodEnd:       m.PeriodEnd,
		Items:           items,
		Subtotal:        m.Subtotal,
		DiscountAmount:  m.DiscountAmount,
		DiscountPercent: m.DiscountPercent,
		TaxRate:         m.TaxRate,
		TaxAmount:       m.TaxAmount,
		Total:           m.Total,
		NetTotal:        m.NetTotal,
		AmountPaid:      m.AmountPaid,
		Status:          domain.InvoiceStatus(m.Status),
		IssuedAt:        m.IssuedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toInvoiceModel(inv *domain.Invoice) invoiceModel {
	items := make([]invoiceItemModel, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, invoiceItemModel{
			ID:          it.ID,
			InvoiceID:   inv.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return invoiceModel{
		ID:              inv.ID,
		Number:          inv.Number,
		BookingID:       inv.BookingID,
		TenantID:        inv.TenantID,
		Kind:            string(inv.Kind),
		PeriodStart:     inv.PeriodStart.UTC(),
		PeriodEnd:       inv.PeriodEnd.UTC(),
		Subtotal:        inv.Subtotal,
		DiscountAmount:  inv.DiscountAmount,
		DiscountPercent: inv.DiscountPercent,
		TaxRate:         inv.TaxRate,
		TaxAmount:       inv.TaxAmount,
		Total:           inv.Total,
		NetTotal:        inv.NetTotal,
		AmountPaid:      inv.AmountPaid,
		Status:          string(inv.Status),
		IssuedAt:        inv.IssuedAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		Items:           items,
	}
}

// NewInvoiceNumber returns a human-readable, unique invoice number.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("200601"), suffix)
}

// Create inserts the invoice and its items. A number is assigned when empty
// and issued invoices get IssuedAt.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now()
	if inv.Number == "" {
		inv.Number = NewInvoiceNumber(now)
	}
	if inv.IssuedAt == nil && inv.Status != domain.InvoiceDraft {
		inv.IssuedAt = &now
	}
	m := toInvoiceModel(inv)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*inv = *toDomainInvoice(m)
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	var m invoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return toDomainInvoice(m), nil
}

func (r *InvoiceRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	var rows []invoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("booking_id = ?", bookingID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainInvoice(m))
	}
	return out, nil
}

// UpdateTotals persists the header amounts and status. Items are immutable
// once issued.
func (r *InvoiceRepository) UpdateTotals(ctx context.Context, inv *domain.Invoice) error {
	tx := r.db.WithContext(ctx).Model(&invoiceModel{}).
		Where("id = ?", inv.ID).
		Updates(map[string]any{
			"subtotal":         inv.Subtotal,
			"discount_amount":  inv.DiscountAmount,
			"discount_percent": inv.DiscountPercent,
			"tax_rate":         inv.TaxRate,
			"tax_amount":       inv.TaxAmount,
			"total":            inv.Total,
			"net_total":        inv.NetTotal,
			"amount_paid":      inv.AmountPaid,
			"status":           string(inv.Status),
			"updated_at":       time.Now(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an invoice with its items. Only used to compensate a failed
// multi-step operation.
func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&invoiceItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoiceModel{}, id).Error
	})
}
