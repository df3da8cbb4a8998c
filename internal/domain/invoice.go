package domain

import "time"

type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoiceIssued        InvoiceStatus = "ISSUED"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceCancelled     InvoiceStatus = "CANCELLED"
)

// IsOpen reports whether the invoice can still receive payments or discounts.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceDraft || s == InvoiceIssued || s == InvoicePartiallyPaid
}

type InvoiceKind string

const (
	InvoiceKindStay      InvoiceKind = "STAY"
	InvoiceKindExtension InvoiceKind = "EXTENSION"
)

type InvoiceItem struct {
	ID          int64   `json:"id"`
	InvoiceID   int64   `json:"invoice_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// Invoice amounts are USD. NetTotal is Total minus DiscountAmount and never
// negative; AmountPaid is a denormalised running sum of payments.
type Invoice struct {
	ID              int64         `json:"id"`
	Number          string        `json:"number"`
	BookingID       int64         `json:"booking_id"`
	TenantID        int64         `json:"tenant_id"`
	Kind            InvoiceKind   `json:"kind"`
	PeriodStart     time.Time     `json:"period_start"`
	PeriodEnd       time.Time     `json:"period_end"`
	Items           []InvoiceItem `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	DiscountAmount  float64       `json:"discount_amount"`
	DiscountPercent float64       `json:"discount_percent"`
	TaxRate         float64       `json:"tax_rate"`
	TaxAmount       float64       `json:"tax_amount"`
	Total           float64       `json:"total"`
	NetTotal        float64       `json:"net_total"`
	AmountPaid      float64       `json:"amount_paid"`
	Status          InvoiceStatus `json:"status"`
	IssuedAt        *time.Time    `json:"issued_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
