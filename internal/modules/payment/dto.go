package payment

import (
	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
)

type RecordPaymentRequest struct {
	InvoiceID int64                `json:"invoice_id" binding:"required"`
	UsdAmount float64              `json:"usd_amount"`
	CdfAmount float64              `json:"cdf_amount"`
	Method    domain.PaymentMethod `json:"method" binding:"required"`
	Note      string               `json:"note"`
}

type PreviewRequest struct {
	InvoiceID int64   `json:"invoice_id" binding:"required"`
	UsdAmount float64 `json:"usd_amount"`
	CdfAmount float64 `json:"cdf_amount"`
}

// RecordResult is returned after a payment is stored. Settlement classifies
// the payment against the balance that was due before it; Balance is what
// remains afterwards.
type RecordResult struct {
	Payment    *domain.Payment           `json:"payment"`
	Invoice    *domain.Invoice           `json:"invoice"`
	Settlement billing.Settlement        `json:"settlement"`
	Balance    billing.BalanceProjection `json:"balance"`
}
