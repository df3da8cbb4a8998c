package domain

import "time"

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCard         PaymentMethod = "CARD"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentMobileMoney, PaymentBankTransfer, PaymentCard:
		return true
	}
	return false
}

// Payment records money received against an invoice. UsdAmount and CdfAmount
// are the physical amounts handed over; ExchangeRate (CDF per 1 USD) is the
// rate in effect when the payment was recorded and is kept for audit.
type Payment struct {
	ID            int64         `json:"id"`
	Reference     string        `json:"reference"`
	InvoiceID     int64         `json:"invoice_id"`
	BookingID     int64         `json:"booking_id"`
	UsdAmount     float64       `json:"usd_amount"`
	CdfAmount     float64       `json:"cdf_amount"`
	ExchangeRate  float64       `json:"exchange_rate"`
	UsdEquivalent float64       `json:"usd_equivalent"`
	Method        PaymentMethod `json:"method"`
	Note          string        `json:"note,omitempty"`
	ReceivedBy    int64         `json:"received_by"`
	PaidAt        time.Time     `json:"paid_at"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ExchangeRate is one entry of the CDF/USD rate history. The latest entry is
// the current rate.
type ExchangeRate struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CdfPerUsd float64   `json:"cdf_per_usd" gorm:"not null"`
	SetBy     int64     `json:"set_by"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }
