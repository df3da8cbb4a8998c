package billing

import (
	"errors"

	"propertydesk/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRate    = errors.New("exchange rate must be greater than zero")
	ErrNegativeAmount = errors.New("payment amounts must not be negative")
	ErrEmptyPayment   = errors.New("payment must include a USD or CDF amount")
)

type SettlementKind string

const (
	SettlementComplete SettlementKind = "complete"
	SettlementSurplus  SettlementKind = "surplus"
	SettlementPartial  SettlementKind = "partial"
)

// Settlement classifies a mixed-currency payment against a USD balance.
// Rate is CDF per 1 USD.
type Settlement struct {
	Kind          SettlementKind `json:"kind"`
	BalanceDueUSD float64        `json:"balance_due_usd"`
	UsdAmount     float64        `json:"usd_amount"`
	CdfAmount     float64        `json:"cdf_amount"`
	PaidUSD       float64        `json:"paid_usd_equivalent"`
	Rate          float64        `json:"rate"`
	ChangeUSD     float64        `json:"change_usd"`
	ChangeCDF     float64        `json:"change_cdf"`
	RemainingUSD  float64        `json:"remaining_usd"`
	RemainingCDF  float64        `json:"remaining_cdf"`
}

func usdEquivalent(usd, cdf float64, rate decimal.Decimal) decimal.Decimal {
	return dec(usd).Add(dec(cdf).Div(rate))
}

// UsdEquivalent converts a mixed payment to USD at rate.
func UsdEquivalent(usd, cdf, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, ErrInvalidRate
	}
	return money(usdEquivalent(usd, cdf, dec(rate))), nil
}

// ClassifyPayment compares a payment of usd + cdf at rate with balanceDue.
func ClassifyPayment(balanceDue, usd, cdf, rate float64) (Settlement, error) {
	if rate <= 0 {
		return Settlement{}, ErrInvalidRate
	}
	if usd < 0 || cdf < 0 {
		return Settlement{}, ErrNegativeAmount
	}

	r := dec(rate)
	balance := dec(balanceDue)
	paid := usdEquivalent(usd, cdf, r)

	s := Settlement{
		BalanceDueUSD: money(balance),
		UsdAmount:     usd,
		CdfAmount:     cdf,
		PaidUSD:       money(paid),
		Rate:          rate,
	}

	diff := balance.Sub(paid)
	switch {
	case diff.Abs().LessThan(tolerance):
		s.Kind = SettlementComplete
	case paid.GreaterThan(balance):
		change := paid.Sub(balance)
		s.Kind = SettlementSurplus
		s.ChangeUSD = money(change)
		s.ChangeCDF = money(change.Mul(r))
	default:
		s.Kind = SettlementPartial
		s.RemainingUSD = money(diff)
		s.RemainingCDF = money(diff.Mul(r))
	}
	return s, nil
}

// BalanceProjection is the live balance of an invoice at a given rate.
type BalanceProjection struct {
	InvoiceID    int64   `json:"invoice_id"`
	NetTotal     float64 `json:"net_total"`
	PaidUSD      float64 `json:"paid_usd_equivalent"`
	BalanceDue   float64 `json:"balance_due"`
	BalanceCDF   float64 `json:"balance_due_cdf"`
	Overpaid     float64 `json:"overpaid"`
	FullyPaid    bool    `json:"fully_paid"`
	Rate         float64 `json:"rate"`
	PaymentCount int     `json:"payment_count"`
}

// ProjectBalance computes what is still owed on an invoice. Every payment is
// converted at the given (current) rate.
func ProjectBalance(inv *domain.Invoice, payments []domain.Payment, rate float64) (BalanceProjection, error) {
	if rate <= 0 {
		return BalanceProjection{}, ErrInvalidRate
	}
	r := dec(rate)
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(usdEquivalent(p.UsdAmount, p.CdfAmount, r))
	}

	net := dec(inv.NetTotal)
	due := net.Sub(paid)
	proj := BalanceProjection{
		InvoiceID:    inv.ID,
		NetTotal:     inv.NetTotal,
		PaidUSD:      money(paid),
		Rate:         rate,
		PaymentCount: len(payments),
	}
	if due.LessThan(tolerance) {
		proj.FullyPaid = true
		if due.IsNegative() {
			proj.Overpaid = money(due.Neg())
		}
		due = decimal.Zero
	}
	proj.BalanceDue = money(due)
	proj.BalanceCDF = money(due.Mul(r))
	return proj, nil
}

// RefreshPaid recomputes the invoice's AmountPaid and Status from its
// payments converted at rate.
func RefreshPaid(inv *domain.Invoice, payments []domain.Payment, rate float64) error {
	proj, err := ProjectBalance(inv, payments, rate)
	if err != nil {
		return err
	}
	inv.AmountPaid = proj.PaidUSD
	inv.Status = StatusForPaid(inv, proj.PaidUSD)
	return nil
}
