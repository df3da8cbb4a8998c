package billing

import (
	"errors"

	"propertydesk/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDiscount = errors.New("discount must be a non-negative amount or a percentage between 0 and 100")
	ErrInvalidTaxRate  = errors.New("tax rate must be between 0 and 100")
	ErrInvoiceClosed   = errors.New("invoice is not open")
)

// ComputeTotals recomputes every derived amount of the invoice from its line
// items, tax rate and discount.
//
//	subtotal = Σ quantity × unit price
//	total    = subtotal + subtotal × tax rate
//	discount = total × percent (when percent > 0) or the fixed amount, capped at total
//	net      = total − discount
func ComputeTotals(inv *domain.Invoice) error {
	if inv.TaxRate < 0 || inv.TaxRate > 100 {
		return ErrInvalidTaxRate
	}
	if inv.DiscountAmount < 0 || inv.DiscountPercent < 0 || inv.DiscountPercent > 100 {
		return ErrInvalidDiscount
	}

	subtotal := decimal.Zero
	for i := range inv.Items {
		it := &inv.Items[i]
		line := dec(it.Quantity).Mul(dec(it.UnitPrice))
		it.LineTotal = money(line)
		subtotal = subtotal.Add(line)
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(dec(inv.TaxRate)).Div(hundred).Round(2)
	total := subtotal.Add(tax)

	discount := dec(inv.DiscountAmount)
	if inv.DiscountPercent > 0 {
		discount = total.Mul(dec(inv.DiscountPercent)).Div(hundred)
	}
	discount = discount.Round(2)
	if discount.GreaterThan(total) {
		discount = total
	}

	inv.Subtotal = money(subtotal)
	inv.TaxAmount = money(tax)
	inv.Total = money(total)
	inv.DiscountAmount = money(discount)
	inv.NetTotal = money(total.Sub(discount))
	return nil
}

// ApplyDiscount sets the invoice discount and recomputes totals. A non-zero
// percentage takes precedence over the fixed amount.
func ApplyDiscount(inv *domain.Invoice, amount, percent float64) error {
	if !inv.Status.IsOpen() {
		return ErrInvoiceClosed
	}
	if amount < 0 || percent < 0 || percent > 100 {
		return ErrInvalidDiscount
	}
	prevAmount, prevPercent := inv.DiscountAmount, inv.DiscountPercent
	inv.DiscountAmount = amount
	inv.DiscountPercent = percent
	if percent > 0 {
		inv.DiscountAmount = 0
	}
	if err := ComputeTotals(inv); err != nil {
		inv.DiscountAmount, inv.DiscountPercent = prevAmount, prevPercent
		return err
	}
	return nil
}

// RemoveDiscount clears any discount; NetTotal goes back to Total.
func RemoveDiscount(inv *domain.Invoice) error {
	if !inv.Status.IsOpen() {
		return ErrInvoiceClosed
	}
	inv.DiscountAmount = 0
	inv.DiscountPercent = 0
	return ComputeTotals(inv)
}

// StatusForPaid derives the invoice status once paidUSD has been received.
func StatusForPaid(inv *domain.Invoice, paidUSD float64) domain.InvoiceStatus {
	if inv.Status == domain.InvoiceCancelled {
		return inv.Status
	}
	remaining := dec(inv.NetTotal).Sub(dec(paidUSD))
	switch {
	case remaining.LessThan(tolerance):
		return domain.InvoicePaid
	case paidUSD > 0:
		return domain.InvoicePartiallyPaid
	case inv.Status == domain.InvoiceDraft:
		return domain.InvoiceDraft
	default:
		return domain.InvoiceIssued
	}
}
