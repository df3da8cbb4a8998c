package billing

import (
	"errors"
	"fmt"
	"time"

	"propertydesk/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrExtensionNotAfterEnd  = errors.New("new end date must be after the current planned end")
	ErrNegativeNightDiscount = errors.New("discount per night must not be negative")
	ErrExtensionNotAllowed   = errors.New("booking cannot be extended in its current status")
)

// DaysBetween counts UTC calendar days from one date to another, ignoring the
// time of day.
func DaysBetween(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// ExtensionQuote is the price breakdown for extending a stay.
type ExtensionQuote struct {
	AdditionalNights int     `json:"additional_nights"`
	NightlyPrice     float64 `json:"nightly_price"`
	GrossExtra       float64 `json:"gross_extra"`
	DiscountExtra    float64 `json:"discount_extra"`
	NetExtra         float64 `json:"net_extra"`
	CurrentTotal     float64 `json:"current_total"`
	NewTotal         float64 `json:"new_total"`
}

// Extension is the outcome of ExtendStay. Invoice is nil when the extension
// adds nothing billable.
type Extension struct {
	Quote    ExtensionQuote
	Booking  *domain.Booking
	Invoice  *domain.Invoice
	Previous *domain.Booking
}

// QuoteExtension prices an extension without touching the booking.
func QuoteExtension(b *domain.Booking, room *domain.Room, newEnd time.Time, discountPerNight float64) (ExtensionQuote, error) {
	if discountPerNight < 0 {
		return ExtensionQuote{}, ErrNegativeNightDiscount
	}
	if !newEnd.After(b.PlannedEnd) {
		return ExtensionQuote{}, ErrExtensionNotAfterEnd
	}

	nights := DaysBetween(b.PlannedEnd, newEnd)
	n := decimal.NewFromInt(int64(nights))
	gross := n.Mul(dec(room.NightlyPrice))
	discount := n.Mul(dec(discountPerNight))
	net := gross.Sub(discount)

	newTotal := dec(b.TotalPrice).Add(net)
	if newTotal.IsNegative() {
		newTotal = decimal.Zero
	}

	return ExtensionQuote{
		AdditionalNights: nights,
		NightlyPrice:     room.NightlyPrice,
		GrossExtra:       money(gross),
		DiscountExtra:    money(discount),
		NetExtra:         money(net),
		CurrentTotal:     b.TotalPrice,
		NewTotal:         money(newTotal),
	}, nil
}

// SuggestedExtensionTotal is the zero-discount price proposed to the operator
// before an extension is confirmed.
func SuggestedExtensionTotal(b *domain.Booking, room *domain.Room, newEnd time.Time) (float64, error) {
	q, err := QuoteExtension(b, room, newEnd, 0)
	if err != nil {
		return 0, err
	}
	return q.NewTotal, nil
}

// DiscountForAgreedTotal turns an operator-agreed new booking total into the
// per-night discount that produces it. An agreed total above the suggested
// one would be a negative discount and is rejected.
func DiscountForAgreedTotal(b *domain.Booking, room *domain.Room, newEnd time.Time, agreedTotal float64) (float64, error) {
	q, err := QuoteExtension(b, room, newEnd, 0)
	if err != nil {
		return 0, err
	}
	if q.AdditionalNights == 0 {
		return 0, nil
	}
	diff := dec(q.NewTotal).Sub(dec(agreedTotal))
	if diff.IsNegative() {
		return 0, ErrNegativeNightDiscount
	}
	return diff.Div(decimal.NewFromInt(int64(q.AdditionalNights))).InexactFloat64(), nil
}

// ExtendStay computes the extended booking and, when the extension is
// billable, the invoice covering exactly the extension period. The input
// booking is not modified. The booking total is the previous total plus the
// net extra so manual adjustments made earlier are preserved.
func ExtendStay(b *domain.Booking, room *domain.Room, newEnd time.Time, discountPerNight float64) (*Extension, error) {
	if !domain.ExtensionAllowed(b.Status) {
		return nil, ErrExtensionNotAllowed
	}
	q, err := QuoteExtension(b, room, newEnd, discountPerNight)
	if err != nil {
		return nil, err
	}

	updated := b.Clone()
	updated.PlannedEnd = newEnd
	updated.TotalPrice = q.NewTotal
	updated.Status = domain.BookingConfirmed

	ext := &Extension{Quote: q, Booking: updated, Previous: b.Clone()}
	if q.NetExtra <= 0 {
		return ext, nil
	}

	inv := &domain.Invoice{
		BookingID:   b.ID,
		TenantID:    b.TenantID,
		Kind:        domain.InvoiceKindExtension,
		PeriodStart: b.PlannedEnd,
		PeriodEnd:   newEnd,
		Items: []domain.InvoiceItem{{
			Description: fmt.Sprintf("Stay extension, room %s (%s to %s)", room.Number, b.PlannedEnd.Format("2006-01-02"), newEnd.Format("2006-01-02")),
			Quantity:    float64(q.AdditionalNights),
			UnitPrice:   room.NightlyPrice,
		}},
		DiscountAmount: q.DiscountExtra,
		Status:         domain.InvoiceIssued,
	}
	if err := ComputeTotals(inv); err != nil {
		return nil, err
	}
	ext.Invoice = inv
	return ext, nil
}

// NewStayInvoice builds the invoice issued when a booking is created.
func NewStayInvoice(b *domain.Booking, room *domain.Room) (*domain.Invoice, error) {
	nights := DaysBetween(b.PlannedStart, b.PlannedEnd)
	if nights < 1 {
		nights = 1
	}
	inv := &domain.Invoice{
		BookingID:   b.ID,
		TenantID:    b.TenantID,
		Kind:        domain.InvoiceKindStay,
		PeriodStart: b.PlannedStart,
		PeriodEnd:   b.PlannedEnd,
		Items: []domain.InvoiceItem{{
			Description: fmt.Sprintf("Stay, room %s (%s to %s)", room.Number, b.PlannedStart.Format("2006-01-02"), b.PlannedEnd.Format("2006-01-02")),
			Quantity:    float64(nights),
			UnitPrice:   money(dec(b.TotalPrice).Div(decimal.NewFromInt(int64(nights)))),
		}},
		Status: domain.InvoiceIssued,
	}
	if err := ComputeTotals(inv); err != nil {
		return nil, err
	}
	// unit price rounding must not drift the billed amount away from the booking total
	if inv.Total != Round2(b.TotalPrice) {
		inv.Items[0].Quantity = 1
		inv.Items[0].UnitPrice = Round2(b.TotalPrice)
		if err := ComputeTotals(inv); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

// StayPrice is nights × nightly price for a planned stay.
func StayPrice(room *domain.Room, start, end time.Time) float64 {
	nights := DaysBetween(start, end)
	if nights < 1 {
		nights = 1
	}
	return money(decimal.NewFromInt(int64(nights)).Mul(dec(room.NightlyPrice)))
}
