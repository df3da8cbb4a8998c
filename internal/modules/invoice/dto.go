package invoice

import (
	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
)

// DiscountRequest sets either a fixed USD amount or a percentage; a
// percentage above zero wins.
type DiscountRequest struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

type InvoiceDetails struct {
	*domain.Invoice
	Balance billing.BalanceProjection `json:"balance"`
}
