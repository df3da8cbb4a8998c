package billing

import "github.com/shopspring/decimal"

// SettlementTolerance is the USD amount under which a balance counts as settled.
const SettlementTolerance = 0.01

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.NewFromFloat(SettlementTolerance)
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Round2 rounds an amount to cents.
func Round2(v float64) float64 {
	return money(dec(v))
}
