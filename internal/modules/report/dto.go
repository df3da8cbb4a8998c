package report

import (
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/occupancy"
)

type MethodTotals struct {
	Count int     `json:"count"`
	USD   float64 `json:"usd"`
	CDF   float64 `json:"cdf"`
}

// CashReport sums payments received in [From, To). USD and CDF are the
// physical amounts collected. UsdEquivalent converts everything at the
// current rate; RecordedUsdEquivalent is the sum of the equivalents stored
// with each payment at its own rate and is kept for audit.
type CashReport struct {
	From                  time.Time                             `json:"from"`
	To                    time.Time                             `json:"to"`
	Count                 int                                   `json:"count"`
	USD                   float64                               `json:"usd"`
	CDF                   float64                               `json:"cdf"`
	Rate                  float64                               `json:"rate"`
	UsdEquivalent         float64                               `json:"usd_equivalent"`
	RecordedUsdEquivalent float64                               `json:"recorded_usd_equivalent"`
	ByMethod              map[domain.PaymentMethod]MethodTotals `json:"by_method"`
}

type OccupancyReport struct {
	At            time.Time                `json:"at"`
	Rooms         int                      `json:"rooms"`
	Counts        map[occupancy.Status]int `json:"counts"`
	OccupancyRate float64                  `json:"occupancy_rate"`
}
