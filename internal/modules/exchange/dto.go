package exchange

import "time"

type SetRateRequest struct {
	CdfPerUsd float64 `json:"cdf_per_usd" binding:"required,gt=0"`
}

type RateResponse struct {
	CdfPerUsd float64    `json:"cdf_per_usd"`
	IsDefault bool       `json:"is_default"`
	SetAt     *time.Time `json:"set_at,omitempty"`
	SetBy     int64      `json:"set_by,omitempty"`
}
