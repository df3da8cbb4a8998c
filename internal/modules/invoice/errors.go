package invoice

import "errors"

var (
	ErrNotFound    = errors.New("invoice not found")
	ErrHasPayments = errors.New("invoice has payments and cannot be cancelled")
)
