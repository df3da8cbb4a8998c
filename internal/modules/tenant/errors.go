package tenant

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("tenant not found")
)
