package payment

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvoiceClosed   = errors.New("invoice does not accept payments")
	ErrNothingDue      = errors.New("invoice has no balance due")
)
