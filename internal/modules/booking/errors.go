package booking

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("booking not found")
	ErrRoomNotFound      = errors.New("room not found")
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrNotAvailable      = errors.New("room is already booked for the selected dates")
	ErrInvalidTransition = errors.New("booking cannot move to the requested status")
	ErrRoomUnavailable   = errors.New("room cannot receive a guest in its current status")
	ErrNotCheckedIn      = errors.New("guest is not checked in")
)
