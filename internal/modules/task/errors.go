package task

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("task not found")
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyClosed = errors.New("task is already closed")
)
