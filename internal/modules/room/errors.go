package room

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("room not found")
	ErrDuplicate    = errors.New("room number already exists")
	ErrRoomInUse    = errors.New("room is occupied")
	ErrInvalidState = errors.New("operation not allowed in the room's current status")
)
