package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type RoomType string

const (
	RoomSingle RoomType = "SINGLE"
	RoomDouble RoomType = "DOUBLE"
	RoomSuite  RoomType = "SUITE"
	RoomStudio RoomType = "STUDIO"
)

// RoomStatus is the persisted (physical) state of a room. It is changed by
// lifecycle actions and maintenance toggles only; occupancy for display is
// derived separately.
type RoomStatus string

const (
	RoomAvailable       RoomStatus = "AVAILABLE"
	RoomOccupied        RoomStatus = "OCCUPIED"
	RoomMaintenance     RoomStatus = "MAINTENANCE"
	RoomPendingCleaning RoomStatus = "PENDING_CLEANING"
	RoomPendingCheckout RoomStatus = "PENDING_CHECKOUT"
)

var legacyRoomStatuses = map[string]RoomStatus{
	"libre":       RoomAvailable,
	"occupé":      RoomOccupied,
	"occupe":      RoomOccupied,
	"nettoyage":   RoomPendingCleaning,
	"maintenance": RoomMaintenance,
}

// ParseRoomStatus normalises stored values, including the legacy French
// labels, to the canonical set. Unknown values fall back to AVAILABLE.
func ParseRoomStatus(raw string) RoomStatus {
	v := strings.TrimSpace(raw)
	switch RoomStatus(strings.ToUpper(v)) {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomPendingCleaning, RoomPendingCheckout:
		return RoomStatus(strings.ToUpper(v))
	}
	if s, ok := legacyRoomStatuses[strings.ToLower(v)]; ok {
		return s
	}
	return RoomAvailable
}

func ValidRoomType(t RoomType) bool {
	switch t {
	case RoomSingle, RoomDouble, RoomSuite, RoomStudio:
		return true
	}
	return false
}

type Room struct {
	ID           int64                       `json:"id"`
	Number       string                      `json:"number" validate:"required"`
	Type         RoomType                    `json:"type" validate:"required"`
	Floor        int                         `json:"floor"`
	Capacity     int                         `json:"capacity" validate:"required,gt=0"`
	NightlyPrice float64                     `json:"nightly_price" validate:"gte=0"`
	WeeklyPrice  float64                     `json:"weekly_price" validate:"gte=0"`
	MonthlyPrice float64                     `json:"monthly_price" validate:"gte=0"`
	Equipment    datatypes.JSONSlice[string] `json:"equipment,omitempty"`
	Status       RoomStatus                  `json:"status"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}
