package room

import "propertydesk/internal/domain"

type CreateRoomRequest struct {
	Number       string          `json:"number" binding:"required"`
	Type         domain.RoomType `json:"type" binding:"required"`
	Floor        int             `json:"floor"`
	Capacity     int             `json:"capacity" binding:"required"`
	NightlyPrice float64         `json:"nightly_price"`
	WeeklyPrice  float64         `json:"weekly_price"`
	MonthlyPrice float64         `json:"monthly_price"`
	Equipment    []string        `json:"equipment"`
}

type MaintenanceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type FlaggedRoom struct {
	RoomID     int64  `json:"room_id"`
	RoomNumber string `json:"room_number"`
	BookingID  int64  `json:"booking_id"`
}
