package board

import (
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/occupancy"
)

const (
	EventRoomStatus = "room_status"
	EventSnapshot   = "snapshot"
	EventPong       = "pong"
	EventError      = "error"
)

type RoomStatusEvent struct {
	Type            string            `json:"type"`
	RoomID          int64             `json:"room_id"`
	RoomNumber      string            `json:"room_number"`
	PhysicalStatus  domain.RoomStatus `json:"physical_status"`
	EffectiveStatus occupancy.Status  `json:"effective_status"`
	At              time.Time         `json:"at"`
}

type SnapshotEvent struct {
	Type  string               `json:"type"`
	Rooms []occupancy.RoomView `json:"rooms"`
	At    time.Time            `json:"at"`
}

type ClientMessage struct {
	Type string `json:"type"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
