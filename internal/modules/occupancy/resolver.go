// Package occupancy derives what a room looks like to the front desk at a
// given instant. The persisted domain.RoomStatus decides which mutations are
// allowed; Status here is for display only and is never stored.
package occupancy

import (
	"time"

	"propertydesk/internal/domain"
)

type Status string

const (
	Available       Status = "AVAILABLE"
	Occupied        Status = "OCCUPIED"
	Maintenance     Status = "MAINTENANCE"
	PendingCheckout Status = "PENDING_CHECKOUT"
)

// occupies reports whether b holds the room at instant at. COMPLETED bookings
// without a recorded checkout still count: the status was advanced but the
// departure never logged.
func occupies(b *domain.Booking, at time.Time) bool {
	switch b.Status {
	case domain.BookingConfirmed, domain.BookingInProgress:
	case domain.BookingCompleted:
		if b.ActualCheckOut != nil {
			return false
		}
	default:
		return false
	}
	return b.Covers(at)
}

// EffectiveStatus resolves the display status of room at instant at.
// bookings may contain other rooms' bookings; they are ignored. Bookings with
// unusable dates are treated as inactive.
func EffectiveStatus(room *domain.Room, bookings []domain.Booking, at time.Time) Status {
	physical := domain.ParseRoomStatus(string(room.Status))
	if physical == domain.RoomMaintenance {
		return Maintenance
	}

	for i := range bookings {
		b := &bookings[i]
		if b.RoomID != room.ID {
			continue
		}
		if occupies(b, at) {
			return Occupied
		}
	}

	switch physical {
	case domain.RoomOccupied:
		return Occupied
	case domain.RoomPendingCheckout:
		return PendingCheckout
	default:
		// AVAILABLE and PENDING_CLEANING both show as free
		return Available
	}
}

// RoomView pairs a room's two statuses.
type RoomView struct {
	Room      domain.Room       `json:"room"`
	Physical  domain.RoomStatus `json:"physical_status"`
	Effective Status            `json:"effective_status"`
	At        time.Time         `json:"at"`
}

// Board resolves every room against one shared booking list.
func Board(rooms []domain.Room, bookings []domain.Booking, at time.Time) []RoomView {
	byRoom := make(map[int64][]domain.Booking, len(rooms))
	for _, b := range bookings {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}
	out := make([]RoomView, 0, len(rooms))
	for i := range rooms {
		r := rooms[i]
		r.Status = domain.ParseRoomStatus(string(r.Status))
		out = append(out, RoomView{
			Room:      r,
			Physical:  r.Status,
			Effective: EffectiveStatus(&r, byRoom[r.ID], at),
			At:        at,
		})
	}
	return out
}

// Summary counts rooms by effective status.
func Summary(views []RoomView) map[Status]int {
	out := map[Status]int{Available: 0, Occupied: 0, Maintenance: 0, PendingCheckout: 0}
	for _, v := range views {
		out[v.Effective]++
	}
	return out
}
