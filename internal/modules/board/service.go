package board

import (
	"context"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/occupancy"
	"propertydesk/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// activeStatuses are the booking statuses that can occupy a room on the
// board.
var activeStatuses = []domain.BookingStatus{domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted}

// Service computes board views and pushes room changes to connected clients.
type Service struct {
	rooms    RoomRepository
	bookings BookingRepository
	hub      Broadcaster
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewService(rooms RoomRepository, bookings BookingRepository, hub Broadcaster, log logrus.FieldLogger) *Service {
	return &Service{rooms: rooms, bookings: bookings, hub: hub, now: time.Now, log: logger.OrDiscard(log)}
}

// Snapshot resolves every room at instant at.
func (s *Service) Snapshot(ctx context.Context, at time.Time) ([]occupancy.RoomView, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByStatus(ctx, activeStatuses...)
	if err != nil {
		return nil, err
	}
	return occupancy.Board(rooms, bookings, at), nil
}

// RoomChanged recomputes one room and broadcasts it. Failures are logged:
// the board is a convenience and must never fail the mutation that caused
// the change.
func (s *Service) RoomChanged(ctx context.Context, roomID int64) {
	if s.hub == nil {
		return
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		s.log.WithField("room_id", roomID).WithError(err).Warn("board: load room")
		return
	}
	bookings, err := s.bookings.ListByRoom(ctx, roomID)
	if err != nil {
		s.log.WithField("room_id", roomID).WithError(err).Warn("board: load bookings")
		return
	}

	at := s.now()
	s.hub.Broadcast(RoomStatusEvent{
		Type:            EventRoomStatus,
		RoomID:          room.ID,
		RoomNumber:      room.Number,
		PhysicalStatus:  room.Status,
		EffectiveStatus: occupancy.EffectiveStatus(room, bookings, at),
		At:              at,
	})
}
