package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/occupancy"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/pkg/validator"
	"propertydesk/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var boardStatuses = []domain.BookingStatus{domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted}

type Service struct {
	rooms    RoomRepository
	bookings BookingRepository
	notifier RoomNotifier
	events   events.Publisher
	log      logrus.FieldLogger
}

func NewService(rooms RoomRepository, bookings BookingRepository, notifier RoomNotifier, publisher events.Publisher, log logrus.FieldLogger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{rooms: rooms, bookings: bookings, notifier: notifier, events: publisher, log: logger.OrDiscard(log)}
}

func (s *Service) Create(ctx context.Context, req CreateRoomRequest) (*domain.Room, map[string]string, error) {
	r := &domain.Room{
		Number:       strings.TrimSpace(req.Number),
		Type:         domain.RoomType(strings.ToUpper(string(req.Type))),
		Floor:        req.Floor,
		Capacity:     req.Capacity,
		NightlyPrice: req.NightlyPrice,
		WeeklyPrice:  req.WeeklyPrice,
		MonthlyPrice: req.MonthlyPrice,
		Equipment:    req.Equipment,
		Status:       domain.RoomAvailable,
	}
	if errs := validator.Validate(r); errs != nil {
		return nil, errs, ErrValidation
	}
	if !domain.ValidRoomType(r.Type) {
		return nil, map[string]string{"type": "oneof"}, ErrValidation
	}

	if err := s.rooms.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrDuplicate
		}
		return nil, nil, fmt.Errorf("create room: %w", err)
	}
	return r, nil, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Room, error) {
	r, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return r, err
}

// List returns every room, or only those in the given physical status.
// Legacy labels in the filter are accepted.
func (s *Service) List(ctx context.Context, status string) ([]domain.Room, error) {
	if strings.TrimSpace(status) == "" {
		return s.rooms.List(ctx)
	}
	return s.rooms.ListByStatus(ctx, domain.ParseRoomStatus(status))
}

// Status returns both statuses of one room at instant at.
func (s *Service) Status(ctx context.Context, id int64, at time.Time) (*occupancy.RoomView, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	return &occupancy.RoomView{
		Room:      *r,
		Physical:  r.Status,
		Effective: occupancy.EffectiveStatus(r, bookings, at),
		At:        at,
	}, nil
}

func (s *Service) Board(ctx context.Context, at time.Time) ([]occupancy.RoomView, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByStatus(ctx, boardStatuses...)
	if err != nil {
		return nil, err
	}
	return occupancy.Board(rooms, bookings, at), nil
}

// SetMaintenance toggles the MAINTENANCE physical status. A room can only be
// taken out of service while nobody is checked in; ending maintenance makes
// it AVAILABLE.
func (s *Service) SetMaintenance(ctx context.Context, id int64, enabled bool) (*domain.Room, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var next domain.RoomStatus
	switch {
	case enabled && r.Status == domain.RoomMaintenance, !enabled && r.Status != domain.RoomMaintenance:
		return r, nil
	case enabled:
		if r.Status == domain.RoomOccupied || r.Status == domain.RoomPendingCheckout {
			return nil, ErrRoomInUse
		}
		_, err := s.bookings.InProgressForRoom(ctx, id)
		if err == nil {
			return nil, ErrRoomInUse
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		next = domain.RoomMaintenance
	default:
		next = domain.RoomAvailable
	}

	if err := s.rooms.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update room status: %w", err)
	}
	s.log.WithFields(logrus.Fields{"room_id": id, "from": r.Status, "to": next}).Info("room maintenance toggled")
	r.Status = next
	s.changed(ctx, r)
	return r, nil
}

// FlagCheckouts marks OCCUPIED rooms whose in-progress booking has reached
// its planned end as PENDING_CHECKOUT, which opens the checkout decision.
func (s *Service) FlagCheckouts(ctx context.Context, now time.Time) ([]FlaggedRoom, error) {
	due, err := s.bookings.ListDueForCheckout(ctx, now)
	if err != nil {
		return nil, err
	}

	flagged := []FlaggedRoom{}
	for _, b := range due {
		r, err := s.rooms.GetByID(ctx, b.RoomID)
		if err != nil {
			s.log.WithField("booking_id", b.ID).WithError(err).Warn("flag checkouts: room lookup failed")
			continue
		}
		if r.Status != domain.RoomOccupied {
			continue
		}
		if err := s.rooms.UpdateStatus(ctx, r.ID, domain.RoomPendingCheckout); err != nil {
			return flagged, fmt.Errorf("flag room %d: %w", r.ID, err)
		}
		r.Status = domain.RoomPendingCheckout
		s.changed(ctx, r)
		flagged = append(flagged, FlaggedRoom{RoomID: r.ID, RoomNumber: r.Number, BookingID: b.ID})
	}
	if len(flagged) > 0 {
		s.log.WithField("count", len(flagged)).Info("rooms flagged for checkout")
	}
	return flagged, nil
}

func (s *Service) changed(ctx context.Context, r *domain.Room) {
	if s.notifier != nil {
		s.notifier.RoomChanged(ctx, r.ID)
	}
	payload := map[string]any{"room_id": r.ID, "room_number": r.Number, "status": r.Status}
	if err := s.events.Publish(ctx, events.RoomStatusChanged, payload); err != nil {
		s.log.WithError(err).Warn("publish room status event")
	}
}
