package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
	"propertydesk/internal/modules/tenant"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/pkg/saga"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	bookings BookingRepository
	rooms    RoomRepository
	invoices InvoiceRepository
	tasks    TaskRepository
	tenants  TenantDirectory
	notifier RoomNotifier
	events   events.Publisher
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(
	bookings BookingRepository,
	rooms RoomRepository,
	invoices InvoiceRepository,
	tasks TaskRepository,
	tenants TenantDirectory,
	notifier RoomNotifier,
	publisher events.Publisher,
	log logrus.FieldLogger,
) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		bookings: bookings,
		rooms:    rooms,
		invoices: invoices,
		tasks:    tasks,
		tenants:  tenants,
		notifier: notifier,
		events:   publisher,
		log:      logger.OrDiscard(log),
		now:      time.Now,
	}
}

// Create books a room for a tenant and issues the stay invoice. A booking
// with a deposit starts CONFIRMED, otherwise PENDING.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*BookingDetails, error) {
	if !req.PlannedEnd.After(req.PlannedStart) || req.DepositAmount < 0 {
		return nil, ErrValidation
	}
	if req.TotalPrice != nil && *req.TotalPrice < 0 {
		return nil, ErrValidation
	}

	room, err := s.room(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tenants.Get(ctx, req.TenantID); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	busy, err := s.bookings.HasOverlap(ctx, req.RoomID, req.PlannedStart, req.PlannedEnd, 0)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrNotAvailable
	}

	total := billing.StayPrice(room, req.PlannedStart, req.PlannedEnd)
	if req.TotalPrice != nil {
		total = billing.Round2(*req.TotalPrice)
	}
	status := domain.BookingPending
	if req.DepositAmount > 0 {
		status = domain.BookingConfirmed
	}

	b := &domain.Booking{
		RoomID:        req.RoomID,
		TenantID:      req.TenantID,
		PlannedStart:  req.PlannedStart,
		PlannedEnd:    req.PlannedEnd,
		TotalPrice:    total,
		DepositAmount: req.DepositAmount,
		Status:        status,
		Notes:         strings.TrimSpace(req.Notes),
	}
	var inv *domain.Invoice

	run := saga.New("create_booking", s.log).
		Add(saga.Step{
			Name: "insert_booking",
			Do:   func(ctx context.Context) error { return s.bookings.Create(ctx, b) },
			Undo: func(ctx context.Context) error { return s.bookings.Delete(ctx, b.ID) },
		}).
		Add(saga.Step{
			Name: "issue_stay_invoice",
			Do: func(ctx context.Context) error {
				if b.TotalPrice <= 0 {
					return nil
				}
				var err error
				if inv, err = billing.NewStayInvoice(b, room); err != nil {
					return err
				}
				return s.invoices.Create(ctx, inv)
			},
			Undo: func(ctx context.Context) error {
				if inv == nil || inv.ID == 0 {
					return nil
				}
				return s.invoices.Delete(ctx, inv.ID)
			},
		})
	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "room_id": b.RoomID, "status": b.Status}).Info("booking created")
	s.publish(ctx, events.BookingCreated, b)
	s.notify(ctx, b.RoomID)

	details := &BookingDetails{Booking: *b, RoomNumber: room.Number, TenantName: s.tenants.DisplayName(ctx, b.TenantID), Invoices: []domain.Invoice{}}
	if inv != nil {
		details.Invoices = append(details.Invoices, *inv)
	}
	return details, nil
}

// Get returns the booking with its room number, tenant name and invoices. A
// missing tenant is shown with a placeholder name.
func (s *Service) Get(ctx context.Context, id int64) (*BookingDetails, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &BookingDetails{Booking: *b, TenantName: s.tenants.DisplayName(ctx, b.TenantID)}
	if room, err := s.rooms.GetByID(ctx, b.RoomID); err == nil {
		details.RoomNumber = room.Number
	}
	invoices, err := s.invoices.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	details.Invoices = invoices
	return details, nil
}

func (s *Service) ListByRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	list, err := s.bookings.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Booking{}
	}
	return list, nil
}

func (s *Service) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingConfirmed {
		return b, nil
	}
	if b.Status != domain.BookingPending {
		return nil, ErrInvalidTransition
	}
	b.Status = domain.BookingConfirmed
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	s.notify(ctx, b.RoomID)
	return b, nil
}

// CheckIn starts the stay: the booking goes IN_PROGRESS and the room OCCUPIED.
func (s *Service) CheckIn(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ActualCheckIn != nil || !domain.CanTransition(b.Status, domain.BookingInProgress) {
		return nil, ErrInvalidTransition
	}
	room, err := s.room(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomAvailable && room.Status != domain.RoomPendingCleaning {
		return nil, ErrRoomUnavailable
	}

	prev := b.Clone()
	now := s.now()
	b.Status = domain.BookingInProgress
	b.ActualCheckIn = &now

	run := saga.New("check_in", s.log).
		Add(s.bookingStep("start_stay", b, prev)).
		Add(s.roomStep("room_occupied", room, domain.RoomOccupied))
	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "room_id": b.RoomID}).Info("guest checked in")
	s.publish(ctx, events.BookingCheckedIn, b)
	s.notify(ctx, b.RoomID)
	return b, nil
}

// Cancel cancels a booking that is not finished yet. Open invoices with
// nothing paid are cancelled too; partially paid ones are left for the
// cashier. Cancelling a stay in progress frees the room for cleaning.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(b.Status, domain.BookingCancelled) {
		return nil, ErrInvalidTransition
	}
	invoices, err := s.invoices.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	wasIn := b.CheckedIn()
	prev := b.Clone()
	now := s.now()
	b.Status = domain.BookingCancelled
	b.CancelledAt = &now
	b.CancelReason = strings.TrimSpace(reason)

	run := saga.New("cancel_booking", s.log).Add(s.bookingStep("cancel_booking", b, prev))
	for i := range invoices {
		inv := &invoices[i]
		if !inv.Status.IsOpen() || inv.AmountPaid > 0 {
			continue
		}
		run.Add(s.invoiceCancelStep(inv))
	}

	var task *domain.Task
	if wasIn {
		room, err := s.room(ctx, b.RoomID)
		if err != nil {
			return nil, err
		}
		task = s.cleaningTask(b, "Cleaning after cancelled stay")
		run.Add(s.roomStep("room_pending_cleaning", room, domain.RoomPendingCleaning)).
			Add(s.taskStep(task))
	}
	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "was_checked_in": wasIn}).Info("booking cancelled")
	s.publish(ctx, events.BookingCancelled, b)
	if task != nil {
		s.publish(ctx, events.TaskCleaningCreated, task)
	}
	s.notify(ctx, b.RoomID)
	return b, nil
}

// CheckoutChoice opens the checkout decision for a checked-in stay. With a
// proposed end date it also prices the zero-discount extension the operator
// can start from.
func (s *Service) CheckoutChoice(ctx context.Context, id int64, proposedEnd *time.Time) (*CheckoutChoice, error) {
	b, room, err := s.checkedInStay(ctx, id)
	if err != nil {
		return nil, err
	}

	choice := &CheckoutChoice{
		State:      CheckoutStateChoice,
		Options:    []string{CheckoutDepart, CheckoutExtend},
		BookingID:  b.ID,
		RoomID:     room.ID,
		RoomNumber: room.Number,
		RoomStatus: room.Status,
		Flagged:    room.Status == domain.RoomPendingCheckout,
		PlannedEnd: b.PlannedEnd,
		TotalPrice: b.TotalPrice,
	}
	if proposedEnd != nil {
		q, err := billing.QuoteExtension(b, room, *proposedEnd, 0)
		if err != nil {
			return nil, err
		}
		choice.ProposedEnd = proposedEnd
		choice.Suggestion = &q
	}
	return choice, nil
}

// Depart closes the stay: booking COMPLETED with the actual checkout time,
// room PENDING_CLEANING and a cleaning task for housekeeping.
func (s *Service) Depart(ctx context.Context, id int64) (*DepartResult, error) {
	b, room, err := s.checkedInStay(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := b.Clone()
	now := s.now()
	b.Status = domain.BookingCompleted
	b.ActualCheckOut = &now
	task := s.cleaningTask(b, fmt.Sprintf("Cleaning after checkout of room %s", room.Number))

	run := saga.New("checkout_depart", s.log).
		Add(s.bookingStep("complete_booking", b, prev)).
		Add(s.roomStep("room_pending_cleaning", room, domain.RoomPendingCleaning)).
		Add(s.taskStep(task))
	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "room_id": room.ID, "task_id": task.ID}).Info("guest departed")
	s.publish(ctx, events.BookingCheckedOut, b)
	s.publish(ctx, events.TaskCleaningCreated, task)
	s.notify(ctx, room.ID)
	return &DepartResult{Booking: b, Task: task}, nil
}

// CheckoutExtend is the EXTEND branch of the checkout decision.
func (s *Service) CheckoutExtend(ctx context.Context, id int64, req ExtendRequest) (*ExtendResult, error) {
	if _, _, err := s.checkedInStay(ctx, id); err != nil {
		return nil, err
	}
	return s.Extend(ctx, id, req)
}

// Extend moves the planned end of a stay and bills the additional nights on
// a dedicated invoice. When the stay is checked in, a room waiting for
// checkout goes back to OCCUPIED.
func (s *Service) Extend(ctx context.Context, id int64, req ExtendRequest) (*ExtendResult, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return nil, err
	}
	room, err := s.room(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}

	discount := req.DiscountPerNight
	if req.AgreedTotal != nil {
		if discount, err = billing.DiscountForAgreedTotal(b, room, req.NewEnd, *req.AgreedTotal); err != nil {
			return nil, err
		}
	}
	ext, err := billing.ExtendStay(b, room, req.NewEnd, discount)
	if err != nil {
		return nil, err
	}

	busy, err := s.bookings.HasOverlap(ctx, b.RoomID, b.PlannedEnd, req.NewEnd, b.ID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrNotAvailable
	}

	run := saga.New("extend_stay", s.log).Add(s.bookingStep("extend_booking", ext.Booking, ext.Previous))
	if ext.Invoice != nil {
		inv := ext.Invoice
		run.Add(saga.Step{
			Name: "issue_extension_invoice",
			Do:   func(ctx context.Context) error { return s.invoices.Create(ctx, inv) },
			Undo: func(ctx context.Context) error { return s.invoices.Delete(ctx, inv.ID) },
		})
	}
	// only the guest in the room can answer its pending checkout
	if b.CheckedIn() && room.Status == domain.RoomPendingCheckout {
		run.Add(s.roomStep("room_occupied", room, domain.RoomOccupied))
	}
	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"nights":     ext.Quote.AdditionalNights,
		"net_extra":  ext.Quote.NetExtra,
	}).Info("stay extended")
	s.publish(ctx, events.BookingExtended, map[string]any{
		"booking_id": b.ID,
		"new_end":    ext.Booking.PlannedEnd,
		"quote":      ext.Quote,
	})
	s.notify(ctx, b.RoomID)
	return &ExtendResult{Booking: ext.Booking, Invoice: ext.Invoice, Quote: ext.Quote}, nil
}

func (s *Service) booking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *Service) room(ctx context.Context, id int64) (*domain.Room, error) {
	r, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	return r, err
}

func (s *Service) checkedInStay(ctx context.Context, id int64) (*domain.Booking, *domain.Room, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !b.CheckedIn() {
		return nil, nil, ErrNotCheckedIn
	}
	room, err := s.room(ctx, b.RoomID)
	if err != nil {
		return nil, nil, err
	}
	return b, room, nil
}

func (s *Service) cleaningTask(b *domain.Booking, description string) *domain.Task {
	bookingID := b.ID
	return &domain.Task{
		RoomID:      b.RoomID,
		BookingID:   &bookingID,
		Kind:        domain.TaskCleaning,
		Status:      domain.TaskOpen,
		Description: description,
	}
}

func (s *Service) bookingStep(name string, next, prev *domain.Booking) saga.Step {
	return saga.Step{
		Name: name,
		Do:   func(ctx context.Context) error { return s.bookings.Update(ctx, next) },
		Undo: func(ctx context.Context) error { return s.bookings.Update(ctx, prev) },
	}
}

func (s *Service) roomStep(name string, room *domain.Room, status domain.RoomStatus) saga.Step {
	prev := room.Status
	return saga.Step{
		Name: name,
		Do:   func(ctx context.Context) error { return s.rooms.UpdateStatus(ctx, room.ID, status) },
		Undo: func(ctx context.Context) error { return s.rooms.UpdateStatus(ctx, room.ID, prev) },
	}
}

func (s *Service) taskStep(task *domain.Task) saga.Step {
	return saga.Step{
		Name: "create_cleaning_task",
		Do:   func(ctx context.Context) error { return s.tasks.Create(ctx, task) },
		Undo: func(ctx context.Context) error { return s.tasks.Delete(ctx, task.ID) },
	}
}

func (s *Service) invoiceCancelStep(inv *domain.Invoice) saga.Step {
	prev := inv.Status
	return saga.Step{
		Name: fmt.Sprintf("cancel_invoice_%d", inv.ID),
		Do: func(ctx context.Context) error {
			inv.Status = domain.InvoiceCancelled
			return s.invoices.UpdateTotals(ctx, inv)
		},
		Undo: func(ctx context.Context) error {
			inv.Status = prev
			return s.invoices.UpdateTotals(ctx, inv)
		},
	}
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		s.log.WithField("topic", topic).WithError(err).Warn("publish event")
	}
}

func (s *Service) notify(ctx context.Context, roomID int64) {
	if s.notifier != nil {
		s.notifier.RoomChanged(ctx, roomID)
	}
}
