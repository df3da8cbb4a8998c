package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// IsTerminal reports whether no further lifecycle transition is possible.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

type Booking struct {
	ID             int64         `json:"id"`
	RoomID         int64         `json:"room_id" validate:"required"`
	TenantID       int64         `json:"tenant_id" validate:"required"`
	PlannedStart   time.Time     `json:"planned_start" validate:"required"`
	PlannedEnd     time.Time     `json:"planned_end" validate:"required"`
	ActualCheckIn  *time.Time    `json:"actual_check_in,omitempty"`
	ActualCheckOut *time.Time    `json:"actual_check_out,omitempty"`
	TotalPrice     float64       `json:"total_price" validate:"gte=0"`
	DepositAmount  float64       `json:"deposit_amount" validate:"gte=0"`
	Status         BookingStatus `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason   string        `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// HasUsableInterval is false for zero or inverted planned dates, which
// show up in historical rows imported without validation.
func (b *Booking) HasUsableInterval() bool {
	if b.PlannedStart.IsZero() || b.PlannedEnd.IsZero() {
		return false
	}
	return b.PlannedEnd.After(b.PlannedStart)
}

// Covers reports whether at falls inside [PlannedStart, PlannedEnd].
func (b *Booking) Covers(at time.Time) bool {
	if !b.HasUsableInterval() {
		return false
	}
	return !at.Before(b.PlannedStart) && !at.After(b.PlannedEnd)
}

// Overlaps reports whether the planned stay intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	if !b.HasUsableInterval() {
		return false
	}
	return b.PlannedStart.Before(end) && start.Before(b.PlannedEnd)
}

// CheckedIn reports whether the guest is in the room. An extended stay is
// re-confirmed but keeps its actual check-in.
func (b *Booking) CheckedIn() bool {
	if b.Status == BookingInProgress {
		return true
	}
	return b.Status == BookingConfirmed && b.ActualCheckIn != nil && b.ActualCheckOut == nil
}

// Clone returns a copy safe to mutate; pointer fields are duplicated.
func (b *Booking) Clone() *Booking {
	c := *b
	if b.ActualCheckIn != nil {
		v := *b.ActualCheckIn
		c.ActualCheckIn = &v
	}
	if b.ActualCheckOut != nil {
		v := *b.ActualCheckOut
		c.ActualCheckOut = &v
	}
	if b.CancelledAt != nil {
		v := *b.CancelledAt
		c.CancelledAt = &v
	}
	return &c
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingInProgress, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// A stay extension re-confirms the booking, so CONFIRMED is reachable from
// IN_PROGRESS only through ExtensionAllowed.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ExtensionAllowed reports whether a stay in this status may be extended.
func ExtensionAllowed(s BookingStatus) bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingInProgress
}
