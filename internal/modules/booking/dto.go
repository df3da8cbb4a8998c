package booking

import (
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/billing"
)

type CreateBookingRequest struct {
	RoomID        int64     `json:"room_id" binding:"required"`
	TenantID      int64     `json:"tenant_id" binding:"required"`
	PlannedStart  time.Time `json:"planned_start" binding:"required"`
	PlannedEnd    time.Time `json:"planned_end" binding:"required"`
	TotalPrice    *float64  `json:"total_price"`
	DepositAmount float64   `json:"deposit_amount"`
	Notes         string    `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// ExtendRequest extends a stay. AgreedTotal, when set, is the new booking
// total the operator agreed with the guest; it overrides DiscountPerNight.
type ExtendRequest struct {
	NewEnd           time.Time `json:"new_end" binding:"required"`
	DiscountPerNight float64   `json:"discount_per_night"`
	AgreedTotal      *float64  `json:"agreed_total"`
}

type BookingDetails struct {
	domain.Booking
	RoomNumber string           `json:"room_number"`
	TenantName string           `json:"tenant_name"`
	Invoices   []domain.Invoice `json:"invoices"`
}

const (
	CheckoutStateChoice = "CHOICE"
	CheckoutDepart      = "DEPART"
	CheckoutExtend      = "EXTEND"
)

// CheckoutChoice is the decision offered when a stay reaches its planned end.
// Suggestion is present when a new end date was proposed.
type CheckoutChoice struct {
	State       string                  `json:"state"`
	Options     []string                `json:"options"`
	BookingID   int64                   `json:"booking_id"`
	RoomID      int64                   `json:"room_id"`
	RoomNumber  string                  `json:"room_number"`
	RoomStatus  domain.RoomStatus       `json:"room_status"`
	Flagged     bool                    `json:"flagged"`
	PlannedEnd  time.Time               `json:"planned_end"`
	TotalPrice  float64                 `json:"total_price"`
	ProposedEnd *time.Time              `json:"proposed_end,omitempty"`
	Suggestion  *billing.ExtensionQuote `json:"suggestion,omitempty"`
}

type DepartResult struct {
	Booking *domain.Booking `json:"booking"`
	Task    *domain.Task    `json:"cleaning_task"`
}

type ExtendResult struct {
	Booking *domain.Booking        `json:"booking"`
	Invoice *domain.Invoice        `json:"invoice,omitempty"`
	Quote   billing.ExtensionQuote `json:"quote"`
}
