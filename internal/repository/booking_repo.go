package repository

import (
	"context"
	"time"

	"propertydesk/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID             int64      `gorm:"column:id;primaryKey"`
	RoomID         int64      `gorm:"column:room_id;not null;index"`
	TenantID       int64      `gorm:"column:tenant_id;not null;index"`
	PlannedStart   time.Time  `gorm:"column:planned_start;not null"`
	PlannedEnd     time.Time  `gorm:"column:planned_end;not null"`
	ActualCheckIn  *time.Time `gorm:"column:actual_check_in"`
	ActualCheckOut *time.Time `gorm:"column:actual_check_out"`
	TotalPrice     float64    `gorm:"column:total_price;not null;default:0"`
	DepositAmount  float64    `gorm:"column:deposit_amount;not null;default:0"`
	Status         string     `gorm:"column:status;type:varchar(20);not null;index"`
	Notes          *string    `gorm:"column:notes;type:text"`
	CancelledAt    *time.Time `gorm:"column:cancelled_at"`
	CancelReason   *string    `gorm:"column:cancel_reason"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:             m.ID,
		RoomID:         m.RoomID,
		TenantID:       m.TenantID,
		PlannedStart:   m.PlannedStart,
		PlannedEnd:     m.PlannedEnd,
		ActualCheckIn:  m.ActualCheckIn,
		ActualCheckOut: m.ActualCheckOut,
		TotalPrice:     m.TotalPrice,
		DepositAmount:  m.DepositAmount,
		Status:         domain.BookingStatus(m.Status),
		Notes:          deref(m.Notes),
		CancelledAt:    m.CancelledAt,
		CancelReason:   deref(m.CancelReason),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:             b.ID,
		RoomID:         b.RoomID,
		TenantID:       b.TenantID,
		PlannedStart:   b.PlannedStart.UTC(),
		PlannedEnd:     b.PlannedEnd.UTC(),
		ActualCheckIn:  b.ActualCheckIn,
		ActualCheckOut: b.ActualCheckOut,
		TotalPrice:     b.TotalPrice,
		DepositAmount:  b.DepositAmount,
		Status:         string(b.Status),
		Notes:          ptr(b.Notes),
		CancelledAt:    b.CancelledAt,
		CancelReason:   ptr(b.CancelReason),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// Update writes every mutable column of b. It is also used to restore a
// snapshot when a multi-step operation is compensated.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Model(&bookingModel{ID: b.ID}).Select(
		"planned_start", "planned_end", "actual_check_in", "actual_check_out",
		"total_price", "deposit_amount", "status", "notes", "cancelled_at", "cancel_reason", "updated_at",
	).Updates(&m)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a booking. Only used to compensate a failed creation.
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&bookingModel{}, id).Error
}

func (r *BookingRepository) ListByRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("planned_start DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBookings(rows), nil
}

// ListByStatus returns bookings in any of the given statuses, all rooms.
func (r *BookingRepository) ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Where("status IN ?", statusStrings(statuses)).
		Order("room_id, planned_start").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBookings(rows), nil
}

// HasOverlap reports whether another PENDING, CONFIRMED or IN_PROGRESS booking
// of the room intersects [start, end). excludeID skips the booking being
// changed.
func (r *BookingRepository) HasOverlap(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("room_id = ?", roomID).
		Where("id <> ?", excludeID).
		Where("status IN ?", statusStrings([]domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed, domain.BookingInProgress})).
		Where("planned_start < ? AND planned_end > ?", end.UTC(), start.UTC()).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// checkedIn matches bookings whose guest is in the room: IN_PROGRESS, or
// re-confirmed by an extension after check-in.
func checkedIn(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(status = ? OR (status = ? AND actual_check_in IS NOT NULL AND actual_check_out IS NULL))",
		string(domain.BookingInProgress), string(domain.BookingConfirmed),
	)
}

// ListDueForCheckout returns checked-in bookings whose planned end is at or
// before now.
func (r *BookingRepository) ListDueForCheckout(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Scopes(checkedIn).
		Where("planned_end <= ?", now.UTC()).
		Order("planned_end").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBookings(rows), nil
}

// InProgressForRoom returns the booking currently checked in to the room, or
// gorm.ErrRecordNotFound.
func (r *BookingRepository) InProgressForRoom(ctx context.Context, roomID int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Scopes(checkedIn).
		Order("planned_start DESC").
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
