package domain

import "time"

type Tenant struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	FullName    string    `json:"full_name" gorm:"not null" validate:"required,min=2"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	DocumentID  string    `json:"document_id,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Notes       string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

// UnknownTenantName is shown when a booking references a tenant row that no
// longer exists.
const UnknownTenantName = "Unknown tenant"

type TaskKind string

const (
	TaskCleaning    TaskKind = "CLEANING"
	TaskMaintenance TaskKind = "MAINTENANCE"
)

type TaskStatus string

const (
	TaskOpen      TaskStatus = "OPEN"
	TaskDone      TaskStatus = "DONE"
	TaskCancelled TaskStatus = "CANCELLED"
)

type Task struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	RoomID      int64      `json:"room_id" gorm:"not null;index"`
	BookingID   *int64     `json:"booking_id,omitempty" gorm:"index"`
	Kind        TaskKind   `json:"kind" gorm:"type:varchar(20);not null"`
	Status      TaskStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *int64     `json:"completed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
