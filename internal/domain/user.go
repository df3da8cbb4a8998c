package domain

import "time"

type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleManager      UserRole = "manager"
	RoleReceptionist UserRole = "receptionist"
)

func ValidUserRole(r UserRole) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleReceptionist
}

// User is a back-office staff account.
type User struct {
	ID                  int64      `json:"id"`
	Email               string     `json:"email" validate:"required,email"`
	PasswordHash        string     `json:"-"`
	Role                UserRole   `json:"role"`
	Name                string     `json:"name"`
	IsActive            bool       `json:"is_active"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Locked reports whether the account is inside a lockout window at now.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
