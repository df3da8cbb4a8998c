package auth

import (
	"context"
	"time"

	"propertydesk/internal/domain"
)

// UserRepository — only the methods auth service uses
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateLoginState(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
	TTL() time.Duration
}
