package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"propertydesk/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

// Service authenticates back-office staff.
type Service struct {
	users UserRepository
	jwt   jwtService
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(users UserRepository, jwt jwtService, log logrus.FieldLogger) *Service {
	return &Service{users: users, jwt: jwt, log: logger.OrDiscard(log), now: time.Now}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if user.Locked(now) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		attempts := user.FailedLoginAttempts + 1
		var until *time.Time
		if attempts >= maxFailedLoginAttempts {
			t := now.Add(lockoutDuration)
			until = &t
		}
		if err := s.users.UpdateLoginState(ctx, user.ID, attempts, until); err != nil {
			return nil, err
		}
		if until != nil {
			s.log.WithFields(logrus.Fields{"user_id": user.ID, "locked_until": *until}).Warn("account locked after failed logins")
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			return nil, err
		}
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("staff login")
	return &LoginResponse{
		User:      toPublic(user),
		Token:     token,
		ExpiresIn: int64(s.jwt.TTL().Seconds()),
	}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*UserPublic, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	pub := toPublic(user)
	return &pub, nil
}
