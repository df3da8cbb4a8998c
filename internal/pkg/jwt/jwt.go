// Package jwt issues and checks the HS256 session tokens handed to front-desk
// staff at login.
package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	issuer   = "propertydesk"
	audience = "front-desk"
	// clock skew tolerated between the API nodes
	leeway = 30 * time.Second
)

// Claims identify a staff member. Subject mirrors UserID so tokens read
// sensibly in generic JWT tooling.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwtlib.RegisteredClaims
}

type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Service) TTL() time.Duration { return s.ttl }

// GenerateToken signs a session for a staff member.
func (s *Service) GenerateToken(userID int64, role string) (string, error) {
	issued := s.now()
	session := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwtlib.ClaimStrings{audience},
			IssuedAt:  jwtlib.NewNumericDate(issued),
			ExpiresAt: jwtlib.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, session).SignedString(s.key)
}

// ValidateToken returns the claims of a well-formed, unexpired session.
// Every failure is reported as ErrInvalidToken.
func (s *Service) ValidateToken(raw string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(raw, &Claims{}, s.keyFunc,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithAudience(audience),
		jwtlib.WithLeeway(leeway),
		jwtlib.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	session, ok := parsed.Claims.(*Claims)
	if !ok || session.UserID == 0 || session.Subject != strconv.FormatInt(session.UserID, 10) {
		return nil, ErrInvalidToken
	}
	return session, nil
}

func (s *Service) keyFunc(*jwtlib.Token) (any, error) { return s.key, nil }
