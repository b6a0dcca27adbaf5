package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const SessionCookieName = "admin_session"

var ErrInvalidSession = errors.New("invalid or expired session")

// Principal is the authenticated staff member attached to a request.
type Principal struct {
	Username string
}

// Sessions issues and verifies signed session tokens (HS256).
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	if secret == "" {
		// Local fallback only; production must set a secret.
		secret = "set-admin-session-secret"
	}
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// CreateSession returns a signed token for the user and its expiry.
func (s *Sessions) CreateSession(username string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// VerifySession validates the token signature and expiry and returns the
// principal, or ErrInvalidSession.
func (s *Sessions) VerifySession(token string) (*Principal, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}

	return &Principal{Username: claims.Subject}, nil
}
