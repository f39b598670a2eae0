package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	adminSubject  = "admin"
	tokenIDLength = 21
)

var (
	// ErrInvalidToken is returned when the token is malformed or badly signed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// TokenManager issues and validates HS256-signed admin session tokens.
type TokenManager struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenManager(key string, ttl time.Duration, issuer string) *TokenManager {
	return &TokenManager{
		key:    []byte(key),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue returns a new signed token valid for the configured TTL.
func (m *TokenManager) Issue() (string, error) {
	const op = "auth.TokenManager.Issue"

	id, err := gonanoid.New(tokenIDLength)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate token id: %w", op, err)
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		Issuer:    m.issuer,
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	return signed, nil
}

// Validate checks signature, issuer, subject and expiry.
func (m *TokenManager) Validate(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.key, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithSubject(adminSubject),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}

	if !parsed.Valid {
		return ErrInvalidToken
	}

	return nil
}
