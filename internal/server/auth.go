package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for a token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// IssueToken signs an HS256 token whose subject is employee.
func IssueToken(employee string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if employee == "" {
		return "", errors.New("employee is required")
	}
	if len(secret) == 0 {
		return "", errors.New("token secret is not configured")
	}
	claims := jwt.RegisteredClaims{
		Subject:  employee,
		IssuedAt: jwt.NewNumericDate(now),
		Issuer:   "timesheet",
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies token and returns its subject.
func ParseToken(token string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
