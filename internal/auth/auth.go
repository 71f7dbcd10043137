// Package auth gates the admin surface behind a shared password and
// short-lived JWTs.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadPassword  = errors.New("incorrect password")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Service issues and verifies admin tokens.
type Service struct {
	password []byte
	secret   []byte
	tokenTTL time.Duration
}

func NewService(password, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{
		password: []byte(password),
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
	}
}

// Login exchanges the admin password for a signed token.
func (s *Service) Login(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), s.password) != 1 {
		return "", ErrBadPassword
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry.
func (s *Service) Verify(tokenStr string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
