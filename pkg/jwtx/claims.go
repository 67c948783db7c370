package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("jwtx: token expired")
	ErrTokenInvalid = errors.New("jwtx: token invalid")
)

// Claims are the platform-issued access-token claims this service cares
// about: who the caller is, which family (tenant) they act for, and what
// they are allowed to do.
type Claims struct {
	jwt.RegisteredClaims

	FamilyID string   `json:"fam,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

// ValidateExpiry checks the exp claim against the current time.
func (c Claims) ValidateExpiry() error {
	if c.ExpiresAt == nil || c.ExpiresAt.Before(time.Now()) {
		return ErrTokenExpired
	}
	return nil
}

// HasScope reports whether the claims carry the given scope.
func (c Claims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
