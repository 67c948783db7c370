package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a raw compact token and returns its claims.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HS256Verifier verifies tokens signed with a shared secret. The secret is
// owned by the hosted auth platform; this service only checks signatures.
type HS256Verifier struct {
	secret []byte
	issuer string
}

func NewHS256Verifier(secret, issuer string) (*HS256Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwtx: empty HS256 secret")
	}
	return &HS256Verifier{secret: []byte(secret), issuer: issuer}, nil
}

func (v *HS256Verifier) Verify(raw string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// HS256Signer mints tokens with a shared secret. Production tokens come from
// the auth platform; the signer exists for tests and local tooling.
type HS256Signer struct {
	secret []byte
	issuer string
}

func NewHS256Signer(secret, issuer string) *HS256Signer {
	return &HS256Signer{secret: []byte(secret), issuer: issuer}
}

func (s *HS256Signer) Sign(subject, familyID string, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		FamilyID: familyID,
		Scopes:   scopes,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
