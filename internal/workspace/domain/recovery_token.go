package domain

import "time"

// RecoveryToken backs the password-reset link flow. Only the fingerprint of
// the opaque token is stored; the raw value lives in the emailed link.
type RecoveryToken struct {
	ID        string
	MemberID  string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still complete a reset at t.
func (rt RecoveryToken) Usable(t time.Time) bool {
	return rt.UsedAt == nil && rt.ExpiresAt.After(t)
}
