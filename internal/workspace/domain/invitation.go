package domain

import "time"

// Invitation is a pending, time-limited offer for an email address to join a
// family with a given role. It exists only until accepted or expired;
// acceptance converts it into a Member.
type Invitation struct {
	ID         string
	FamilyID   string
	Email      string
	Role       Role
	TokenHash  string // SHA-256 fingerprint of the opaque invite token
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	AcceptedBy string // member ID once accepted, empty otherwise
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Pending reports whether the invitation is still open at the given instant.
func (i Invitation) Pending(t time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.After(t)
}
