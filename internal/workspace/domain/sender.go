package domain

import "time"

// SenderStatus is the verification state of a sender address.
type SenderStatus string

const (
	SenderUnverified SenderStatus = "unverified"
	SenderVerified   SenderStatus = "verified"
)

// Sender is an email address authorized as a "from" address for outbound
// campaign mail, scoped to a family (the owning account).
//
// The verification token is stored raw rather than fingerprinted: the
// confirmation redirect hands it back to the success page as a plain query
// parameter, so the stored value must be recoverable. Verification and
// consumption are two distinct steps on the same token: verification flips
// the status but leaves the token in place so the user can see a
// confirmation page before consumption nulls it for good.
type Sender struct {
	ID             string
	FamilyID       string
	Email          string
	Name           string
	Status         SenderStatus
	Token          *string    // nil once consumed or never issued
	TokenCreatedAt *time.Time // set when the token was (re)issued
	TokenExpiresAt *time.Time // verification fails past this instant
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TokenValidAt reports whether the sender carries a token that is usable for
// verification at the given instant.
func (s Sender) TokenValidAt(t time.Time) bool {
	if s.Token == nil || *s.Token == "" {
		return false
	}
	if s.TokenExpiresAt == nil {
		return false
	}
	return s.TokenExpiresAt.After(t)
}
