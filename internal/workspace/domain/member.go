package domain

import "time"

// Member is an accepted user of a family workspace. The ID is stable across
// the auth identity and the business record.
type Member struct {
	ID           string
	FamilyID     string
	Email        string
	FirstName    string
	LastName     string
	Company      string
	Role         Role
	PasswordHash string // argon2id encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
