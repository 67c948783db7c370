package domain

// RecipientKind tags which record backs a Recipient view.
type RecipientKind string

const (
	RecipientMember     RecipientKind = "member"
	RecipientInvitation RecipientKind = "invitation"
)

// Recipient is the uniform view over the two record kinds the role manager
// operates on: an active Member or a pending Invitation. It is resolved once
// and carried through, so role updates know the concrete target without
// re-querying.
type Recipient struct {
	ID    string
	Email string
	Role  Role
	Kind  RecipientKind
}
