package store

import (
	"context"
	"errors"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories keep concerns tidy and
// let tests target one table family at a time.
type Store interface {
	Senders() Senders
	Members() Members
	Invitations() Invitations
	RecoveryTokens() RecoveryTokens

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Senders interface {
	// CreateSender inserts a new sender (id is provided by the app via ULID).
	CreateSender(ctx context.Context, s domain.Sender) error

	// GetSenderByID returns a sender by id within a family.
	GetSenderByID(ctx context.Context, familyID, id string) (domain.Sender, error)

	// GetSenderByToken returns the sender holding the exact raw token.
	GetSenderByToken(ctx context.Context, token string) (domain.Sender, error)

	// ListSenders returns all senders of a family, newest first.
	ListSenders(ctx context.Context, familyID string) ([]domain.Sender, error)

	// RefreshToken replaces the verification token of the sender matched by
	// (family, id, email) and stamps the issue/expiry times. Returns
	// ErrNotFound when no row matches the full predicate, which is how
	// tenant isolation surfaces here.
	RefreshToken(ctx context.Context, familyID, id, email, token string, createdAt, expiresAt time.Time) error

	// MarkVerified flips status to verified. The token column is left
	// untouched; consumption is a separate step.
	MarkVerified(ctx context.Context, id string) error

	// ConsumeToken nulls the token column constrained by the full
	// (token, email, family, status=verified) predicate and reports how
	// many rows changed. A zero count covers both double consumption and
	// never-verified senders; the predicate cannot tell them apart.
	ConsumeToken(ctx context.Context, token, email, familyID string) (int64, error)

	// ClearExpiredTokens nulls tokens of still-unverified senders whose
	// expiry has passed (housekeeping).
	ClearExpiredTokens(ctx context.Context) error
}

type Members interface {
	// CreateMember inserts a new member.
	CreateMember(ctx context.Context, m domain.Member) error

	// GetMemberByID returns a member by id.
	GetMemberByID(ctx context.Context, id string) (domain.Member, error)

	// GetMemberByEmail returns a member of a family by email.
	GetMemberByEmail(ctx context.Context, familyID, email string) (domain.Member, error)

	// FindMemberByEmail returns the oldest member holding the address,
	// regardless of family. Used by password recovery, which has no tenant
	// context yet.
	FindMemberByEmail(ctx context.Context, email string) (domain.Member, error)

	// UpdateMemberRole writes a new role and bumps updated_at.
	UpdateMemberRole(ctx context.Context, id string, role domain.Role) error

	// UpdatePasswordHash sets the argon2 password hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

type Invitations interface {
	// CreateInvitation writes a new invitation (token_hash is the SHA-256
	// fingerprint of the opaque invite token).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByID returns an invitation by id.
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetPendingInvitationByTokenHash returns an unaccepted, unexpired
	// invitation by fingerprint.
	GetPendingInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// HasPendingInvitation reports whether (family, email) already holds an
	// open invitation.
	HasPendingInvitation(ctx context.Context, familyID, email string) (bool, error)

	// ListPendingInvitations returns open invitations of a family, newest first.
	ListPendingInvitations(ctx context.Context, familyID string) ([]domain.Invitation, error)

	// UpdateInvitationRole writes a new role and bumps updated_at.
	UpdateInvitationRole(ctx context.Context, id string, role domain.Role) error

	// MarkInvitationAccepted stamps accepted_at/accepted_by (transaction-friendly).
	MarkInvitationAccepted(ctx context.Context, id, memberID string) error

	// DeleteExpiredInvitations is housekeeping.
	DeleteExpiredInvitations(ctx context.Context) error
}

type RecoveryTokens interface {
	// CreateRecoveryToken stores a fresh recovery token fingerprint.
	CreateRecoveryToken(ctx context.Context, rt domain.RecoveryToken) error

	// GetRecoveryTokenByHash returns the token record by fingerprint,
	// whatever its state; callers decide on expiry vs. used.
	GetRecoveryTokenByHash(ctx context.Context, hash string) (domain.RecoveryToken, error)

	// MarkRecoveryTokenUsed stamps used_at so the link cannot be replayed.
	MarkRecoveryTokenUsed(ctx context.Context, id string) error

	// DeleteExpiredRecoveryTokens is housekeeping.
	DeleteExpiredRecoveryTokens(ctx context.Context) error
}
