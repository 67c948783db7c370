package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/pkg/cryptox"
	"github.com/lettrehq/lettre/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := NewHousekeepingService(st, slog.New(slog.DiscardHandler), time.Hour)

	now := time.Now().UTC()

	// An expired invitation and a live one.
	expiredInv := domain.Invitation{
		ID: idx.New().String(), FamilyID: "fam-1", Email: "old@example.com",
		Role: domain.RoleEditor, TokenHash: cryptox.FingerprintToken("a"),
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	liveInv := domain.Invitation{
		ID: idx.New().String(), FamilyID: "fam-1", Email: "new@example.com",
		Role: domain.RoleEditor, TokenHash: cryptox.FingerprintToken("b"),
		ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, st.Invitations().CreateInvitation(ctx, expiredInv))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, liveInv))

	// An expired recovery token for a member.
	member := seedMember(t, st, "fam-1", "alice@example.com", domain.RoleEditor)
	require.NoError(t, st.RecoveryTokens().CreateRecoveryToken(ctx, domain.RecoveryToken{
		ID: idx.New().String(), MemberID: member.ID,
		TokenHash: cryptox.FingerprintToken("c"),
		ExpiresAt: now.Add(-time.Minute), CreatedAt: now,
	}))

	// An unverified sender whose confirmation token lapsed, and a verified
	// one whose token must survive until it is consumed.
	lapsed := seedSender(t, st, "fam-1", "lapsed@example.com", "lapsed-tok", now.Add(-time.Minute))
	verified := seedSender(t, st, "fam-1", "ok@example.com", "ok-tok", now.Add(-time.Minute))
	require.NoError(t, st.Senders().MarkVerified(ctx, verified.ID))

	svc.cleanup()

	_, err := st.Invitations().GetInvitationByID(ctx, expiredInv.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Invitations().GetInvitationByID(ctx, liveInv.ID)
	require.NoError(t, err)

	_, err = st.RecoveryTokens().GetRecoveryTokenByHash(ctx, cryptox.FingerprintToken("c"))
	require.ErrorIs(t, err, store.ErrNotFound)

	gotLapsed, err := st.Senders().GetSenderByID(ctx, "fam-1", lapsed.ID)
	require.NoError(t, err)
	require.Nil(t, gotLapsed.Token)

	gotVerified, err := st.Senders().GetSenderByID(ctx, "fam-1", verified.ID)
	require.NoError(t, err)
	require.NotNil(t, gotVerified.Token)
}
