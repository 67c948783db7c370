package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/pkg/cryptox"
	"github.com/lettrehq/lettre/pkg/mailx"
	"github.com/stretchr/testify/require"
)

func newInvitationService(t *testing.T) (*InvitationService, *mailx.Recorder) {
	t.Helper()

	recorder := &mailx.Recorder{}
	svc := &InvitationService{
		Store:   newTestStore(t),
		Mailer:  recorder,
		BaseURL: "https://app.example.com",
		TTL:     72 * time.Hour,
	}
	return svc, recorder
}

// inviteTokenFromMail digs the raw invite token out of the recorded mail,
// the same way the invitee's mail client would.
func inviteTokenFromMail(t *testing.T, recorder *mailx.Recorder) string {
	t.Helper()

	sent := recorder.Sent()
	require.NotEmpty(t, sent)
	body := sent[len(sent)-1].BodyHTML

	marker := "/equipe/invitation?token="
	start := strings.Index(body, marker)
	require.Positive(t, start)
	rest := body[start+len(marker):]
	end := strings.IndexAny(rest, `"&`)
	require.Positive(t, end)
	return rest[:end]
}

func TestInvite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a pending invitation and mails the link", func(t *testing.T) {
		svc, recorder := newInvitationService(t)

		inv, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleEditor)
		require.NoError(t, err)
		require.Equal(t, domain.RoleEditor, inv.Role)
		require.NotEmpty(t, inv.TokenHash)

		token := inviteTokenFromMail(t, recorder)
		require.Equal(t, cryptox.FingerprintToken(token), inv.TokenHash)

		pending, err := svc.ListPending(ctx, "fam-1")
		require.NoError(t, err)
		require.Len(t, pending, 1)
	})

	t.Run("requires family, email and a valid role", func(t *testing.T) {
		svc, recorder := newInvitationService(t)

		_, err := svc.Invite(ctx, "", "dana@example.com", domain.RoleEditor)
		require.ErrorIs(t, err, ErrMissingParameters)
		_, err = svc.Invite(ctx, "fam-1", "", domain.RoleEditor)
		require.ErrorIs(t, err, ErrMissingParameters)
		_, err = svc.Invite(ctx, "fam-1", "dana@example.com", domain.Role("owner"))
		require.ErrorIs(t, err, ErrInvalidRole)
		require.Empty(t, recorder.Sent())
	})

	t.Run("rejects an address that already has a member", func(t *testing.T) {
		svc, _ := newInvitationService(t)
		seedMember(t, svc.Store, "fam-1", "dana@example.com", domain.RoleEditor)

		_, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleReadOnly)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("rejects a second pending invitation for the same address", func(t *testing.T) {
		svc, _ := newInvitationService(t)

		_, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleEditor)
		require.NoError(t, err)
		_, err = svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleReadOnly)
		require.ErrorIs(t, err, ErrAlreadyInvited)
	})

	t.Run("the same address may be invited by another family", func(t *testing.T) {
		svc, _ := newInvitationService(t)

		_, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleEditor)
		require.NoError(t, err)
		_, err = svc.Invite(ctx, "fam-2", "dana@example.com", domain.RoleReadOnly)
		require.NoError(t, err)
	})

	t.Run("keeps the invitation when the mail fails", func(t *testing.T) {
		svc, recorder := newInvitationService(t)
		recorder.Err = mailx.ErrSendFailed

		_, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleEditor)
		require.ErrorIs(t, err, ErrMailDelivery)

		pending, err := svc.ListPending(ctx, "fam-1")
		require.NoError(t, err)
		require.Len(t, pending, 1)
	})
}

func TestAccept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("converts the invitation into a member with the invited role", func(t *testing.T) {
		svc, recorder := newInvitationService(t)

		_, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleReadOnly)
		require.NoError(t, err)
		token := inviteTokenFromMail(t, recorder)

		member, err := svc.Accept(ctx, token, "s3cret-passphrase", "Dana", "Doe", "Acme")
		require.NoError(t, err)
		require.Equal(t, "fam-1", member.FamilyID)
		require.Equal(t, "dana@example.com", member.Email)
		require.Equal(t, domain.RoleReadOnly, member.Role)
		require.NoError(t, cryptox.VerifyPassword("s3cret-passphrase", member.PasswordHash))

		// The invitation is no longer pending.
		pending, err := svc.ListPending(ctx, "fam-1")
		require.NoError(t, err)
		require.Empty(t, pending)
	})

	t.Run("requires token and password", func(t *testing.T) {
		svc, _ := newInvitationService(t)

		_, err := svc.Accept(ctx, "", "pw", "", "", "")
		require.ErrorIs(t, err, ErrMissingParameters)
		_, err = svc.Accept(ctx, "tok", "", "", "", "")
		require.ErrorIs(t, err, ErrMissingParameters)
	})

	t.Run("an unknown token is not found", func(t *testing.T) {
		svc, _ := newInvitationService(t)

		_, err := svc.Accept(ctx, "never-issued", "pw", "", "", "")
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("an expired invitation is not found", func(t *testing.T) {
		svc, recorder := newInvitationService(t)
		svc.TTL = -time.Minute

		_, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleEditor)
		require.NoError(t, err)
		token := inviteTokenFromMail(t, recorder)

		_, err = svc.Accept(ctx, token, "pw", "", "", "")
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})

	t.Run("a second acceptance is not found", func(t *testing.T) {
		svc, recorder := newInvitationService(t)

		_, err := svc.Invite(ctx, "fam-1", "dana@example.com", domain.RoleEditor)
		require.NoError(t, err)
		token := inviteTokenFromMail(t, recorder)

		_, err = svc.Accept(ctx, token, "pw-one", "", "", "")
		require.NoError(t, err)
		_, err = svc.Accept(ctx, token, "pw-two", "", "", "")
		require.ErrorIs(t, err, ErrInvitationNotFound)
	})
}
