package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/pkg/cryptox"
	"github.com/lettrehq/lettre/pkg/idx"
	"github.com/lettrehq/lettre/pkg/mailx"
	"github.com/lettrehq/lettre/pkg/slogx"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found or expired")
	ErrAlreadyInvited     = errors.New("a pending invitation already exists for this address")
	ErrAlreadyMember      = errors.New("this address already belongs to a member")
)

// InvitationService creates pending invitations and converts them into
// members on acceptance. Only the fingerprint of the invite token is stored;
// the raw token lives in the emailed link.
type InvitationService struct {
	Store   store.Store
	Mailer  mailx.Mailer
	BaseURL string
	TTL     time.Duration // invitation validity, 3 days in production
}

// Invite creates an invitation for (family, email) with the given role and
// dispatches the invite mail. The insert and the mail are independent calls;
// a mail failure leaves the invitation in place for a later resend.
func (s *InvitationService) Invite(
	ctx context.Context,
	familyID, email string,
	role domain.Role,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	if familyID == "" || email == "" {
		return domain.Invitation{}, ErrMissingParameters
	}
	if !role.Valid() {
		return domain.Invitation{}, ErrInvalidRole
	}

	_, err := s.Store.Members().GetMemberByEmail(ctx, familyID, email)
	if err == nil {
		return domain.Invitation{}, ErrAlreadyMember
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check member existence", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	pending, err := s.Store.Invitations().HasPendingInvitation(ctx, familyID, email)
	if err != nil {
		log.Error("failed to check pending invitations", slog.Any("error", err))
		return domain.Invitation{}, err
	}
	if pending {
		return domain.Invitation{}, ErrAlreadyInvited
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:        idx.New().String(),
		FamilyID:  familyID,
		Email:     email,
		Role:      role,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(s.TTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to create invitation",
			slog.String("family_id", familyID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("family_id", familyID),
		slog.String("role", role.String()),
	)

	link := fmt.Sprintf("%s/equipe/invitation?token=%s", s.BaseURL, token)
	subject, body, err := invitationEmail(role.String(), link)
	if err != nil {
		return inv, err
	}
	err = s.Mailer.Send(ctx, mailx.Message{
		To:       email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      "team-invitation",
	})
	if err != nil {
		log.Error("invitation mail failed", slog.Any("error", err))
		return inv, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return inv, nil
}

// Accept redeems an invite token into a member account. The member creation
// and the invitation acceptance stamp happen atomically so a crash cannot
// leave an accepted invitation without its member.
func (s *InvitationService) Accept(
	ctx context.Context,
	token, password, firstName, lastName, company string,
) (domain.Member, error) {
	log := slogx.FromContext(ctx)

	if token == "" || password == "" {
		return domain.Member{}, ErrMissingParameters
	}

	fingerprint := cryptox.FingerprintToken(token)
	inv, err := s.Store.Invitations().GetPendingInvitationByTokenHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("acceptance attempted with invalid or expired token")
			return domain.Member{}, ErrInvitationNotFound
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Member{}, err
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Member{}, err
	}

	now := time.Now().UTC()
	member := domain.Member{
		ID:           idx.New().String(),
		FamilyID:     inv.FamilyID,
		Email:        inv.Email,
		FirstName:    firstName,
		LastName:     lastName,
		Company:      company,
		Role:         inv.Role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Members().CreateMember(ctx, member); err != nil {
			return err
		}
		return tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, member.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Member{}, ErrAlreadyMember
		}
		log.Error("failed to accept invitation",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.Member{}, err
	}

	log.Info("invitation accepted",
		slog.String("invitation_id", inv.ID),
		slog.String("member_id", member.ID),
		slog.String("family_id", inv.FamilyID),
		slog.String("role", inv.Role.String()),
	)
	return member, nil
}

// ListPending returns the family's open invitations, newest first.
func (s *InvitationService) ListPending(ctx context.Context, familyID string) ([]domain.Invitation, error) {
	return s.Store.Invitations().ListPendingInvitations(ctx, familyID)
}
