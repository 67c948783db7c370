package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/pkg/slogx"
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInvalidRole       = errors.New("invalid role")
)

// RecipientService is the role manager. It resolves an identifier against
// the two record kinds behind the team screen, members first and pending
// invitations as the fallback, and writes role changes back to whichever
// kind resolved. The two kinds never merge here; only invitation acceptance
// converts one into the other.
type RecipientService struct {
	Store store.Store
}

// Resolve maps an id onto the uniform Recipient view. Records belonging to
// another family resolve as not found.
func (s *RecipientService) Resolve(ctx context.Context, familyID, id string) (domain.Recipient, error) {
	log := slogx.FromContext(ctx)

	member, err := s.Store.Members().GetMemberByID(ctx, id)
	switch {
	case err == nil:
		if member.FamilyID != familyID {
			return domain.Recipient{}, ErrRecipientNotFound
		}
		return domain.Recipient{
			ID:    member.ID,
			Email: member.Email,
			Role:  member.Role,
			Kind:  domain.RecipientMember,
		}, nil
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to resolve member", slog.Any("error", err))
		return domain.Recipient{}, err
	}

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, id)
	switch {
	case err == nil:
		if inv.FamilyID != familyID {
			return domain.Recipient{}, ErrRecipientNotFound
		}
		return domain.Recipient{
			ID:    inv.ID,
			Email: inv.Email,
			Role:  inv.Role,
			Kind:  domain.RecipientInvitation,
		}, nil
	case errors.Is(err, store.ErrNotFound):
		return domain.Recipient{}, ErrRecipientNotFound
	default:
		log.Error("failed to resolve invitation", slog.Any("error", err))
		return domain.Recipient{}, err
	}
}

// UpdateRole writes the new role to the kind the id resolved to. The update
// targets exactly one record kind; a member update never creates or touches
// an invitation row and vice versa.
func (s *RecipientService) UpdateRole(ctx context.Context, familyID, id string, role domain.Role) (domain.Recipient, error) {
	log := slogx.FromContext(ctx)

	if !role.Valid() {
		return domain.Recipient{}, ErrInvalidRole
	}

	recipient, err := s.Resolve(ctx, familyID, id)
	if err != nil {
		return domain.Recipient{}, err
	}

	switch recipient.Kind {
	case domain.RecipientMember:
		err = s.Store.Members().UpdateMemberRole(ctx, recipient.ID, role)
	case domain.RecipientInvitation:
		err = s.Store.Invitations().UpdateInvitationRole(ctx, recipient.ID, role)
	}
	if err != nil {
		log.Error("failed to update role",
			slog.String("recipient_id", recipient.ID),
			slog.String("kind", string(recipient.Kind)),
			slog.Any("error", err),
		)
		return domain.Recipient{}, err
	}

	log.Info("role updated",
		slog.String("recipient_id", recipient.ID),
		slog.String("kind", string(recipient.Kind)),
		slog.String("role", role.String()),
	)

	recipient.Role = role
	return recipient, nil
}
