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
	ErrMissingParameters = errors.New("missing required parameters")
	ErrMissingToken      = errors.New("missing confirmation token")
	ErrSenderNotFound    = errors.New("sender not found")
	ErrLinkInvalid       = errors.New("confirmation link is invalid or expired")
	ErrMailDelivery      = errors.New("failed to deliver email")
)

// SenderService drives the sender-address verification lifecycle: token
// issuance and dispatch, link verification, and explicit consumption.
type SenderService struct {
	Store    store.Store
	Mailer   mailx.Mailer
	BaseURL  string
	TokenTTL time.Duration // validity window of a confirmation token
}

// SendConfirmationParams carries one send-mail invocation. With Resend set,
// SenderID is required and a fresh token is minted; otherwise Token is taken
// as provided by the caller.
type SendConfirmationParams struct {
	FamilyID string
	Email    string
	Name     string
	Token    string
	Resend   bool
	SenderID string
}

// VerifiedSender is what the verification redirect hands to the success
// page: the still-live token plus the coordinates the consume call needs.
type VerifiedSender struct {
	Token    string
	Email    string
	FamilyID string
}

// CreateSender registers a sender address for a family, mints its first
// confirmation token and dispatches the confirmation mail. The insert and
// the mail dispatch are independent network calls: when the mail fails the
// sender stays persisted and the caller retries via resend.
func (s *SenderService) CreateSender(
	ctx context.Context,
	familyID, email, name string,
) (domain.Sender, error) {
	log := slogx.FromContext(ctx)

	if familyID == "" || email == "" {
		return domain.Sender{}, ErrMissingParameters
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate confirmation token", slog.Any("error", err))
		return domain.Sender{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.TokenTTL)
	sender := domain.Sender{
		ID:             idx.New().String(),
		FamilyID:       familyID,
		Email:          email,
		Name:           name,
		Status:         domain.SenderUnverified,
		Token:          &token,
		TokenCreatedAt: &now,
		TokenExpiresAt: &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Store.Senders().CreateSender(ctx, sender); err != nil {
		log.Error("failed to create sender",
			slog.String("family_id", familyID),
			slog.Any("error", err),
		)
		return domain.Sender{}, err
	}

	log.Info("sender created",
		slog.String("sender_id", sender.ID),
		slog.String("family_id", familyID),
	)

	if err := s.dispatchConfirmation(ctx, email, name, token); err != nil {
		return sender, err
	}
	return sender, nil
}

// SendConfirmation implements the send-mail contract. The resend path mints
// a fresh 24h token keyed by the (family, id, email) match before mailing;
// the plain path mails the caller-supplied token untouched.
func (s *SenderService) SendConfirmation(ctx context.Context, p SendConfirmationParams) (string, error) {
	log := slogx.FromContext(ctx)

	if p.Email == "" {
		return "", ErrMissingParameters
	}

	token := p.Token
	if p.Resend {
		if p.SenderID == "" {
			log.Warn("resend requested without sender id",
				slog.String("family_id", p.FamilyID),
			)
			return "", ErrMissingParameters
		}

		fresh, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			log.Error("failed to generate confirmation token", slog.Any("error", err))
			return "", err
		}

		now := time.Now().UTC()
		err = s.Store.Senders().RefreshToken(ctx, p.FamilyID, p.SenderID, p.Email, fresh, now, now.Add(s.TokenTTL))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("resend target not found",
					slog.String("sender_id", p.SenderID),
					slog.String("family_id", p.FamilyID),
				)
				return "", ErrSenderNotFound
			}
			log.Error("failed to persist fresh token", slog.Any("error", err))
			return "", err
		}
		token = fresh
	} else if token == "" {
		return "", ErrMissingToken
	}

	if err := s.dispatchConfirmation(ctx, p.Email, p.Name, token); err != nil {
		return "", err
	}

	log.Info("confirmation mail dispatched",
		slog.String("family_id", p.FamilyID),
		slog.Bool("resend", p.Resend),
	)
	return token, nil
}

// VerifyToken handles the link click. It never clears the token: the success
// page shows a confirmation first and consumption destroys it later.
// Re-verifying an already verified sender is a no-op.
func (s *SenderService) VerifyToken(ctx context.Context, token string) (VerifiedSender, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return VerifiedSender{}, ErrLinkInvalid
	}

	sender, err := s.Store.Senders().GetSenderByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("verification attempted with unknown token")
			return VerifiedSender{}, ErrLinkInvalid
		}
		log.Error("failed to look up token", slog.Any("error", err))
		return VerifiedSender{}, err
	}

	if !sender.TokenValidAt(time.Now().UTC()) {
		log.Warn("verification attempted with expired token",
			slog.String("sender_id", sender.ID),
		)
		return VerifiedSender{}, ErrLinkInvalid
	}

	if sender.Status != domain.SenderVerified {
		if err := s.Store.Senders().MarkVerified(ctx, sender.ID); err != nil {
			log.Error("failed to mark sender verified",
				slog.String("sender_id", sender.ID),
				slog.Any("error", err),
			)
			return VerifiedSender{}, err
		}
		log.Info("sender verified",
			slog.String("sender_id", sender.ID),
			slog.String("family_id", sender.FamilyID),
		)
	}

	return VerifiedSender{
		Token:    token,
		Email:    sender.Email,
		FamilyID: sender.FamilyID,
	}, nil
}

// ConsumeToken performs the final invalidation after user confirmation. The
// single predicate (token, email, family, verified) collapses double
// consumption and never-verified senders into the same not-found outcome;
// the distinction is deliberately not surfaced.
func (s *SenderService) ConsumeToken(ctx context.Context, token, email, familyID string) (int64, error) {
	log := slogx.FromContext(ctx)

	if token == "" || email == "" || familyID == "" {
		return 0, ErrMissingParameters
	}

	count, err := s.Store.Senders().ConsumeToken(ctx, token, email, familyID)
	if err != nil {
		log.Error("failed to consume token", slog.Any("error", err))
		return 0, err
	}
	if count == 0 {
		log.Warn("consume matched no rows", slog.String("family_id", familyID))
		return 0, ErrSenderNotFound
	}

	log.Info("sender token consumed",
		slog.String("family_id", familyID),
		slog.Int64("count", count),
	)
	return count, nil
}

// ListSenders returns the family's senders, newest first.
func (s *SenderService) ListSenders(ctx context.Context, familyID string) ([]domain.Sender, error) {
	return s.Store.Senders().ListSenders(ctx, familyID)
}

func (s *SenderService) dispatchConfirmation(ctx context.Context, email, name, token string) error {
	log := slogx.FromContext(ctx)

	link := fmt.Sprintf("%s/auth/confirmer-expediteur?token=%s", s.BaseURL, token)
	subject, body, err := senderConfirmationEmail(name, email, link)
	if err != nil {
		return err
	}

	err = s.Mailer.Send(ctx, mailx.Message{
		To:       email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      "sender-confirmation",
	})
	if err != nil {
		log.Error("confirmation mail failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}
