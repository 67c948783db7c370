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
	ErrRecoveryInvalid = errors.New("recovery link is invalid")
	ErrRecoveryExpired = errors.New("recovery link has expired")
)

// RecoveryService backs the password-reset flow. The emailed link carries
// the token fingerprint (token_hash), which is also what the store keeps;
// raw token material never touches the database.
type RecoveryService struct {
	Store   store.Store
	Mailer  mailx.Mailer
	BaseURL string
	TTL     time.Duration // recovery link validity, 1 hour in production
}

// Request issues a recovery link for the given address. Unknown addresses
// succeed silently so the endpoint cannot be used to enumerate accounts.
func (s *RecoveryService) Request(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	if email == "" {
		return ErrMissingParameters
	}

	member, err := s.Store.Members().FindMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("recovery requested for unknown address")
			return nil
		}
		log.Error("failed to look up member", slog.Any("error", err))
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate recovery token", slog.Any("error", err))
		return err
	}
	fingerprint := cryptox.FingerprintToken(token)

	now := time.Now().UTC()
	rt := domain.RecoveryToken{
		ID:        idx.New().String(),
		MemberID:  member.ID,
		TokenHash: fingerprint,
		ExpiresAt: now.Add(s.TTL),
		CreatedAt: now,
	}
	if err := s.Store.RecoveryTokens().CreateRecoveryToken(ctx, rt); err != nil {
		log.Error("failed to persist recovery token", slog.Any("error", err))
		return err
	}

	link := fmt.Sprintf("%s/auth/confirmer-reinitialisation?token_hash=%s&type=recovery", s.BaseURL, fingerprint)
	subject, body, err := recoveryEmail(link)
	if err != nil {
		return err
	}
	err = s.Mailer.Send(ctx, mailx.Message{
		To:       member.Email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      "password-recovery",
	})
	if err != nil {
		log.Error("recovery mail failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	log.Info("recovery mail dispatched", slog.String("member_id", member.ID))
	return nil
}

// Confirm validates a clicked recovery link without consuming it; the
// password-update form finalizes. Expired links are reported distinctly so
// the error page can say why.
func (s *RecoveryService) Confirm(ctx context.Context, tokenHash, linkType string) error {
	log := slogx.FromContext(ctx)

	if tokenHash == "" || linkType != "recovery" {
		return ErrRecoveryInvalid
	}

	rt, err := s.Store.RecoveryTokens().GetRecoveryTokenByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("recovery confirmation with unknown token hash")
			return ErrRecoveryInvalid
		}
		log.Error("failed to look up recovery token", slog.Any("error", err))
		return err
	}

	if rt.UsedAt != nil {
		return ErrRecoveryInvalid
	}
	if !rt.ExpiresAt.After(time.Now().UTC()) {
		return ErrRecoveryExpired
	}
	return nil
}

// Reset consumes the recovery token and writes the new password hash, both
// inside one transaction so a used link can never leave the password
// unchanged.
func (s *RecoveryService) Reset(ctx context.Context, tokenHash, password string) error {
	log := slogx.FromContext(ctx)

	if tokenHash == "" || password == "" {
		return ErrMissingParameters
	}

	rt, err := s.Store.RecoveryTokens().GetRecoveryTokenByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRecoveryInvalid
		}
		log.Error("failed to look up recovery token", slog.Any("error", err))
		return err
	}
	if rt.UsedAt != nil {
		return ErrRecoveryInvalid
	}
	if !rt.ExpiresAt.After(time.Now().UTC()) {
		return ErrRecoveryExpired
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Members().UpdatePasswordHash(ctx, rt.MemberID, passwordHash); err != nil {
			return err
		}
		return tx.RecoveryTokens().MarkRecoveryTokenUsed(ctx, rt.ID)
	})
	if err != nil {
		log.Error("failed to reset password",
			slog.String("member_id", rt.MemberID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("password reset completed", slog.String("member_id", rt.MemberID))
	return nil
}
