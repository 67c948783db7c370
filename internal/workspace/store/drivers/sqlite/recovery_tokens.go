package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
)

type recoveryTokensRepo struct {
	db dbtx
}

func (r *recoveryTokensRepo) CreateRecoveryToken(ctx context.Context, rt domain.RecoveryToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recovery_tokens (id, member_id, token_hash, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.MemberID, rt.TokenHash, rt.ExpiresAt,
		mapOptionalTime(rt.UsedAt), rt.CreatedAt,
	)
	return mapErr(err)
}

func (r *recoveryTokensRepo) GetRecoveryTokenByHash(ctx context.Context, hash string) (domain.RecoveryToken, error) {
	var (
		rt     domain.RecoveryToken
		usedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, member_id, token_hash, expires_at, used_at, created_at
		FROM recovery_tokens
		WHERE token_hash = ?`,
		hash,
	).Scan(&rt.ID, &rt.MemberID, &rt.TokenHash, &rt.ExpiresAt, &usedAt, &rt.CreatedAt)
	if err != nil {
		return domain.RecoveryToken{}, mapErr(err)
	}
	rt.UsedAt = mapNullTimePtr(usedAt)
	return rt, nil
}

func (r *recoveryTokensRepo) MarkRecoveryTokenUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE recovery_tokens
		SET used_at = ?
		WHERE id = ?`,
		time.Now().UTC(), id,
	)
	return mapErr(err)
}

func (r *recoveryTokensRepo) DeleteExpiredRecoveryTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM recovery_tokens
		WHERE expires_at < ? OR used_at IS NOT NULL`,
		time.Now().UTC(),
	)
	return mapErr(err)
}
