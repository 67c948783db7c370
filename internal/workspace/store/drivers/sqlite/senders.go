package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/internal/workspace/store"
)

type sendersRepo struct {
	db dbtx
}

const senderColumns = `id, family_id, email, name, status, verification_token,
	token_created_at, token_expires_at, created_at, updated_at`

func (r *sendersRepo) CreateSender(ctx context.Context, s domain.Sender) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO senders (`+senderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.FamilyID, s.Email, s.Name, string(s.Status),
		mapOptionalString(s.Token),
		mapOptionalTime(s.TokenCreatedAt),
		mapOptionalTime(s.TokenExpiresAt),
		s.CreatedAt, s.UpdatedAt,
	)
	return mapErr(err)
}

func (r *sendersRepo) GetSenderByID(ctx context.Context, familyID, id string) (domain.Sender, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+senderColumns+`
		FROM senders
		WHERE family_id = ? AND id = ?`,
		familyID, id,
	)
	return scanSender(row)
}

func (r *sendersRepo) GetSenderByToken(ctx context.Context, token string) (domain.Sender, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+senderColumns+`
		FROM senders
		WHERE verification_token = ?`,
		token,
	)
	return scanSender(row)
}

func (r *sendersRepo) ListSenders(ctx context.Context, familyID string) ([]domain.Sender, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+senderColumns+`
		FROM senders
		WHERE family_id = ?
		ORDER BY created_at DESC`,
		familyID,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []domain.Sender
	for rows.Next() {
		s, err := scanSender(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, mapErr(rows.Err())
}

func (r *sendersRepo) RefreshToken(
	ctx context.Context,
	familyID, id, email, token string,
	createdAt, expiresAt time.Time,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE senders
		SET verification_token = ?, token_created_at = ?, token_expires_at = ?, updated_at = ?
		WHERE family_id = ? AND id = ? AND email = ?`,
		token, createdAt, expiresAt, createdAt,
		familyID, id, email,
	)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sendersRepo) MarkVerified(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE senders
		SET status = ?, updated_at = ?
		WHERE id = ?`,
		string(domain.SenderVerified), time.Now().UTC(), id,
	)
	return mapErr(err)
}

func (r *sendersRepo) ConsumeToken(ctx context.Context, token, email, familyID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE senders
		SET verification_token = NULL, updated_at = ?
		WHERE verification_token = ? AND email = ? AND family_id = ? AND status = ?`,
		time.Now().UTC(), token, email, familyID, string(domain.SenderVerified),
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}

func (r *sendersRepo) ClearExpiredTokens(ctx context.Context) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE senders
		SET verification_token = NULL, token_created_at = NULL, token_expires_at = NULL, updated_at = ?
		WHERE status = ? AND verification_token IS NOT NULL AND token_expires_at < ?`,
		now, string(domain.SenderUnverified), now,
	)
	return mapErr(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSender(row rowScanner) (domain.Sender, error) {
	var (
		s         domain.Sender
		status    string
		token     sql.NullString
		createdAt sql.NullTime
		expiresAt sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.FamilyID, &s.Email, &s.Name, &status, &token,
		&createdAt, &expiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Sender{}, mapErr(err)
	}
	s.Status = domain.SenderStatus(status)
	s.Token = mapNullStringPtr(token)
	s.TokenCreatedAt = mapNullTimePtr(createdAt)
	s.TokenExpiresAt = mapNullTimePtr(expiresAt)
	return s, nil
}
