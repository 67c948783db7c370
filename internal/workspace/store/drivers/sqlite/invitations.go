package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, family_id, email, role, token_hash, expires_at,
	accepted_at, accepted_by, created_at, updated_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.FamilyID, inv.Email, string(inv.Role), inv.TokenHash, inv.ExpiresAt,
		mapOptionalTime(inv.AcceptedAt), mapStringNull(inv.AcceptedBy),
		inv.CreatedAt, inv.UpdatedAt,
	)
	return mapErr(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE id = ?`,
		id,
	)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetPendingInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE token_hash = ? AND accepted_at IS NULL AND expires_at > ?`,
		hash, time.Now().UTC(),
	)
	return scanInvitation(row)
}

func (r *invitationsRepo) HasPendingInvitation(ctx context.Context, familyID, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM invitations
		WHERE family_id = ? AND email = ? AND accepted_at IS NULL AND expires_at > ?`,
		familyID, email, time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		return false, mapErr(err)
	}
	return count > 0, nil
}

func (r *invitationsRepo) ListPendingInvitations(ctx context.Context, familyID string) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE family_id = ? AND accepted_at IS NULL AND expires_at > ?
		ORDER BY created_at DESC`,
		familyID, time.Now().UTC(),
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, mapErr(rows.Err())
}

func (r *invitationsRepo) UpdateInvitationRole(ctx context.Context, id string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET role = ?, updated_at = ?
		WHERE id = ?`,
		string(role), time.Now().UTC(), id,
	)
	return mapErr(err)
}

func (r *invitationsRepo) MarkInvitationAccepted(ctx context.Context, id, memberID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET accepted_at = ?, accepted_by = ?, updated_at = ?
		WHERE id = ?`,
		now, memberID, now, id,
	)
	return mapErr(err)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM invitations
		WHERE accepted_at IS NULL AND expires_at < ?`,
		time.Now().UTC(),
	)
	return mapErr(err)
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		role       string
		acceptedAt sql.NullTime
		acceptedBy sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.FamilyID, &inv.Email, &role, &inv.TokenHash, &inv.ExpiresAt,
		&acceptedAt, &acceptedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapErr(err)
	}
	inv.Role = domain.Role(role)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	inv.AcceptedBy = mapNullString(acceptedBy)
	return inv, nil
}
