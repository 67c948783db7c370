package sqlite

import (
	"context"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
)

type membersRepo struct {
	db dbtx
}

const memberColumns = `id, family_id, email, first_name, last_name, company,
	role, password_hash, created_at, updated_at`

func (r *membersRepo) CreateMember(ctx context.Context, m domain.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.FamilyID, m.Email, m.FirstName, m.LastName, m.Company,
		string(m.Role), m.PasswordHash, m.CreatedAt, m.UpdatedAt,
	)
	return mapErr(err)
}

func (r *membersRepo) GetMemberByID(ctx context.Context, id string) (domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE id = ?`,
		id,
	)
	return scanMember(row)
}

func (r *membersRepo) GetMemberByEmail(ctx context.Context, familyID, email string) (domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE family_id = ? AND email = ?`,
		familyID, email,
	)
	return scanMember(row)
}

func (r *membersRepo) FindMemberByEmail(ctx context.Context, email string) (domain.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE email = ?
		ORDER BY created_at ASC
		LIMIT 1`,
		email,
	)
	return scanMember(row)
}

func (r *membersRepo) UpdateMemberRole(ctx context.Context, id string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET role = ?, updated_at = ?
		WHERE id = ?`,
		string(role), time.Now().UTC(), id,
	)
	return mapErr(err)
}

func (r *membersRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET password_hash = ?, updated_at = ?
		WHERE id = ?`,
		hash, time.Now().UTC(), id,
	)
	return mapErr(err)
}

func scanMember(row rowScanner) (domain.Member, error) {
	var (
		m    domain.Member
		role string
	)
	err := row.Scan(
		&m.ID, &m.FamilyID, &m.Email, &m.FirstName, &m.LastName, &m.Company,
		&role, &m.PasswordHash, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Member{}, mapErr(err)
	}
	m.Role = domain.Role(role)
	return m, nil
}
