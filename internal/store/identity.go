package store

import (
	"context"

	"clinic-api/internal/model"
)

const identityCols = `id, email, password_hash, name, role, specialty, phone, active, created_at, updated_at`

func scanIdentity(row interface{ Scan(...any) error }) (*model.Identity, error) {
	u := &model.Identity{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.Specialty, &u.Phone, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateIdentity inserts a provisioned account. Email uniqueness is
// enforced case-insensitively by the identities_email_key index.
func (s *Store) CreateIdentity(ctx context.Context, u *model.Identity) error {
	u.Normalize()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO identities (id, email, password_hash, name, role, specialty, phone, active)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Specialty, u.Phone, u.Active,
	)
	return err
}

func (s *Store) FindIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	return scanIdentity(s.pool.QueryRow(ctx,
		`SELECT `+identityCols+` FROM identities WHERE lower(email) = lower($1)`, email))
}

func (s *Store) FindIdentityByID(ctx context.Context, id string) (*model.Identity, error) {
	return scanIdentity(s.pool.QueryRow(ctx,
		`SELECT `+identityCols+` FROM identities WHERE id = $1`, id))
}

func (s *Store) FindFirstActiveDoctor(ctx context.Context) (*model.Identity, error) {
	return scanIdentity(s.pool.QueryRow(ctx,
		`SELECT `+identityCols+` FROM identities
		 WHERE role = 'doctor' AND active
		 ORDER BY created_at, id LIMIT 1`))
}

func (s *Store) UpdateIdentityPassword(ctx context.Context, id, hash string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE identities SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		hash, id,
	)
	return err
}
