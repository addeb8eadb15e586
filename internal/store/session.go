package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"clinic-api/internal/model"
)

func (s *Store) InsertSession(ctx context.Context, identityID, token string, expiresAt time.Time) (*model.Session, error) {
	sess := &model.Session{
		ID:         uuid.New().String(),
		IdentityID: identityID,
		Token:      token,
		ExpiresAt:  expiresAt,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, identity_id, token, expires_at) VALUES ($1,$2,$3,$4)
		 RETURNING created_at`,
		sess.ID, identityID, token, expiresAt,
	).Scan(&sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// FindSessionByToken returns the session regardless of expiry; the caller
// decides what an expired row means.
func (s *Store) FindSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	sess := &model.Session{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, identity_id, token, expires_at, created_at
		 FROM sessions WHERE token = $1`, token,
	).Scan(&sess.ID, &sess.IdentityID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpiredSessions purges every session that expired at or before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
