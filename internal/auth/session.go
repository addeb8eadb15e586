package auth

import (
	"context"
	"time"

	"clinic-api/internal/clock"
	"clinic-api/internal/metrics"
	"clinic-api/internal/model"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

// IdentityStore is the slice of the data-access layer auth needs. Lookups
// return (nil, nil) when nothing matches.
type IdentityStore interface {
	FindIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	FindIdentityByID(ctx context.Context, id string) (*model.Identity, error)
	UpdateIdentityPassword(ctx context.Context, id, hash string) error
}

// SessionStore persists sessions keyed by token.
type SessionStore interface {
	InsertSession(ctx context.Context, identityID, token string, expiresAt time.Time) (*model.Session, error)
	FindSessionByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type SessionConfig struct {
	TTL     time.Duration
	Now     func() time.Time
	Metrics metrics.AuthRecorder
}

// Sessions manages the session lifecycle against the store.
type Sessions struct {
	store   SessionStore
	users   IdentityStore
	ttl     time.Duration
	now     func() time.Time
	metrics metrics.AuthRecorder
}

func NewSessions(store SessionStore, users IdentityStore, cfg SessionConfig) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = clock.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	return &Sessions{store: store, users: users, ttl: cfg.TTL, now: cfg.Now, metrics: cfg.Metrics}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Create issues a new session for identityID and returns its token.
func (s *Sessions) Create(ctx context.Context, identityID string) (string, error) {
	now := s.now()
	tok := NewSessionToken(now)
	if _, err := s.store.InsertSession(ctx, identityID, tok, now.Add(s.ttl)); err != nil {
		return "", model.Storage("insert session", err)
	}
	s.metrics.SessionCreated()
	return tok, nil
}

// Validate resolves token to its identity. Unknown or expired tokens yield
// (nil, nil); expired rows are deleted on the way out.
func (s *Sessions) Validate(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.store.FindSessionByToken(ctx, token)
	if err != nil {
		return nil, model.Storage("find session", err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(s.now()) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			return nil, model.Storage("delete expired session", err)
		}
		s.metrics.SessionExpired()
		return nil, nil
	}

	u, err := s.users.FindIdentityByID(ctx, sess.IdentityID)
	if err != nil {
		return nil, model.Storage("find identity", err)
	}
	// deactivated accounts lose their sessions
	if u == nil || !u.Active {
		return nil, nil
	}
	u.PasswordHash = ""
	return u, nil
}

// Destroy removes the session for token. Missing sessions are not an error.
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return model.Storage("delete session", err)
	}
	s.metrics.SessionDestroyed()
	return nil
}
