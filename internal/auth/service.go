package auth

import (
	"context"
	"log/slog"

	"clinic-api/internal/metrics"
	"clinic-api/internal/model"
)

// Service implements login, logout and password changes on top of Sessions.
type Service struct {
	users    IdentityStore
	sessions *Sessions
	metrics  metrics.AuthRecorder
}

func NewService(users IdentityStore, sessions *Sessions, rec metrics.AuthRecorder) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{users: users, sessions: sessions, metrics: rec}
}

func (s *Service) Sessions() *Sessions { return s.sessions }

// Login checks credentials and opens a session. Unknown email, inactive
// account and wrong password all come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Identity, string, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", model.Invalid("email and password are required")
	}

	u, err := s.users.FindIdentityByEmail(ctx, email)
	if err != nil {
		return nil, "", model.Storage("find identity by email", err)
	}
	if u == nil || !u.Active {
		burnCompare(password)
		s.metrics.LoginFailed()
		return nil, "", model.ErrInvalidCredentials
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.metrics.LoginFailed()
		slog.WarnContext(ctx, "login rejected", slog.String("user_id", u.ID))
		return nil, "", model.ErrInvalidCredentials
	}

	tok, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	s.metrics.LoginSucceeded()
	u.PasswordHash = ""
	return u, tok, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// ChangePassword replaces caller's password after re-checking the current one.
func (s *Service) ChangePassword(ctx context.Context, caller *model.Identity, current, next, confirm string) error {
	if caller == nil {
		return model.ErrUnauthenticated
	}
	if current == "" || next == "" || confirm == "" {
		return model.Invalid("all fields are required")
	}
	if next != confirm {
		return model.Invalid("new passwords do not match")
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	u, err := s.users.FindIdentityByID(ctx, caller.ID)
	if err != nil {
		return model.Storage("find identity", err)
	}
	if u == nil {
		return model.ErrNotFound
	}
	if !CheckPassword(u.PasswordHash, current) {
		return model.Invalid("current password is incorrect")
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdateIdentityPassword(ctx, u.ID, hash); err != nil {
		return model.Storage("update password", err)
	}
	return nil
}
