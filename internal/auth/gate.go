package auth

import (
	"context"
	"slices"

	"clinic-api/internal/model"
)

// Gate answers "who is calling" for protected entry points.
type Gate struct {
	sessions *Sessions
}

func NewGate(s *Sessions) *Gate { return &Gate{sessions: s} }

// IdentifyCaller resolves a session token. A missing, unknown or expired
// token is ErrUnauthenticated; store failures pass through.
func (g *Gate) IdentifyCaller(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, model.ErrUnauthenticated
	}
	id, err := g.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, model.ErrUnauthenticated
	}
	return id, nil
}

// RequireRole returns a *model.ForbiddenError unless id holds one of roles.
func RequireRole(id *model.Identity, roles ...model.Role) error {
	if id == nil {
		return model.ErrUnauthenticated
	}
	if slices.Contains(roles, id.Role) {
		return nil
	}
	return &model.ForbiddenError{Required: roles, Current: id.Role}
}

func RequireDoctor(id *model.Identity) error {
	return RequireRole(id, model.RoleDoctor)
}

func RequireDoctorOrAssistant(id *model.Identity) error {
	return RequireRole(id, model.RoleDoctor, model.RoleAssistant)
}
