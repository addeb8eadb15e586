// Package account provisions staff identities. There is no self sign-up;
// accounts are created by an operator with a temporary password.
package account

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"clinic-api/internal/auth"
	"clinic-api/internal/model"
)

type Store interface {
	FindIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	CreateIdentity(ctx context.Context, u *model.Identity) error
}

type NewIdentity struct {
	Email     string
	Password  string
	Name      string
	Role      model.Role
	Specialty string
	Phone     string
}

func (in *NewIdentity) validate() error {
	in.Email = model.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Name == "" || in.Password == "" {
		return model.Invalid("email, name and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return model.Invalid("invalid email %q", in.Email)
	}
	if !in.Role.Valid() {
		return model.Invalid("role must be doctor or assistant")
	}
	return nil
}

// Create adds an active identity. A taken email is a validation error.
func Create(ctx context.Context, st Store, in NewIdentity) (*model.Identity, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := st.FindIdentityByEmail(ctx, in.Email)
	if err != nil {
		return nil, model.Storage("find identity by email", err)
	}
	if existing != nil {
		return nil, model.Invalid("email %s is already registered", in.Email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.Identity{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         in.Role,
		Specialty:    strings.TrimSpace(in.Specialty),
		Phone:        strings.TrimSpace(in.Phone),
		Active:       true,
	}
	if err := st.CreateIdentity(ctx, u); err != nil {
		return nil, model.Storage("create identity", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// Ensure creates the identity unless the email is already registered.
// It reports whether a new row was written.
func Ensure(ctx context.Context, st Store, in NewIdentity) (bool, error) {
	existing, err := st.FindIdentityByEmail(ctx, model.NormalizeEmail(in.Email))
	if err != nil {
		return false, model.Storage("find identity by email", err)
	}
	if existing != nil {
		return false, nil
	}
	if _, err := Create(ctx, st, in); err != nil {
		return false, err
	}
	return true, nil
}
