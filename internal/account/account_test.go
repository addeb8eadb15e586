package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/auth"
	"clinic-api/internal/model"
	"clinic-api/internal/store/memory"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	u, err := Create(ctx, st, NewIdentity{
		Email: " Maria.Asistente@Clinica.com ", Password: "temp123", Name: "María García",
		Role: model.RoleAssistant, Specialty: "should be dropped", Phone: "+52 81 9876 5432",
	})
	require.NoError(t, err)
	assert.Equal(t, "maria.asistente@clinica.com", u.Email)
	assert.Empty(t, u.PasswordHash)
	assert.Empty(t, u.Specialty)
	assert.True(t, u.Active)

	stored, err := st.FindIdentityByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "temp123"))

	_, err = Create(ctx, st, NewIdentity{Email: "MARIA.asistente@clinica.com", Password: "temp123", Name: "x", Role: model.RoleDoctor})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateValidation(t *testing.T) {
	st := memory.New()
	tests := []struct {
		name string
		in   NewIdentity
	}{
		{"missing name", NewIdentity{Email: "a@b.mx", Password: "secret1", Role: model.RoleDoctor}},
		{"bad email", NewIdentity{Email: "not-an-email", Password: "secret1", Name: "A", Role: model.RoleDoctor}},
		{"bad role", NewIdentity{Email: "a@b.mx", Password: "secret1", Name: "A", Role: "nurse"}},
		{"short password", NewIdentity{Email: "a@b.mx", Password: "12345", Name: "A", Role: model.RoleDoctor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(context.Background(), st, tt.in)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	in := NewIdentity{Email: "doc@clinic.mx", Password: "secret1", Name: "Dr. Soto", Role: model.RoleDoctor}

	created, err := Ensure(ctx, st, in)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = Ensure(ctx, st, in)
	require.NoError(t, err)
	assert.False(t, created)
}
