package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/model"
	"clinic-api/internal/store/memory"
)

type fixture struct {
	store    *memory.Store
	sessions *Sessions
	svc      *Service
	gate     *Gate
	now      time.Time
	doctor   *model.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	f.sessions = NewSessions(f.store, f.store, SessionConfig{Now: func() time.Time { return f.now }})
	f.svc = NewService(f.store, f.sessions, nil)
	f.gate = NewGate(f.sessions)

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	f.doctor = &model.Identity{
		Email: "A@B.com", PasswordHash: hash, Name: "Dra. Ruiz",
		Role: model.RoleDoctor, Specialty: "pediatría", Active: true,
	}
	require.NoError(t, f.store.CreateIdentity(context.Background(), f.doctor))
	return f
}

func TestCreateThenValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.sessions.Create(ctx, f.doctor.ID)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	sess, err := f.store.FindSessionByToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(7*24*time.Hour), sess.ExpiresAt)

	id, err := f.sessions.Validate(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, f.doctor.ID, id.ID)
	assert.Equal(t, "a@b.com", id.Email)
	assert.Equal(t, model.RoleDoctor, id.Role)
	assert.Equal(t, "pediatría", id.Specialty)
	assert.Empty(t, id.PasswordHash)
}

func TestValidateAfterDestroy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.sessions.Create(ctx, f.doctor.ID)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Destroy(ctx, tok))

	id, err := f.sessions.Validate(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, id)

	// idempotent
	require.NoError(t, f.sessions.Destroy(ctx, tok))
	require.NoError(t, f.sessions.Destroy(ctx, "never-issued"))
}

func TestExpiredSessionIsPurged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.sessions.Create(ctx, f.doctor.ID)
	require.NoError(t, err)

	f.now = f.now.Add(7 * 24 * time.Hour) // expiresAt == now counts as expired
	id, err := f.sessions.Validate(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, id)

	sess, err := f.store.FindSessionByToken(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, sess, "expired row should be deleted")
}

func TestValidateUnknownToken(t *testing.T) {
	f := newFixture(t)
	id, err := f.sessions.Validate(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestValidateDeactivatedIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, err := f.sessions.Create(ctx, f.doctor.ID)
	require.NoError(t, err)

	f.store.SetActive(f.doctor.ID, false)
	id, err := f.sessions.Validate(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, id)
}

type brokenStore struct{ SessionStore }

var errDown = errors.New("connection refused")

func (brokenStore) FindSessionByToken(context.Context, string) (*model.Session, error) {
	return nil, errDown
}

func (brokenStore) InsertSession(context.Context, string, string, time.Time) (*model.Session, error) {
	return nil, errDown
}

func TestStorageFailuresPropagate(t *testing.T) {
	st := memory.New()
	s := NewSessions(brokenStore{}, st, SessionConfig{})
	ctx := context.Background()

	_, err := s.Create(ctx, "u1")
	assert.ErrorIs(t, err, model.ErrStorageFailure)
	assert.ErrorIs(t, err, errDown)

	_, err = s.Validate(ctx, "tok")
	assert.ErrorIs(t, err, model.ErrStorageFailure)

	_, err = NewGate(s).IdentifyCaller(ctx, "tok")
	assert.ErrorIs(t, err, model.ErrStorageFailure)
}
