package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/model"
	"clinic-api/internal/store"
)

func setup(t *testing.T) *store.Store {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	st, err := store.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	require.NoError(t, st.Migrate(ctx))
	return st
}

func newIdentity(t *testing.T, st *store.Store, role model.Role) *model.Identity {
	t.Helper()
	u := &model.Identity{
		ID:           uuid.NewString(),
		Email:        "Test-" + uuid.NewString()[:8] + "@Clinic.mx",
		PasswordHash: "x",
		Name:         "Test",
		Role:         role,
		Specialty:    "general",
		Active:       true,
	}
	require.NoError(t, st.CreateIdentity(context.Background(), u))
	return u
}

func TestIdentityLookups(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := newIdentity(t, st, model.RoleAssistant)

	got, err := st.FindIdentityByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.Specialty)

	// case-insensitive uniqueness
	dup := *u
	dup.ID = uuid.NewString()
	assert.Error(t, st.CreateIdentity(ctx, &dup))

	missing, err := st.FindIdentityByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, st.UpdateIdentityPassword(ctx, u.ID, "y"))
	got, err = st.FindIdentityByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "y", got.PasswordHash)
}

func TestSessions(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	u := newIdentity(t, st, model.RoleDoctor)
	now := time.Now()

	tok := uuid.NewString()
	_, err := st.InsertSession(ctx, u.ID, tok, now.Add(-time.Second))
	require.NoError(t, err)
	live := uuid.NewString()
	_, err = st.InsertSession(ctx, u.ID, live, now.Add(time.Hour))
	require.NoError(t, err)

	sess, err := st.FindSessionByToken(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, sess.Expired(now))

	n, err := st.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	sess, err = st.FindSessionByToken(ctx, tok)
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, st.DeleteSession(ctx, live))
	require.NoError(t, st.DeleteSession(ctx, live))
}

func TestAppointmentsInRange(t *testing.T) {
	st := setup(t)
	ctx := context.Background()
	doc := newIdentity(t, st, model.RoleDoctor)
	p := &model.Patient{ID: uuid.NewString(), FirstName: "Luis", LastName: "Pérez"}
	require.NoError(t, st.CreatePatient(ctx, p))

	base := time.Date(1999, 1, 1, 6, 0, 0, 0, time.UTC)
	a := &model.Appointment{
		ID: uuid.NewString(), ScheduledAt: base.Add(2 * time.Hour), PatientID: p.ID, DoctorID: doc.ID,
		Reason: "control", Status: model.StatusScheduled, CreatedBy: doc.ID,
	}
	b := &model.Appointment{
		ID: uuid.NewString(), ScheduledAt: base.Add(time.Hour), PatientID: p.ID, DoctorID: doc.ID,
		Reason: "first", Status: model.StatusScheduled, CreatedBy: doc.ID,
	}
	require.NoError(t, st.InsertAppointment(ctx, a))
	require.NoError(t, st.InsertAppointment(ctx, b))

	all, err := st.FindAppointmentsInRange(ctx, base, base.Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	// earlier runs may have left rows on the same day
	var got []model.Appointment
	for _, x := range all {
		if x.PatientID == p.ID {
			got = append(got, x)
		}
	}
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, "Luis", got[1].Patient.FirstName)

	ghost := *a
	ghost.ID = uuid.NewString()
	assert.NoError(t, st.UpdateAppointment(ctx, &ghost))

	a.Status = model.StatusCancelled
	require.NoError(t, st.UpdateAppointment(ctx, a))
	one, err := st.FindAppointmentByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, one.Status)
}
