package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/model"
)

func TestIdentityEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.CreateIdentity(ctx, &model.Identity{Email: "Dr.House@Clinic.MX", Role: model.RoleDoctor, Active: true}))
	err := st.CreateIdentity(ctx, &model.Identity{Email: "dr.house@clinic.mx", Role: model.RoleAssistant})
	assert.ErrorIs(t, err, ErrDuplicate)

	u, err := st.FindIdentityByEmail(ctx, "DR.HOUSE@clinic.mx")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "dr.house@clinic.mx", u.Email)
}

func TestSpecialtyClearedForAssistants(t *testing.T) {
	ctx := context.Background()
	st := New()
	u := &model.Identity{Email: "a@b.com", Role: model.RoleAssistant, Specialty: "cardiology"}
	require.NoError(t, st.CreateIdentity(ctx, u))

	got, err := st.FindIdentityByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Specialty)
}

func TestFirstActiveDoctorFollowsCreationOrder(t *testing.T) {
	ctx := context.Background()
	st := New()

	doc, err := st.FindFirstActiveDoctor(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)

	first := &model.Identity{Email: "one@clinic.mx", Role: model.RoleDoctor, Active: true}
	second := &model.Identity{Email: "two@clinic.mx", Role: model.RoleDoctor, Active: true}
	require.NoError(t, st.CreateIdentity(ctx, &model.Identity{Email: "asst@clinic.mx", Role: model.RoleAssistant, Active: true}))
	require.NoError(t, st.CreateIdentity(ctx, first))
	require.NoError(t, st.CreateIdentity(ctx, second))

	doc, err = st.FindFirstActiveDoctor(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, doc.ID)

	st.SetActive(first.ID, false)
	doc, err = st.FindFirstActiveDoctor(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, doc.ID)
}

func TestDeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	st := New()
	now := time.Now()

	_, err := st.InsertSession(ctx, "u1", "old", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = st.InsertSession(ctx, "u1", "edge", now)
	require.NoError(t, err)
	_, err = st.InsertSession(ctx, "u1", "fresh", now.Add(time.Hour))
	require.NoError(t, err)

	n, err := st.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	sess, _ := st.FindSessionByToken(ctx, "fresh")
	assert.NotNil(t, sess)
	sess, _ = st.FindSessionByToken(ctx, "edge")
	assert.Nil(t, sess)
}

func TestAppointmentsInRangeInclusiveAndSorted(t *testing.T) {
	ctx := context.Background()
	st := New()
	p := &model.Patient{FirstName: "Ana", LastName: "López"}
	require.NoError(t, st.CreatePatient(ctx, p))

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{base.Add(2 * time.Hour), base, base.Add(time.Hour), base.Add(5 * time.Hour)} {
		require.NoError(t, st.InsertAppointment(ctx, &model.Appointment{
			ID: string(rune('a' + i)), ScheduledAt: at, PatientID: p.ID,
		}))
	}

	got, err := st.FindAppointmentsInRange(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].ScheduledAt.Equal(base))
	assert.True(t, got[2].ScheduledAt.Equal(base.Add(2*time.Hour)))
	require.NotNil(t, got[0].Patient)
	assert.Equal(t, "Ana", got[0].Patient.FirstName)
}

func TestUpdateMissingAppointmentIsNoop(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.UpdateAppointment(ctx, &model.Appointment{ID: "ghost", Reason: "x"}))

	got, err := st.FindAppointmentByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}
