package store

import (
	"context"
	"time"

	"clinic-api/internal/model"
)

const appointmentSelect = `SELECT a.id, a.scheduled_at, a.patient_id, a.doctor_id, a.reason, a.notes,
        a.status, a.created_by, a.created_at, a.updated_at,
        p.first_name, p.last_name, p.phone
 FROM appointments a
 JOIN patients p ON p.id = a.patient_id`

func scanAppointment(row interface{ Scan(...any) error }) (*model.Appointment, error) {
	a := &model.Appointment{Patient: &model.Patient{}}
	err := row.Scan(
		&a.ID, &a.ScheduledAt, &a.PatientID, &a.DoctorID, &a.Reason, &a.Notes,
		&a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
		&a.Patient.FirstName, &a.Patient.LastName, &a.Patient.Phone,
	)
	if err != nil {
		return nil, err
	}
	a.Patient.ID = a.PatientID
	return a, nil
}

func (s *Store) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, scheduled_at, patient_id, doctor_id, reason, notes, status, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at, updated_at`,
		a.ID, a.ScheduledAt, a.PatientID, a.DoctorID, a.Reason, a.Notes, a.Status, a.CreatedBy,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// FindAppointmentsInRange returns appointments with start <= scheduled_at <= end,
// earliest first.
func (s *Store) FindAppointmentsInRange(ctx context.Context, start, end time.Time) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		appointmentSelect+`
		 WHERE a.scheduled_at >= $1 AND a.scheduled_at <= $2
		 ORDER BY a.scheduled_at`, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) FindAppointmentByID(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if noRows(err) {
		return nil, nil
	}
	return a, err
}

// UpdateAppointment writes a back. A missing row is a no-op, as in the
// memory store; callers look the appointment up first.
func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE appointments
		 SET scheduled_at=$1, patient_id=$2, reason=$3, notes=$4, status=$5, updated_at=NOW()
		 WHERE id=$6
		 RETURNING updated_at`,
		a.ScheduledAt, a.PatientID, a.Reason, a.Notes, a.Status, a.ID,
	).Scan(&a.UpdatedAt)
	if noRows(err) {
		return nil
	}
	return err
}
