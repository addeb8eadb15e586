// Package schedule turns human-facing day and time inputs into the exact
// instants used to book and filter appointments, and decides which doctor
// an appointment belongs to.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinic-api/internal/clock"
	"clinic-api/internal/model"
)

// Store is the data-access slice scheduling needs. Lookups return
// (nil, nil) when nothing matches.
type Store interface {
	FindFirstActiveDoctor(ctx context.Context) (*model.Identity, error)
	FindPatientByID(ctx context.Context, id string) (*model.Patient, error)
	FindAppointmentsInRange(ctx context.Context, start, end time.Time) ([]model.Appointment, error)
	FindAppointmentByID(ctx context.Context, id string) (*model.Appointment, error)
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
}

// DayRange is the inclusive [start, end] covering date in clinic time.
func DayRange(date string) (start, end time.Time, err error) {
	if start, err = clock.StartOfDay(date); err != nil {
		return
	}
	end, err = clock.EndOfDay(date)
	return
}

// zoneless datetime-local form value, read as clinic time
const localDateTimeLayout = "2006-01-02T15:04"

// ComposeInstant picks the booking instant. A pre-composed ISO timestamp
// wins; otherwise date plus time (default 09:00) in clinic time. A date
// longer than YYYY-MM-DD is taken as an ISO timestamp.
func ComposeInstant(date, tm, iso string) (time.Time, error) {
	date, iso = strings.TrimSpace(date), strings.TrimSpace(iso)
	if iso == "" && len(date) > len(clock.DateLayout) {
		iso = date
	}
	if iso != "" {
		if t, err := time.Parse(time.RFC3339, iso); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(localDateTimeLayout, iso, clock.Location); err == nil {
			return t, nil
		}
		return time.Time{}, &model.ValidationError{
			Msg: fmt.Sprintf("invalid datetime %q, want RFC 3339", iso),
			Err: model.ErrInvalidDate,
		}
	}
	if date == "" {
		return time.Time{}, model.Invalid("date is required")
	}
	if tm == "" {
		tm = clock.DefaultAppointmentTime
	}
	return clock.Compose(date, tm)
}

type Service struct {
	store Store
	newID func() string
}

func NewService(st Store) *Service {
	return &Service{store: st, newID: uuid.NewString}
}

// ResolveAttending returns the doctor an appointment created by caller is
// attached to: the caller when they are a doctor, otherwise the first
// active doctor. No placeholder doctor is ever created.
func (s *Service) ResolveAttending(ctx context.Context, caller *model.Identity) (*model.Identity, error) {
	if caller == nil {
		return nil, model.ErrUnauthenticated
	}
	if caller.Role == model.RoleDoctor {
		return caller, nil
	}
	doc, err := s.store.FindFirstActiveDoctor(ctx)
	if err != nil {
		return nil, model.Storage("find first active doctor", err)
	}
	if doc == nil {
		return nil, model.ErrNoAttendingAvailable
	}
	return doc, nil
}

// ListDay returns the appointments on date (clinic time), earliest first.
// An empty date means today.
func (s *Service) ListDay(ctx context.Context, date string) ([]model.Appointment, error) {
	if date == "" {
		date = clock.Today()
	}
	start, end, err := DayRange(date)
	if err != nil {
		return nil, err
	}
	apts, err := s.store.FindAppointmentsInRange(ctx, start, end)
	if err != nil {
		return nil, model.Storage("find appointments", err)
	}
	return apts, nil
}

type NewAppointment struct {
	PatientID string
	Date      string
	Time      string
	ISO       string
	Reason    string
	Notes     string
}

func (s *Service) Create(ctx context.Context, caller *model.Identity, in NewAppointment) (*model.Appointment, error) {
	in.PatientID = strings.TrimSpace(in.PatientID)
	in.Reason = strings.TrimSpace(in.Reason)
	if in.PatientID == "" || in.Reason == "" {
		return nil, model.Invalid("patientId and reason are required")
	}
	at, err := ComposeInstant(in.Date, in.Time, in.ISO)
	if err != nil {
		return nil, err
	}

	patient, err := s.patient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	doc, err := s.ResolveAttending(ctx, caller)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		ID:          s.newID(),
		ScheduledAt: at,
		PatientID:   patient.ID,
		DoctorID:    doc.ID,
		Reason:      in.Reason,
		Notes:       strings.TrimSpace(in.Notes),
		Status:      model.StatusScheduled,
		CreatedBy:   caller.ID,
	}
	if err := s.store.InsertAppointment(ctx, apt); err != nil {
		return nil, model.Storage("insert appointment", err)
	}
	apt.Patient = patient
	return apt, nil
}

// Changes is a partial update; zero fields are left alone.
type Changes struct {
	PatientID string
	Date      string
	Time      string
	ISO       string
	Reason    string
	Notes     *string
	Status    model.AppointmentStatus
}

func (s *Service) Update(ctx context.Context, id string, ch Changes) (*model.Appointment, error) {
	apt, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if ch.Date != "" || ch.ISO != "" {
		at, err := ComposeInstant(ch.Date, ch.Time, ch.ISO)
		if err != nil {
			return nil, err
		}
		apt.ScheduledAt = at
	} else if ch.Time != "" {
		// keep the day, move the hour
		at, err := clock.Compose(clock.DateString(apt.ScheduledAt), ch.Time)
		if err != nil {
			return nil, err
		}
		apt.ScheduledAt = at
	}
	if pid := strings.TrimSpace(ch.PatientID); pid != "" && pid != apt.PatientID {
		p, err := s.patient(ctx, pid)
		if err != nil {
			return nil, err
		}
		apt.PatientID, apt.Patient = p.ID, p
	}
	if r := strings.TrimSpace(ch.Reason); r != "" {
		apt.Reason = r
	}
	if ch.Notes != nil {
		apt.Notes = strings.TrimSpace(*ch.Notes)
	}
	if ch.Status != "" {
		if !ch.Status.Valid() {
			return nil, model.Invalid("invalid status %q", ch.Status)
		}
		apt.Status = ch.Status
	}

	if err := s.store.UpdateAppointment(ctx, apt); err != nil {
		return nil, model.Storage("update appointment", err)
	}
	return apt, nil
}

// Cancel marks the appointment cancelled; the row is kept for history.
func (s *Service) Cancel(ctx context.Context, id string) error {
	_, err := s.Update(ctx, id, Changes{Status: model.StatusCancelled})
	return err
}

func (s *Service) find(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, model.Invalid("id required")
	}
	apt, err := s.store.FindAppointmentByID(ctx, id)
	if err != nil {
		return nil, model.Storage("find appointment", err)
	}
	if apt == nil {
		return nil, fmt.Errorf("appointment %s: %w", id, model.ErrNotFound)
	}
	return apt, nil
}

func (s *Service) patient(ctx context.Context, id string) (*model.Patient, error) {
	p, err := s.store.FindPatientByID(ctx, id)
	if err != nil {
		return nil, model.Storage("find patient", err)
	}
	if p == nil {
		return nil, fmt.Errorf("patient %s: %w", id, model.ErrNotFound)
	}
	return p, nil
}
