// Package memory is an in-process implementation of the data-access layer,
// used for local development and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinic-api/internal/model"
)

var ErrDuplicate = errors.New("duplicate key")

// Store keeps sessions keyed by token and remembers identity creation
// order so the first-doctor fallback is deterministic.
type Store struct {
	mu           sync.RWMutex
	identities   map[string]model.Identity
	order        []string
	sessions     map[string]model.Session
	patients     map[string]model.Patient
	appointments map[string]model.Appointment
	now          func() time.Time
}

func New() *Store {
	return &Store{
		identities:   make(map[string]model.Identity),
		sessions:     make(map[string]model.Session),
		patients:     make(map[string]model.Patient),
		appointments: make(map[string]model.Appointment),
		now:          time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateIdentity(_ context.Context, u *model.Identity) error {
	u.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.identities {
		if other.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.identities[u.ID] = *u
	s.order = append(s.order, u.ID)
	return nil
}

// SetActive flips the active flag; deactivation is an admin concern.
func (s *Store) SetActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.identities[id]; ok {
		u.Active = active
		s.identities[id] = u
	}
}

func (s *Store) FindIdentityByEmail(_ context.Context, email string) (*model.Identity, error) {
	email = model.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.identities {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) FindIdentityByID(_ context.Context, id string) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.identities[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *Store) FindFirstActiveDoctor(context.Context) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		u := s.identities[id]
		if u.Role == model.RoleDoctor && u.Active {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateIdentityPassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.identities[id]
	if !ok {
		return nil
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.now()
	s.identities[id] = u
	return nil
}

func (s *Store) InsertSession(_ context.Context, identityID, token string, expiresAt time.Time) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; ok {
		return nil, ErrDuplicate
	}
	sess := model.Session{
		ID:         uuid.New().String(),
		IdentityID: identityID,
		Token:      token,
		ExpiresAt:  expiresAt,
		CreatedAt:  s.now(),
	}
	s.sessions[token] = sess
	return &sess, nil
}

func (s *Store) FindSessionByToken(_ context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[token]; ok {
		return &sess, nil
	}
	return nil, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for tok, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, tok)
			n++
		}
	}
	return n, nil
}

func (s *Store) CreatePatient(_ context.Context, p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.patients[p.ID] = *p
	return nil
}

func (s *Store) FindPatientByID(_ context.Context, id string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.patients[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) InsertAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; ok {
		return ErrDuplicate
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) FindAppointmentsInRange(_ context.Context, start, end time.Time) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Appointment
	for _, a := range s.appointments {
		if a.ScheduledAt.Before(start) || a.ScheduledAt.After(end) {
			continue
		}
		out = append(out, s.withPatient(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *Store) FindAppointmentByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, nil
	}
	a = s.withPatient(a)
	return &a, nil
}

func (s *Store) UpdateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; !ok {
		return nil
	}
	a.UpdatedAt = s.now()
	stored := *a
	stored.Patient = nil
	s.appointments[a.ID] = stored
	return nil
}

// withPatient attaches a copy of the referenced patient. Callers hold mu.
func (s *Store) withPatient(a model.Appointment) model.Appointment {
	if p, ok := s.patients[a.PatientID]; ok {
		a.Patient = &p
	}
	return a
}
