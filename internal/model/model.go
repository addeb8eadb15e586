package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleDoctor    Role = "doctor"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool { return r == RoleDoctor || r == RoleAssistant }

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Identity is a staff account. PasswordHash never leaves the server.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Specialty    string
	Phone        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Normalize lowercases the email and drops the specialty of non-doctors.
func (i *Identity) Normalize() {
	i.Email = NormalizeEmail(i.Email)
	if i.Role != RoleDoctor {
		i.Specialty = ""
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Session struct {
	ID         string
	IdentityID string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the session is inert at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type Patient struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
}

type Appointment struct {
	ID          string
	ScheduledAt time.Time
	PatientID   string
	DoctorID    string
	Reason      string
	Notes       string
	Status      AppointmentStatus
	CreatedBy   string
	Patient     *Patient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
