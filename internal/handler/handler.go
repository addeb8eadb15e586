package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"clinic-api/internal/auth"
	"clinic-api/internal/middleware"
	"clinic-api/internal/model"
	"clinic-api/internal/schedule"
)

type Config struct {
	CookieSecure bool
	SessionTTL   time.Duration
}

// Handler serves the JSON API. Auth and scheduling rules live in the
// services; this layer only decodes, encodes and picks status codes.
type Handler struct {
	auth     *auth.Service
	schedule *schedule.Service
	cfg      Config
}

func New(as *auth.Service, ss *schedule.Service, cfg Config) *Handler {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = auth.DefaultSessionTTL
	}
	return &Handler{auth: as, schedule: ss, cfg: cfg}
}

func caller(r *http.Request) *model.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.Invalid("invalid request body")
	}
	return nil
}

type userView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      model.Role `json:"role"`
	Specialty string     `json:"specialty,omitempty"`
}

func viewUser(u *model.Identity) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Specialty: u.Specialty}
}
