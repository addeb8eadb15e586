package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clinic-api/internal/auth"
	"clinic-api/internal/clock"
	"clinic-api/internal/middleware"
	"clinic-api/internal/model"
	"clinic-api/internal/schedule"
)

type patientView struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

type appointmentView struct {
	ID          string                  `json:"id"`
	ScheduledAt time.Time               `json:"scheduledAt"`
	Date        string                  `json:"date"`
	Time        string                  `json:"time"`
	PatientID   string                  `json:"patientId"`
	DoctorID    string                  `json:"doctorId"`
	Reason      string                  `json:"reason"`
	Notes       string                  `json:"notes,omitempty"`
	Status      model.AppointmentStatus `json:"status"`
	CreatedBy   string                  `json:"createdBy"`
	Patient     *patientView            `json:"patient,omitempty"`
}

func viewAppointment(a *model.Appointment) appointmentView {
	v := appointmentView{
		ID:          a.ID,
		ScheduledAt: a.ScheduledAt.In(clock.Location),
		Date:        clock.DateString(a.ScheduledAt),
		Time:        clock.TimeString(a.ScheduledAt),
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		Reason:      a.Reason,
		Notes:       a.Notes,
		Status:      a.Status,
		CreatedBy:   a.CreatedBy,
	}
	if p := a.Patient; p != nil {
		v.Patient = &patientView{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Phone: p.Phone}
	}
	return v
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireDoctorOrAssistant(caller(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	apts, err := h.schedule.ListDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	out := make([]appointmentView, 0, len(apts))
	for i := range apts {
		out = append(out, viewAppointment(&apts[i]))
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

type appointmentRequest struct {
	PatientID   string                  `json:"patientId"`
	Date        string                  `json:"date"`
	Time        string                  `json:"time"`
	ScheduledAt string                  `json:"scheduledAt"`
	Reason      string                  `json:"reason"`
	Notes       *string                 `json:"notes"`
	Status      model.AppointmentStatus `json:"status"`
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	if err := auth.RequireDoctorOrAssistant(id); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	var req appointmentRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	in := schedule.NewAppointment{
		PatientID: req.PatientID,
		Date:      req.Date,
		Time:      req.Time,
		ISO:       req.ScheduledAt,
		Reason:    req.Reason,
	}
	if req.Notes != nil {
		in.Notes = *req.Notes
	}
	apt, err := h.schedule.Create(r.Context(), id, in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, viewAppointment(apt))
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireDoctorOrAssistant(caller(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	var req appointmentRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	apt, err := h.schedule.Update(r.Context(), chi.URLParam(r, "id"), schedule.Changes{
		PatientID: req.PatientID,
		Date:      req.Date,
		Time:      req.Time,
		ISO:       req.ScheduledAt,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Status:    req.Status,
	})
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, viewAppointment(apt))
}

func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireDoctorOrAssistant(caller(r)); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if err := h.schedule.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
