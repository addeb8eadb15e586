package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"clinic-api/internal/model"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error    string       `json:"error"`
	Required []model.Role `json:"required,omitempty"`
	Current  model.Role   `json:"current,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto a status code and a client-safe message.
// Anything unrecognised is logged and reported as a bare 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *model.ValidationError
		fe *model.ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: ve.Msg})
	case errors.Is(err, model.ErrValidation):
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid request"})
	case errors.Is(err, model.ErrInvalidCredentials):
		WriteJSON(w, http.StatusUnauthorized, ErrorBody{Error: "invalid credentials"})
	case errors.Is(err, model.ErrUnauthenticated):
		WriteJSON(w, http.StatusUnauthorized, ErrorBody{Error: "not authenticated"})
	case errors.As(err, &fe):
		WriteJSON(w, http.StatusForbidden, ErrorBody{Error: fe.Error(), Required: fe.Required, Current: fe.Current})
	case errors.Is(err, model.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, ErrorBody{Error: "not found"})
	case errors.Is(err, model.ErrNoAttendingAvailable):
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: "no doctor available"})
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
	}
}
