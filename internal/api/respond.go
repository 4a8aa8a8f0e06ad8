package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kolapsis/vocalboard/internal/auth"
	"github.com/kolapsis/vocalboard/internal/calendar"
	"github.com/kolapsis/vocalboard/internal/store"
	"github.com/kolapsis/vocalboard/internal/task"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// respondError maps domain errors to HTTP statuses in one place. Remote
// calendar failures never reach here — they are swallowed upstream so a
// degraded integration cannot fail task management.
func respondError(w http.ResponseWriter, err error) {
	var validation *task.ValidationError
	var conflict *task.ConflictError

	switch {
	case errors.As(err, &validation):
		writeMessage(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &conflict):
		writeMessage(w, http.StatusBadRequest, "Another task is already scheduled at this time")
	case errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, calendar.ErrNotConnected):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &task.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return nil
}
