package api

import (
	"log/slog"
	"net/http"

	"github.com/kolapsis/vocalboard/internal/auth"
	"github.com/kolapsis/vocalboard/internal/calendar"
	"github.com/kolapsis/vocalboard/internal/reconcile"
	"github.com/kolapsis/vocalboard/internal/task"
)

type calendarSyncRequest struct {
	TaskID string `json:"taskId"`
}

type consentCallbackRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleCalendarSync(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req calendarSyncRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.TaskID == "" {
		respondError(w, &task.ValidationError{Field: "taskId", Reason: "must not be empty"})
		return
	}

	if err := s.deps.Tasks.SyncToCalendar(r.Context(), user.ID, req.TaskID); err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Task synced with Google Calendar")
}

func (s *Server) handleCalendarTest(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	calendars, err := s.deps.Google.TestConnection(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Google Calendar connection successful",
		"calendars": calendars,
	})
}

func (s *Server) handleConsentURL(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Google.Enabled() {
		respondError(w, calendar.ErrNotConnected)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"authUrl": s.deps.Google.ConsentURL()})
}

// handleConsentCallback stores the grant exchanged from the consent code,
// then registers a watch channel unless the user already has one. A watch
// failure does not fail the connect: mirroring works without it, only the
// push-driven reconciliation is lost.
func (s *Server) handleConsentCallback(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req consentCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Code == "" {
		respondError(w, &task.ValidationError{Field: "code", Reason: "must not be empty"})
		return
	}

	link, err := s.deps.Google.Exchange(r.Context(), req.Code)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.deps.Store.SetCalendarLink(user.ID, link); err != nil {
		respondError(w, err)
		return
	}
	user.Calendar = link

	if user.Watch == nil && s.deps.PublicURL != "" {
		address := s.deps.PublicURL + webhookPath
		ch, err := s.deps.Google.Watch(r.Context(), user, address)
		if err != nil {
			slog.Warn("watch channel registration failed", "user_id", user.ID, "error", err)
		} else if err := s.deps.Store.SetWatchChannel(user.ID, ch); err != nil {
			slog.Warn("persisting watch channel failed", "user_id", user.ID, "error", err)
		} else {
			slog.Info("watch channel registered",
				"user_id", user.ID, "channel_id", ch.ID, "expires_at", ch.ExpiresAt)
		}
	}

	writeMessage(w, http.StatusOK, "Google Calendar connected successfully")
}

// handleConsentLanding is the browser-facing redirect target; the frontend
// forwards the code to the authenticated POST callback.
func (s *Server) handleConsentLanding(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Google Calendar connected successfully. You may close this window.\n"))
}

// handleCalendarWebhook consumes Google's push notifications. Always
// answers 200: providers expect a fast acknowledgment and retry storms help
// nobody; internal failures are logged only.
func (s *Server) handleCalendarWebhook(w http.ResponseWriter, r *http.Request) {
	n := reconcile.Notification{
		ChannelID:  r.Header.Get("X-Goog-Channel-ID"),
		ResourceID: r.Header.Get("X-Goog-Resource-ID"),
		State:      r.Header.Get("X-Goog-Resource-State"),
	}

	if err := s.deps.Reconciler.Handle(r.Context(), n); err != nil {
		slog.Error("webhook reconciliation failed",
			"channel_id", n.ChannelID, "resource_id", n.ResourceID, "state", n.State, "error", err)
	}

	w.WriteHeader(http.StatusOK)
}
