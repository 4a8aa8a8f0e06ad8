package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kolapsis/vocalboard/internal/auth"
	"github.com/kolapsis/vocalboard/internal/calendar"
	"github.com/kolapsis/vocalboard/internal/store"
	"github.com/kolapsis/vocalboard/internal/task"
)

type createTaskRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ScheduledTime *time.Time `json:"scheduledTime"`
}

type updateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	ScheduledTime *time.Time `json:"scheduledTime"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	tasks, err := s.deps.Tasks.List(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": task.Payloads(tasks)})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := s.deps.Tasks.Create(r.Context(), user.ID, req.Title, req.Description, req.ScheduledTime)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    task.Payload(created),
	})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	upd := task.Update{
		Title:         req.Title,
		Description:   req.Description,
		ScheduledTime: req.ScheduledTime,
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		upd.Status = &status
	}

	updated, err := s.deps.Tasks.Update(r.Context(), user.ID, id, upd)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"task":    task.Payload(updated),
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.deps.Tasks.Delete(r.Context(), user.ID, id); err != nil {
		respondError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Task deleted successfully")
}

func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	t, err := s.deps.Tasks.Get(r.Context(), user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if t.GoogleEventID == "" {
		respondError(w, store.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": calendar.ShareLink(t.GoogleEventID, s.deps.Google.CalendarID()),
	})
}
