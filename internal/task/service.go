package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kolapsis/vocalboard/internal/store"
)

// Mirror reflects task state onto the user's external calendar.
// Implemented by calendar.GoogleSync.
type Mirror interface {
	// EnsureEvent creates or updates the remote event for t. A non-empty
	// return value is a newly created event id the caller must persist.
	EnsureEvent(ctx context.Context, user *store.UserRecord, t *store.TaskRecord) (string, error)
	// RemoveEvent deletes the remote event, treating "already gone" as success.
	RemoveEvent(ctx context.Context, user *store.UserRecord, eventID string) error
}

// Broadcaster delivers realtime events to a user's connected clients.
type Broadcaster interface {
	Broadcast(userID, event string, payload any)
}

// Service owns the task lifecycle: validation, status side effects,
// conflict gating, persistence, calendar mirroring and realtime fan-out.
//
// Calendar mirroring is deliberately soft: a degraded Google integration
// must never block local task management, so remote failures are logged and
// the local mutation stands.
type Service struct {
	store    store.Store
	calendar Mirror
	events   Broadcaster
	now      func() time.Time
}

// NewService creates a task Service.
func NewService(st store.Store, cal Mirror, events Broadcaster) *Service {
	return &Service{
		store:    st,
		calendar: cal,
		events:   events,
		now:      time.Now,
	}
}

// Create validates and persists a new task with status todo, then mirrors
// it to the calendar when the user has one connected.
func (s *Service) Create(ctx context.Context, userID, title, description string, scheduledTime *time.Time) (*store.TaskRecord, error) {
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	now := s.now()
	rec := store.TaskRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      string(StatusTodo),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	if scheduledTime != nil {
		at := NormalizeTime(*scheduledTime)
		if err := CheckConflict(s.store, userID, at, StatusTodo, ""); err != nil {
			return nil, err
		}
		rec.ScheduledTime = &at
	}

	if err := s.store.CreateTask(&rec); err != nil {
		return nil, err
	}

	s.mirror(ctx, &rec)
	s.broadcast(userID, "task-created", Payload(&rec))

	return &rec, nil
}

// Get returns one of the user's tasks.
func (s *Service) Get(ctx context.Context, userID, id string) (*store.TaskRecord, error) {
	return s.store.GetTask(userID, id)
}

// List returns the user's tasks, newest-created first.
func (s *Service) List(ctx context.Context, userID string) ([]store.TaskRecord, error) {
	return s.store.ListTasks(userID)
}

// Update applies a partial mutation with status side effects and conflict
// gating, persists it, and mirrors the result.
func (s *Service) Update(ctx context.Context, userID, id string, upd Update) (*store.TaskRecord, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + string(*upd.Status)}
	}
	if upd.Title != nil && *upd.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	prev, err := s.store.GetTask(userID, id)
	if err != nil {
		return nil, err
	}

	next, scheduled := Apply(prev, upd, s.now())
	if scheduled && next.ScheduledTime != nil {
		if err := CheckConflict(s.store, userID, *next.ScheduledTime, Status(next.Status), id); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateTask(&next); err != nil {
		return nil, err
	}

	s.mirror(ctx, &next)
	s.broadcast(userID, "task-updated", Payload(&next))

	return &next, nil
}

// Delete removes a task and its mirrored calendar event. The remote delete
// is idempotent: an event already gone upstream still counts as success.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	t, err := s.store.GetTask(userID, id)
	if err != nil {
		return err
	}

	if t.GoogleEventID != "" {
		if user, err := s.store.GetUser(userID); err == nil {
			if err := s.calendar.RemoveEvent(ctx, user, t.GoogleEventID); err != nil {
				slog.Warn("calendar event delete failed, removing task anyway",
					"task_id", t.ID, "event_id", t.GoogleEventID, "error", err)
			}
		}
	}

	if err := s.store.DeleteTask(userID, id); err != nil {
		return err
	}

	s.broadcast(userID, "task-deleted", deletedPayload{ID: id})
	return nil
}

// SyncToCalendar mirrors one task on demand. Used by the explicit sync
// endpoint; remote failures are soft here as everywhere else.
func (s *Service) SyncToCalendar(ctx context.Context, userID, taskID string) error {
	t, err := s.store.GetTask(userID, taskID)
	if err != nil {
		return err
	}
	if _, err := s.store.GetUser(userID); err != nil {
		return err
	}

	if t.ScheduledTime != nil && t.GoogleEventID == "" {
		s.mirror(ctx, t)
	}
	return nil
}

// mirror pushes t to the calendar and persists a newly assigned event id.
// Never fails the caller.
func (s *Service) mirror(ctx context.Context, t *store.TaskRecord) {
	user, err := s.store.GetUser(t.UserID)
	if err != nil {
		slog.Warn("calendar mirror skipped, owner lookup failed", "task_id", t.ID, "error", err)
		return
	}

	eventID, err := s.calendar.EnsureEvent(ctx, user, t)
	if err != nil {
		slog.Warn("calendar mirror failed, task saved locally", "task_id", t.ID, "error", err)
		return
	}
	if eventID == "" || eventID == t.GoogleEventID {
		return
	}

	t.GoogleEventID = eventID
	if err := s.store.UpdateTask(t); err != nil {
		slog.Warn("persisting calendar event id failed", "task_id", t.ID, "event_id", eventID, "error", err)
	}
}

func (s *Service) broadcast(userID, event string, payload any) {
	if s.events != nil {
		s.events.Broadcast(userID, event, payload)
	}
}

type deletedPayload struct {
	ID string `json:"id"`
}
