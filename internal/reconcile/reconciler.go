package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kolapsis/vocalboard/internal/store"
)

// Notification is a Google Calendar push notification, decoded from the
// X-Goog-* headers of the webhook request.
type Notification struct {
	ChannelID  string
	ResourceID string
	State      string // "sync", "exists" or "not_exists"
}

// Calendar is the slice of the sync adapter the reconciler needs.
type Calendar interface {
	UpcomingEventIDs(ctx context.Context, user *store.UserRecord) (map[string]struct{}, error)
}

// Broadcaster delivers realtime events to a user's connected clients.
type Broadcaster interface {
	Broadcast(userID, event string, payload any)
}

// Reconciler aligns local task state with the calendar when Google pushes a
// change notification. It prunes local tasks whose mirrored event vanished
// remotely; it never imports events that originated outside the app.
type Reconciler struct {
	store    store.Store
	calendar Calendar
	events   Broadcaster
}

// New creates a Reconciler.
func New(st store.Store, cal Calendar, events Broadcaster) *Reconciler {
	return &Reconciler{store: st, calendar: cal, events: events}
}

// Handle processes one notification. Errors are for logging only — the
// webhook endpoint acknowledges Google with 2xx regardless, to avoid
// provider-side retry storms. Every write here is idempotent.
func (r *Reconciler) Handle(ctx context.Context, n Notification) error {
	user, err := r.store.GetUserByResourceID(n.ResourceID)
	if errors.Is(err, store.ErrNotFound) {
		slog.Debug("notification for unknown resource ignored",
			"channel_id", n.ChannelID, "resource_id", n.ResourceID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolving notification owner: %w", err)
	}

	switch n.State {
	case "sync":
		// Handshake sent when the watch channel is created.
		return nil
	case "exists":
		return r.prune(ctx, user)
	case "not_exists":
		return r.removeByEventID(user, n.ResourceID)
	default:
		slog.Debug("notification with unknown state ignored",
			"state", n.State, "resource_id", n.ResourceID)
		return nil
	}
}

// prune deletes every local task whose mirrored event is absent from the
// near-term remote window, then notifies the user's clients with the
// reconciled event id set. Tasks without a mirrored event are untouched.
func (r *Reconciler) prune(ctx context.Context, user *store.UserRecord) error {
	remote, err := r.calendar.UpcomingEventIDs(ctx, user)
	if err != nil {
		return fmt.Errorf("fetching remote events: %w", err)
	}

	tasks, err := r.store.ListTasks(user.ID)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}

	removed := 0
	kept := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.GoogleEventID == "" {
			continue
		}
		if _, ok := remote[t.GoogleEventID]; ok {
			kept = append(kept, t.GoogleEventID)
			continue
		}
		if err := r.store.DeleteTask(user.ID, t.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("pruning task %s: %w", t.ID, err)
		}
		removed++
	}

	if removed > 0 {
		slog.Info("pruned tasks deleted remotely", "user_id", user.ID, "count", removed)
	}

	sort.Strings(kept)
	r.broadcast(user.ID, "calendar-updated", calendarPayload{EventIDs: kept})
	return nil
}

// removeByEventID deletes the one task mirroring the removed event.
// Unmatched ids are acknowledged silently.
func (r *Reconciler) removeByEventID(user *store.UserRecord, eventID string) error {
	t, err := r.store.GetTaskByEventID(user.ID, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolving task for event %s: %w", eventID, err)
	}

	if err := r.store.DeleteTask(user.ID, t.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("deleting task %s: %w", t.ID, err)
	}

	slog.Info("task deleted after remote event removal", "user_id", user.ID, "task_id", t.ID)
	r.broadcast(user.ID, "task-deleted", deletedPayload{ID: t.ID})
	return nil
}

func (r *Reconciler) broadcast(userID, event string, payload any) {
	if r.events != nil {
		r.events.Broadcast(userID, event, payload)
	}
}

type calendarPayload struct {
	EventIDs []string `json:"eventIds"`
}

type deletedPayload struct {
	ID string `json:"id"`
}
