package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/vocalboard/internal/store"
)

type fakeCalendar struct {
	eventIDs map[string]struct{}
	err      error
}

func (f *fakeCalendar) UpcomingEventIDs(_ context.Context, _ *store.UserRecord) (map[string]struct{}, error) {
	return f.eventIDs, f.err
}

type fakeBroadcaster struct {
	events []broadcastCall
}

type broadcastCall struct {
	UserID  string
	Event   string
	Payload any
}

func (f *fakeBroadcaster) Broadcast(userID, event string, payload any) {
	f.events = append(f.events, broadcastCall{userID, event, payload})
}

func newTestReconciler(t *testing.T) (*Reconciler, store.Store, *fakeCalendar, *fakeBroadcaster) {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.CreateUser(&store.UserRecord{
		ID: "user-1", Name: "Alice", Email: "alice@example.com",
		PasswordHash: "x", CreatedAt: time.Now(),
	}))
	require.NoError(t, st.SetWatchChannel("user-1", &store.WatchChannel{
		ID:         "channel-1",
		ResourceID: "resource-1",
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}))

	cal := &fakeCalendar{eventIDs: map[string]struct{}{}}
	events := &fakeBroadcaster{}
	return New(st, cal, events), st, cal, events
}

func seedTask(t *testing.T, st store.Store, id, eventID string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, st.CreateTask(&store.TaskRecord{
		ID: id, UserID: "user-1", Title: id, Status: "todo",
		GoogleEventID: eventID, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestHandle_UnknownResourceIsIgnored(t *testing.T) {
	t.Parallel()
	r, _, _, events := newTestReconciler(t)

	err := r.Handle(context.Background(), Notification{
		ChannelID: "other", ResourceID: "never-registered", State: "exists",
	})
	require.NoError(t, err)
	assert.Empty(t, events.events)
}

func TestHandle_SyncHandshakeIsAcknowledged(t *testing.T) {
	t.Parallel()
	r, st, _, events := newTestReconciler(t)
	seedTask(t, st, "task-1", "evt-1")

	err := r.Handle(context.Background(), Notification{
		ChannelID: "channel-1", ResourceID: "resource-1", State: "sync",
	})
	require.NoError(t, err)

	// Nothing is touched on the handshake.
	_, err = st.GetTask("user-1", "task-1")
	require.NoError(t, err)
	assert.Empty(t, events.events)
}

func TestHandle_ExistsPrunesVanishedEvents(t *testing.T) {
	t.Parallel()
	r, st, cal, events := newTestReconciler(t)

	seedTask(t, st, "task-kept", "evt-kept")
	seedTask(t, st, "task-gone", "evt-gone")
	seedTask(t, st, "task-local", "") // never mirrored, never pruned
	cal.eventIDs = map[string]struct{}{"evt-kept": {}}

	err := r.Handle(context.Background(), Notification{
		ChannelID: "channel-1", ResourceID: "resource-1", State: "exists",
	})
	require.NoError(t, err)

	_, err = st.GetTask("user-1", "task-kept")
	assert.NoError(t, err)
	_, err = st.GetTask("user-1", "task-gone")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetTask("user-1", "task-local")
	assert.NoError(t, err, "unmirrored tasks survive pruning")

	require.Len(t, events.events, 1)
	assert.Equal(t, "calendar-updated", events.events[0].Event)
	assert.Equal(t, calendarPayload{EventIDs: []string{"evt-kept"}}, events.events[0].Payload)
}

func TestHandle_ExistsNeverImportsRemoteEvents(t *testing.T) {
	t.Parallel()
	r, st, cal, _ := newTestReconciler(t)

	// A remote event with no local counterpart stays remote.
	cal.eventIDs = map[string]struct{}{"evt-foreign": {}}

	err := r.Handle(context.Background(), Notification{
		ChannelID: "channel-1", ResourceID: "resource-1", State: "exists",
	})
	require.NoError(t, err)

	tasks, err := st.ListTasks("user-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestHandle_ExistsIsIdempotent(t *testing.T) {
	t.Parallel()
	r, st, cal, _ := newTestReconciler(t)

	seedTask(t, st, "task-gone", "evt-gone")
	cal.eventIDs = map[string]struct{}{}

	n := Notification{ChannelID: "channel-1", ResourceID: "resource-1", State: "exists"}
	require.NoError(t, r.Handle(context.Background(), n))
	require.NoError(t, r.Handle(context.Background(), n))

	tasks, err := st.ListTasks("user-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestHandle_ExistsRemoteFetchFailure(t *testing.T) {
	t.Parallel()
	r, st, cal, _ := newTestReconciler(t)

	seedTask(t, st, "task-1", "evt-1")
	cal.err = errors.New("google is down")

	err := r.Handle(context.Background(), Notification{
		ChannelID: "channel-1", ResourceID: "resource-1", State: "exists",
	})
	require.Error(t, err)

	// Nothing was pruned on a failed listing.
	_, err = st.GetTask("user-1", "task-1")
	assert.NoError(t, err)
}

func TestHandle_NotExistsRemovesMatchingTask(t *testing.T) {
	t.Parallel()
	r, st, _, events := newTestReconciler(t)

	// The watch resource id doubles as the event id in deletion pushes.
	seedTask(t, st, "task-1", "resource-1")

	err := r.Handle(context.Background(), Notification{
		ChannelID: "channel-1", ResourceID: "resource-1", State: "not_exists",
	})
	require.NoError(t, err)

	_, err = st.GetTask("user-1", "task-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.Len(t, events.events, 1)
	assert.Equal(t, "task-deleted", events.events[0].Event)
	assert.Equal(t, deletedPayload{ID: "task-1"}, events.events[0].Payload)
}

func TestHandle_NotExistsUnmatchedIsSilent(t *testing.T) {
	t.Parallel()
	r, _, _, events := newTestReconciler(t)

	err := r.Handle(context.Background(), Notification{
		ChannelID: "channel-1", ResourceID: "resource-1", State: "not_exists",
	})
	require.NoError(t, err)
	assert.Empty(t, events.events)
}

func TestHandle_UnknownStateIsIgnored(t *testing.T) {
	t.Parallel()
	r, st, _, events := newTestReconciler(t)
	seedTask(t, st, "task-1", "evt-1")

	err := r.Handle(context.Background(), Notification{
		ChannelID: "channel-1", ResourceID: "resource-1", State: "weird",
	})
	require.NoError(t, err)

	_, err = st.GetTask("user-1", "task-1")
	assert.NoError(t, err)
	assert.Empty(t, events.events)
}
