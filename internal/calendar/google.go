package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kolapsis/vocalboard/internal/config"
	"github.com/kolapsis/vocalboard/internal/store"
)

// ErrNotConnected is returned when an operation needs a Google grant the
// user has not given yet.
var ErrNotConnected = errors.New("google calendar not connected")

// CalendarInfo describes one calendar visible to the user.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// GoogleSync mirrors tasks onto Google Calendar: one event per task, plus a
// watch channel for push notifications. A calendar.Service is built per
// call from the user's stored grant; oauth2 refreshes expired access tokens
// transparently when a refresh token is present.
type GoogleSync struct {
	oauth      *oauth2.Config
	calendarID string
}

// NewGoogleSync creates the adapter from the configured OAuth client.
func NewGoogleSync(cfg config.GoogleConfig) *GoogleSync {
	return &GoogleSync{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gcal.CalendarScope},
			Endpoint:     google.Endpoint,
		},
		calendarID: cfg.CalendarID,
	}
}

func (g *GoogleSync) service(ctx context.Context, link *store.CalendarLink) (*gcal.Service, error) {
	tok := &oauth2.Token{
		AccessToken:  link.AccessToken,
		RefreshToken: link.RefreshToken,
		Expiry:       link.Expiry,
	}
	srv, err := gcal.NewService(ctx, option.WithHTTPClient(g.oauth.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("building calendar client: %w", err)
	}
	return srv, nil
}

// EnsureEvent mirrors t onto the calendar. Without a grant or a scheduled
// time it is a no-op. A task without an event id gets a new event created
// and its id returned for the caller to persist; a task with one gets the
// existing event updated in place, never a duplicate.
func (g *GoogleSync) EnsureEvent(ctx context.Context, user *store.UserRecord, t *store.TaskRecord) (string, error) {
	if user.Calendar == nil || t.ScheduledTime == nil {
		return "", nil
	}

	srv, err := g.service(ctx, user.Calendar)
	if err != nil {
		return "", err
	}

	if t.GoogleEventID == "" {
		created, err := srv.Events.Insert(g.calendarID, buildEvent(t, "Created")).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("creating calendar event: %w", err)
		}
		return created.Id, nil
	}

	_, err = srv.Events.Update(g.calendarID, t.GoogleEventID, buildEvent(t, "Updated")).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("updating calendar event %s: %w", t.GoogleEventID, err)
	}
	return "", nil
}

// RemoveEvent deletes the remote event. An event already deleted upstream
// counts as success. The event's description is patched with a deletion
// note first so open calendar views reflect the removal immediately.
func (g *GoogleSync) RemoveEvent(ctx context.Context, user *store.UserRecord, eventID string) error {
	if user.Calendar == nil || eventID == "" {
		return nil
	}

	srv, err := g.service(ctx, user.Calendar)
	if err != nil {
		return err
	}

	// Best effort; the delete right after is what matters.
	_, _ = srv.Events.Patch(g.calendarID, eventID, &gcal.Event{
		Description: "[This task has been deleted]",
	}).Context(ctx).Do()

	if err := srv.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		if isGone(err) {
			return nil
		}
		return fmt.Errorf("deleting calendar event %s: %w", eventID, err)
	}
	return nil
}

// UpcomingEventIDs returns the ids of the user's near-term events: from now,
// recurring instances expanded, ordered by start time, bounded count.
func (g *GoogleSync) UpcomingEventIDs(ctx context.Context, user *store.UserRecord) (map[string]struct{}, error) {
	if user.Calendar == nil {
		return nil, ErrNotConnected
	}

	srv, err := g.service(ctx, user.Calendar)
	if err != nil {
		return nil, err
	}

	events, err := srv.Events.List(g.calendarID).
		TimeMin(time.Now().Format(time.RFC3339)).
		MaxResults(50).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing upcoming events: %w", err)
	}

	ids := make(map[string]struct{}, len(events.Items))
	for _, ev := range events.Items {
		ids[ev.Id] = struct{}{}
	}
	return ids, nil
}

// Watch registers a push-notification channel on the user's calendar,
// delivering to address. The returned channel identifiers are opaque; the
// caller persists them for webhook correlation.
func (g *GoogleSync) Watch(ctx context.Context, user *store.UserRecord, address string) (*store.WatchChannel, error) {
	if user.Calendar == nil {
		return nil, ErrNotConnected
	}

	srv, err := g.service(ctx, user.Calendar)
	if err != nil {
		return nil, err
	}

	ch, err := srv.Events.Watch(g.calendarID, &gcal.Channel{
		Id:      uuid.NewString(),
		Type:    "web_hook",
		Address: address,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("registering watch channel: %w", err)
	}

	return &store.WatchChannel{
		ID:         ch.Id,
		ResourceID: ch.ResourceId,
		ExpiresAt:  time.UnixMilli(ch.Expiration).UTC(),
	}, nil
}

// TestConnection verifies the grant by listing the user's calendars.
func (g *GoogleSync) TestConnection(ctx context.Context, user *store.UserRecord) ([]CalendarInfo, error) {
	if user.Calendar == nil {
		return nil, ErrNotConnected
	}

	srv, err := g.service(ctx, user.Calendar)
	if err != nil {
		return nil, err
	}

	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}

	infos := make([]CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		infos = append(infos, CalendarInfo{ID: item.Id, Summary: item.Summary})
	}
	return infos, nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 || apiErr.Code == 410
	}
	return false
}
