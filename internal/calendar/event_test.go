package calendar

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/vocalboard/internal/store"
)

func TestBuildEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	task := &store.TaskRecord{
		Title:         "Prepare demo",
		Description:   "Slides and script",
		Status:        "inprogress",
		ScheduledTime: &at,
	}

	ev := buildEvent(task, "Updated")

	assert.Equal(t, "[Task] Prepare demo", ev.Summary)
	assert.Equal(t, "Slides and script\n\nStatus: inprogress\nUpdated via Vocalboard", ev.Description)
	assert.Equal(t, "2026-03-14T09:30:00Z", ev.Start.DateTime)
	assert.Equal(t, "2026-03-14T10:30:00Z", ev.End.DateTime, "events are one hour long")
	assert.Equal(t, "UTC", ev.Start.TimeZone)
	assert.Equal(t, "5", ev.ColorId)
}

func TestBuildEvent_Reminders(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	ev := buildEvent(&store.TaskRecord{Title: "x", Status: "todo", ScheduledTime: &at}, "Created")

	require.NotNil(t, ev.Reminders)
	assert.False(t, ev.Reminders.UseDefault)
	assert.Contains(t, ev.Reminders.ForceSendFields, "UseDefault")

	require.Len(t, ev.Reminders.Overrides, 2)
	for _, r := range ev.Reminders.Overrides {
		assert.EqualValues(t, 30, r.Minutes)
	}
	assert.Equal(t, "popup", ev.Reminders.Overrides[0].Method)
	assert.Equal(t, "email", ev.Reminders.Overrides[1].Method)
}

func TestColorID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1", colorID("todo"))
	assert.Equal(t, "5", colorID("inprogress"))
	assert.Equal(t, "10", colorID("done"))
	assert.Equal(t, "11", colorID("blocked"))
	assert.Equal(t, "1", colorID("whatever"))
}

func TestShareLink(t *testing.T) {
	t.Parallel()

	link := ShareLink("evt123", "primary")

	const prefix = "https://calendar.google.com/calendar/u/0/r/eventedit/"
	require.True(t, len(link) > len(prefix))
	assert.Equal(t, prefix, link[:len(prefix)])

	decoded, err := base64.RawURLEncoding.DecodeString(link[len(prefix):])
	require.NoError(t, err)
	assert.Equal(t, "evt123 primary", string(decoded))
}
