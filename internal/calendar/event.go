package calendar

import (
	"encoding/base64"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/kolapsis/vocalboard/internal/store"
)

const eventDuration = time.Hour

// buildEvent renders a task as a calendar event: one hour long, summary from
// the title, description annotated with status, colour derived from status,
// and two 30-minute reminders (popup and email).
func buildEvent(t *store.TaskRecord, verb string) *gcal.Event {
	start := t.ScheduledTime.UTC()
	end := start.Add(eventDuration)

	return &gcal.Event{
		Summary:     "[Task] " + t.Title,
		Description: fmt.Sprintf("%s\n\nStatus: %s\n%s via Vocalboard", t.Description, t.Status, verb),
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: 30},
				{Method: "email", Minutes: 30},
			},
			// UseDefault is a false zero value; force it onto the wire.
			ForceSendFields: []string{"UseDefault"},
		},
		ColorId: colorID(t.Status),
	}
}

// colorID maps a task status to a Google Calendar colour code.
func colorID(status string) string {
	switch status {
	case "todo":
		return "1" // blue
	case "inprogress":
		return "5" // yellow
	case "done":
		return "10" // green
	case "blocked":
		return "11" // red
	default:
		return "1"
	}
}

// ShareLink builds a deep link into Google Calendar's event editor for a
// mirrored event. The eid parameter is the base64url of "<eventID> <calendarID>".
func ShareLink(eventID, calendarID string) string {
	eid := base64.RawURLEncoding.EncodeToString([]byte(eventID + " " + calendarID))
	return "https://calendar.google.com/calendar/u/0/r/eventedit/" + eid
}
