package task

import (
	"time"

	"github.com/kolapsis/vocalboard/internal/store"
)

// TaskPayload is the wire shape of a task, shared by the REST responses and
// the realtime events so clients see one schema.
type TaskPayload struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	GoogleEventID string     `json:"googleEventId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Payload converts a stored task to its wire shape.
func Payload(t *store.TaskRecord) TaskPayload {
	return TaskPayload{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		ScheduledTime: t.ScheduledTime,
		GoogleEventID: t.GoogleEventID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// Payloads converts a task list.
func Payloads(tasks []store.TaskRecord) []TaskPayload {
	out := make([]TaskPayload, len(tasks))
	for i := range tasks {
		out[i] = Payload(&tasks[i])
	}
	return out
}
