package task

import "time"

// Status is an open enum: any status may be set to any other. The only
// transition side effects are the scheduling rules in Apply.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Update describes a partial task mutation. Nil fields are left unchanged.
type Update struct {
	Title         *string
	Description   *string
	Status        *Status
	ScheduledTime *time.Time
}

// NormalizeTime converts t to UTC truncated to millisecond precision, the
// resolution at which scheduling conflicts are compared.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
