package task

import "fmt"

// ValidationError reports a missing or malformed field in a request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports that another non-blocked task of the same owner
// already occupies the requested timestamp.
type ConflictError struct {
	TaskID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("another task (%s) is already scheduled at this time", e.TaskID)
}
