package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/kolapsis/vocalboard/internal/store"
)

// CheckConflict enforces the one-active-task-per-timestamp invariant: at
// most one non-blocked task per owner may occupy an exact timestamp.
// Returns a *ConflictError naming the blocking task, or nil when the slot
// is free. Blocked tasks never conflict, as candidate or as holder; the
// candidate's own id can be excluded for updates.
func CheckConflict(s store.Store, userID string, at time.Time, candidate Status, excludeID string) error {
	if candidate == StatusBlocked {
		return nil
	}

	existing, err := s.FindScheduledAt(userID, at, excludeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking schedule conflict: %w", err)
	}

	return &ConflictError{TaskID: existing.ID}
}
