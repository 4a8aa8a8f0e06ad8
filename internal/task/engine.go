package task

import (
	"time"

	"github.com/kolapsis/vocalboard/internal/store"
)

// Apply merges upd into a copy of prev and runs the status-change side
// effects. The returned bool reports whether the result carries a scheduled
// time that the caller must still pass through conflict checking (either
// supplied in the update or auto-assigned by a rule).
//
// Rule A: leaving blocked for any other status with no scheduled time, past
// or supplied, auto-schedules the task for now + 24h.
//
// Rule B: moving todo -> inprogress pins the scheduled time to now,
// overriding any caller-supplied value.
func Apply(prev *store.TaskRecord, upd Update, now time.Time) (store.TaskRecord, bool) {
	next := *prev

	if upd.Title != nil {
		next.Title = *upd.Title
	}
	if upd.Description != nil {
		next.Description = *upd.Description
	}
	if upd.Status != nil {
		next.Status = string(*upd.Status)
	}

	scheduled := false
	if upd.ScheduledTime != nil {
		at := NormalizeTime(*upd.ScheduledTime)
		next.ScheduledTime = &at
		scheduled = true
	}

	if upd.Status != nil {
		leavingBlocked := prev.Status == string(StatusBlocked) && *upd.Status != StatusBlocked
		if leavingBlocked && prev.ScheduledTime == nil && upd.ScheduledTime == nil {
			at := NormalizeTime(now.Add(24 * time.Hour))
			next.ScheduledTime = &at
			scheduled = true
		}

		if prev.Status == string(StatusTodo) && *upd.Status == StatusInProgress {
			at := NormalizeTime(now)
			next.ScheduledTime = &at
			scheduled = true
		}
	}

	next.UpdatedAt = now.UTC()
	return next, scheduled
}
