package task

import (
	"time"
)

// ValidateTransition decides whether a status move is legal.
//
//	BACKLOG     -> IN_PROGRESS  always
//	BACKLOG     -> COMPLETED    always (direct completion)
//	IN_PROGRESS -> COMPLETED    only while the task's timer is active
//	IN_PROGRESS -> BACKLOG      privileged only
//	COMPLETED   -> IN_PROGRESS  always (reopen)
//	COMPLETED   -> BACKLOG      never, even privileged
//
// timerActive is whether the task currently holds an active timer;
// privileged relaxes the override-gated rules.
func ValidateTransition(from, to Status, timerActive, privileged bool) error {
	if !from.Valid() || !to.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if from == to {
		return nil
	}

	switch {
	case from == StatusBacklog:
		return nil

	case from == StatusInProgress && to == StatusCompleted:
		if !timerActive {
			return &PermissionError{Rule: "task can only be completed while its timer is running"}
		}
		return nil

	case from == StatusInProgress && to == StatusBacklog:
		if !privileged {
			return &PermissionError{Rule: "moving a task back to backlog requires developer mode"}
		}
		return nil

	case from == StatusCompleted && to == StatusInProgress:
		return nil

	case from == StatusCompleted && to == StatusBacklog:
		return &PermissionError{Rule: "completed tasks cannot return to backlog"}
	}

	return &PermissionError{Rule: "transition not allowed"}
}

// ApplyTransition mutates t for an already-validated move to the given
// status. Entering COMPLETED stamps EndTime and CompletedAt (falling back
// to now when the caller supplies none). Reopening to IN_PROGRESS clears
// them but leaves StartTime untouched so the original first-start timestamp
// survives.
func ApplyTransition(t *Task, to Status, endTime, completedAt *time.Time, now time.Time) {
	if to == StatusCompleted && t.Status != StatusCompleted {
		if endTime == nil {
			endTime = &now
		}
		if completedAt == nil {
			completedAt = &now
		}
		t.EndTime = endTime
		t.CompletedAt = completedAt
	}

	if to == StatusInProgress && t.Status == StatusCompleted {
		t.EndTime = nil
		t.CompletedAt = nil
	}

	t.Status = to
}

// CanDelete decides whether a task in the given status may be deleted by
// the given role. Only BACKLOG tasks may be deleted; DEVELOPER and ADMIN
// may delete from any status.
func CanDelete(status Status, role Role) error {
	if status == StatusBacklog || role.Privileged() {
		return nil
	}
	return &PermissionError{Rule: "only backlog tasks can be deleted"}
}
