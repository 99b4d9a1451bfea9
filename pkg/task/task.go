package task

import (
	"time"
)

// Status is the lifecycle stage of a task, one per board column.
type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority of a task.
type Priority string

const (
	PriorityLow  Priority = "LOW"
	PriorityHigh Priority = "HIGH"
)

// Role is the caller's capability level. DEVELOPER and ADMIN relax the
// status-transition and deletion restrictions.
type Role string

const (
	RoleUser      Role = "USER"
	RoleDeveloper Role = "DEVELOPER"
	RoleAdmin     Role = "ADMIN"
)

// Privileged reports whether the role may override transition and deletion
// restrictions.
func (r Role) Privileged() bool {
	return r == RoleDeveloper || r == RoleAdmin
}

// Task is a single board entry. Durations are whole seconds; Day carries
// date-only semantics (time of day is ignored in comparisons).
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	// ExpectedTime is the planned budget in seconds; zero means no budget.
	ExpectedTime int `json:"expectedTime,omitempty"`
	// ActualTime is cumulative time spent in seconds. It never decreases
	// while a timer runs.
	ActualTime int `json:"actualTime"`

	// StartTime is set while a timer is running and cleared when it stops.
	StartTime *time.Time `json:"startTime,omitempty"`
	// EndTime is set when a timer stops with preservation or the task
	// completes. It must be nil while a timer is running.
	EndTime *time.Time `json:"endTime,omitempty"`
	// ScheduledStartTime is a planned start, never touched by the timer.
	ScheduledStartTime *time.Time `json:"scheduledStartTime,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	CategoryID string    `json:"categoryId,omitempty"`
	Category   *Category `json:"category,omitempty"`

	Day       time.Time `json:"day"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasActiveTimer reports whether the task currently holds the active timer
// slot: StartTime set and EndTime unset. System-wide at most one task may
// satisfy this at a time.
func (t *Task) HasActiveTimer() bool {
	return t.StartTime != nil && t.EndTime == nil
}

// Category groups tasks. Deleting a category detaches its tasks instead of
// cascading.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
