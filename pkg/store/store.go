// Package store provides a uniform task/category persistence interface with
// two interchangeable backends: a local JSON file store for anonymous use
// and an HTTP client for the server-backed mode. Both present identical
// behavior to callers; they differ only in failure modes.
package store

import (
	"context"
	"time"

	"monodo/pkg/task"
)

// Filter narrows a task listing.
type Filter struct {
	// Day restricts to tasks scheduled on this calendar date. Time of day
	// is ignored.
	Day *time.Time
	// Status restricts to one board column.
	Status *task.Status
}

// OptionalTime distinguishes "leave unchanged" from "clear" and "set" for
// nullable timestamp fields in a partial update.
type OptionalTime struct {
	Defined bool
	Value   *time.Time
}

// SetTime returns an OptionalTime that sets the field to t.
func SetTime(t time.Time) OptionalTime {
	return OptionalTime{Defined: true, Value: &t}
}

// ClearTime returns an OptionalTime that nulls the field.
func ClearTime() OptionalTime {
	return OptionalTime{Defined: true}
}

// TaskChanges is a partial task update. Nil pointer fields are left
// unchanged.
type TaskChanges struct {
	Title        *string
	Description  *string
	Priority     *task.Priority
	ExpectedTime *int
	ActualTime   *int
	CategoryID   *string
	Day          *time.Time

	StartTime          OptionalTime
	EndTime            OptionalTime
	ScheduledStartTime OptionalTime
	CompletedAt        OptionalTime
}

// StatusChange is a status transition request. EndTime and CompletedAt
// default to "now" when entering COMPLETED and omitted. Role carries the
// caller's capability for override-gated transitions; the remote backend
// derives it from the session token instead.
type StatusChange struct {
	Status      task.Status
	EndTime     *time.Time
	CompletedAt *time.Time
	Role        task.Role
}

// NewTask is the payload for creating a task. Status defaults to BACKLOG
// and priority to LOW when empty; copied or migrated tasks may carry any
// status and timer fields.
type NewTask struct {
	Title        string
	Description  string
	Status       task.Status
	Priority     task.Priority
	ExpectedTime int
	ActualTime   int
	CategoryID   string
	Day          time.Time

	StartTime          *time.Time
	EndTime            *time.Time
	ScheduledStartTime *time.Time
	CompletedAt        *time.Time
}

// NewCategory is the payload for creating a category. An empty color gets
// a random palette color.
type NewCategory struct {
	Name  string
	Color string
}

// CategoryChanges is a partial category update.
type CategoryChanges struct {
	Name  *string
	Color *string
}

// Store is the task store adapter. Every task read resolves Category from
// CategoryID; every mutation stamps UpdatedAt (and CreatedAt on create).
type Store interface {
	ListTasks(ctx context.Context, f Filter) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (task.Task, error)
	CreateTask(ctx context.Context, nt NewTask) (task.Task, error)
	UpdateTask(ctx context.Context, id string, ch TaskChanges) (task.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, ch StatusChange) (task.Task, error)
	DeleteTask(ctx context.Context, id string, role task.Role) error

	ListCategories(ctx context.Context) ([]task.Category, error)
	CreateCategory(ctx context.Context, nc NewCategory) (task.Category, error)
	UpdateCategory(ctx context.Context, id string, ch CategoryChanges) (task.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}
