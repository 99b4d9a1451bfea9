package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// Store is the server-side persistence layer. Every operation is scoped to
// a user; tasks belonging to other users are invisible.
type Store struct {
	db     *sql.DB
	driver string
}

// NewStore wraps an open database connection.
func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority,
	t.expected_time, t.actual_time, t.start_time, t.end_time,
	t.scheduled_start_time, t.completed_at, t.category_id, t.day,
	t.created_at, t.updated_at,
	c.id, c.name, c.color, c.created_at, c.updated_at`

const taskFrom = ` FROM tasks t LEFT JOIN categories c ON c.id = t.category_id`

func scanTask(row interface{ Scan(...any) error }) (task.Task, error) {
	var r taskRow
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.Status, &r.Priority,
		&r.ExpectedTime, &r.ActualTime, &r.StartTime, &r.EndTime,
		&r.ScheduledStartTime, &r.CompletedAt, &r.CategoryID, &r.Day,
		&r.CreatedAt, &r.UpdatedAt,
		&r.CatID, &r.CatName, &r.CatColor, &r.CatCreatedAt, &r.CatUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return r.toTask()
}

// ListTasks returns the user's tasks, optionally restricted to one calendar
// date, newest first.
func (s *Store) ListTasks(ctx context.Context, userID string, day *time.Time) ([]task.Task, error) {
	query := "SELECT " + taskColumns + taskFrom + " WHERE t.user_id = ?"
	args := []any{userID}
	if day != nil {
		query += " AND t.day = ?"
		args = append(args, timeutil.FormatDate(*day))
	}
	query += " ORDER BY t.created_at DESC"

	rows, err := s.db.QueryContext(ctx, rebind(s.driver, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns one task owned by the user.
func (s *Store) GetTask(ctx context.Context, userID, id string) (task.Task, error) {
	query := "SELECT " + taskColumns + taskFrom + " WHERE t.id = ? AND t.user_id = ?"
	return scanTask(s.db.QueryRowContext(ctx, rebind(s.driver, query), id, userID))
}

// CreateTask inserts a new task for the user.
func (s *Store) CreateTask(ctx context.Context, userID string, nt store.NewTask) (task.Task, error) {
	if nt.Title == "" {
		return task.Task{}, &task.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	now := time.Now()
	if nt.Status == "" {
		nt.Status = task.StatusBacklog
	}
	if nt.Priority == "" {
		nt.Priority = task.PriorityLow
	}
	if nt.Day.IsZero() {
		nt.Day = now
	}

	id := uuid.NewString()
	query := `INSERT INTO tasks (id, user_id, title, description, status, priority,
		expected_time, actual_time, start_time, end_time, scheduled_start_time,
		completed_at, category_id, day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, rebind(s.driver, query),
		id, userID, nt.Title, nt.Description, string(nt.Status), string(nt.Priority),
		nt.ExpectedTime, nt.ActualTime, nullableTime(nt.StartTime), nullableTime(nt.EndTime),
		nullableTime(nt.ScheduledStartTime), nullableTime(nt.CompletedAt),
		nullableString(nt.CategoryID), timeutil.FormatDate(nt.Day), now, now,
	)
	if err != nil {
		return task.Task{}, err
	}
	return s.GetTask(ctx, userID, id)
}

// UpdateTask applies a partial update. When the update sets a non-null
// startTime, the safety net clears startTime/endTime of every other task of
// the same user currently holding an active timer, in the same transaction,
// so the single-active-timer invariant survives a misbehaving client.
func (s *Store) UpdateTask(ctx context.Context, userID, id string, ch store.TaskChanges) (task.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, err
	}
	defer tx.Rollback()

	var exists int
	query := "SELECT COUNT(*) FROM tasks WHERE id = ? AND user_id = ?"
	if err := tx.QueryRowContext(ctx, rebind(s.driver, query), id, userID).Scan(&exists); err != nil {
		return task.Task{}, err
	}
	if exists == 0 {
		return task.Task{}, task.ErrNotFound
	}

	if ch.StartTime.Defined && ch.StartTime.Value != nil {
		query = `UPDATE tasks SET start_time = NULL, end_time = NULL
			WHERE user_id = ? AND id <> ? AND start_time IS NOT NULL
			AND end_time IS NULL AND status = 'IN_PROGRESS'`
		if _, err := tx.ExecContext(ctx, rebind(s.driver, query), userID, id); err != nil {
			return task.Task{}, err
		}
	}

	var sets []string
	var args []any
	add := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if ch.Title != nil {
		add("title", *ch.Title)
	}
	if ch.Description != nil {
		add("description", *ch.Description)
	}
	if ch.Priority != nil {
		add("priority", string(*ch.Priority))
	}
	if ch.ExpectedTime != nil {
		add("expected_time", *ch.ExpectedTime)
	}
	if ch.ActualTime != nil {
		add("actual_time", *ch.ActualTime)
	}
	if ch.CategoryID != nil {
		add("category_id", nullableString(*ch.CategoryID))
	}
	if ch.Day != nil {
		add("day", timeutil.FormatDate(*ch.Day))
	}
	if ch.StartTime.Defined {
		add("start_time", nullableTime(ch.StartTime.Value))
	}
	if ch.EndTime.Defined {
		add("end_time", nullableTime(ch.EndTime.Value))
	}
	if ch.ScheduledStartTime.Defined {
		add("scheduled_start_time", nullableTime(ch.ScheduledStartTime.Value))
	}
	if ch.CompletedAt.Defined {
		add("completed_at", nullableTime(ch.CompletedAt.Value))
	}
	add("updated_at", time.Now())

	query = "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	args = append(args, id, userID)
	if _, err := tx.ExecContext(ctx, rebind(s.driver, query), args...); err != nil {
		return task.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return task.Task{}, err
	}
	return s.GetTask(ctx, userID, id)
}

// UpdateTaskStatus runs the transition rules against the stored task and
// applies the move. Entering COMPLETED stamps endTime/completedAt with
// "now" defaults; reopening clears them and keeps startTime.
func (s *Store) UpdateTaskStatus(ctx context.Context, userID, id string, ch store.StatusChange) (task.Task, error) {
	current, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return task.Task{}, err
	}

	if err := task.ValidateTransition(current.Status, ch.Status, current.HasActiveTimer(), ch.Role.Privileged()); err != nil {
		return task.Task{}, err
	}

	now := time.Now()
	task.ApplyTransition(&current, ch.Status, ch.EndTime, ch.CompletedAt, now)

	query := `UPDATE tasks SET status = ?, end_time = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	_, err = s.db.ExecContext(ctx, rebind(s.driver, query),
		string(current.Status), nullableTime(current.EndTime),
		nullableTime(current.CompletedAt), now, id, userID,
	)
	if err != nil {
		return task.Task{}, err
	}
	return s.GetTask(ctx, userID, id)
}

// DeleteTask removes a task, enforcing the backlog-only deletion policy
// unless the role is privileged.
func (s *Store) DeleteTask(ctx context.Context, userID, id string, role task.Role) error {
	current, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := task.CanDelete(current.Status, role); err != nil {
		return err
	}

	query := "DELETE FROM tasks WHERE id = ? AND user_id = ?"
	_, err = s.db.ExecContext(ctx, rebind(s.driver, query), id, userID)
	return err
}

// ListCategories returns the user's categories ordered by how many tasks
// use them, most used first.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]task.Category, error) {
	query := `SELECT c.id, c.name, c.color, c.created_at, c.updated_at,
		COUNT(t.id) AS usage_count
		FROM categories c LEFT JOIN tasks t ON t.category_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id, c.name, c.color, c.created_at, c.updated_at
		ORDER BY usage_count DESC, c.created_at DESC`

	rows, err := s.db.QueryContext(ctx, rebind(s.driver, query), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []task.Category
	for rows.Next() {
		var c task.Category
		var usage int
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt, &usage); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CreateCategory inserts a category, assigning a random palette color when
// none is given. Duplicate names per user are rejected.
func (s *Store) CreateCategory(ctx context.Context, userID string, nc store.NewCategory) (task.Category, error) {
	if nc.Name == "" {
		return task.Category{}, &task.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if nc.Color == "" {
		nc.Color = task.RandomColor()
	}

	var count int
	query := "SELECT COUNT(*) FROM categories WHERE user_id = ? AND name = ?"
	if err := s.db.QueryRowContext(ctx, rebind(s.driver, query), userID, nc.Name).Scan(&count); err != nil {
		return task.Category{}, err
	}
	if count > 0 {
		return task.Category{}, &task.ConflictError{Reason: "category with this name already exists"}
	}

	now := time.Now()
	c := task.Category{
		ID:        uuid.NewString(),
		Name:      nc.Name,
		Color:     nc.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query = `INSERT INTO categories (id, user_id, name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, rebind(s.driver, query),
		c.ID, userID, c.Name, c.Color, now, now); err != nil {
		return task.Category{}, err
	}
	return c, nil
}

// UpdateCategory renames or recolors a category.
func (s *Store) UpdateCategory(ctx context.Context, userID, id string, ch store.CategoryChanges) (task.Category, error) {
	var c task.Category
	query := "SELECT id, name, color, created_at, updated_at FROM categories WHERE id = ? AND user_id = ?"
	err := s.db.QueryRowContext(ctx, rebind(s.driver, query), id, userID).
		Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Category{}, task.ErrNotFound
		}
		return task.Category{}, err
	}

	if ch.Name != nil {
		var count int
		query = "SELECT COUNT(*) FROM categories WHERE user_id = ? AND name = ? AND id <> ?"
		if err := s.db.QueryRowContext(ctx, rebind(s.driver, query), userID, *ch.Name, id).Scan(&count); err != nil {
			return task.Category{}, err
		}
		if count > 0 {
			return task.Category{}, &task.ConflictError{Reason: "category with this name already exists"}
		}
		c.Name = *ch.Name
	}
	if ch.Color != nil {
		c.Color = *ch.Color
	}
	c.UpdatedAt = time.Now()

	query = "UPDATE categories SET name = ?, color = ?, updated_at = ? WHERE id = ? AND user_id = ?"
	if _, err := s.db.ExecContext(ctx, rebind(s.driver, query),
		c.Name, c.Color, c.UpdatedAt, id, userID); err != nil {
		return task.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category and detaches referencing tasks in one
// transaction.
func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := "UPDATE tasks SET category_id = NULL, updated_at = ? WHERE category_id = ? AND user_id = ?"
	if _, err := tx.ExecContext(ctx, rebind(s.driver, query), time.Now(), id, userID); err != nil {
		return err
	}

	query = "DELETE FROM categories WHERE id = ? AND user_id = ?"
	res, err := tx.ExecContext(ctx, rebind(s.driver, query), id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return task.ErrNotFound
	}

	return tx.Commit()
}
