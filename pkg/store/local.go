package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// localData is the on-disk shape of the anonymous-mode store. The key names
// are the namespaced keys the board has always used for browser-local data.
type localData struct {
	Tasks      []task.Task     `json:"monodo_tasks"`
	Categories []task.Category `json:"monodo_categories"`
	Counter    int             `json:"monodo_task_counter"`
}

// LocalStore keeps tasks and categories in a single JSON file. Every
// operation rewrites the whole file; failures surface as TransientError.
type LocalStore struct {
	mu   sync.Mutex
	path string
}

// NewLocalStore opens (or prepares to create) the local store at path.
func NewLocalStore(path string) (*LocalStore, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &task.TransientError{Err: err}
		}
	}
	return &LocalStore{path: path}, nil
}

func (s *LocalStore) load() (*localData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &localData{}, nil
		}
		return nil, &task.TransientError{Err: err}
	}

	var data localData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &task.TransientError{Err: err}
	}
	return &data, nil
}

func (s *LocalStore) save(data *localData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return &task.TransientError{Err: err}
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return &task.TransientError{Err: err}
	}
	return nil
}

// tempID generates a locally-unique token for a task or category created
// before the user has an account.
func tempID() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 9)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("temp_%d_%s", time.Now().UnixMilli(), b)
}

func (d *localData) resolve(t task.Task) task.Task {
	t.Category = nil
	if t.CategoryID != "" {
		for i := range d.Categories {
			if d.Categories[i].ID == t.CategoryID {
				c := d.Categories[i]
				t.Category = &c
				break
			}
		}
	}
	return t
}

func (s *LocalStore) ListTasks(ctx context.Context, f Filter) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]task.Task, 0, len(data.Tasks))
	for _, t := range data.Tasks {
		if f.Day != nil && !timeutil.SameDay(t.Day, *f.Day) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, data.resolve(t))
	}
	return out, nil
}

func (s *LocalStore) GetTask(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return task.Task{}, err
	}
	for _, t := range data.Tasks {
		if t.ID == id {
			return data.resolve(t), nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (s *LocalStore) CreateTask(ctx context.Context, nt NewTask) (task.Task, error) {
	if nt.Title == "" {
		return task.Task{}, &task.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return task.Task{}, err
	}

	now := time.Now()
	t := task.Task{
		ID:                 tempID(),
		Title:              nt.Title,
		Description:        nt.Description,
		Status:             nt.Status,
		Priority:           nt.Priority,
		ExpectedTime:       nt.ExpectedTime,
		ActualTime:         nt.ActualTime,
		CategoryID:         nt.CategoryID,
		Day:                nt.Day,
		StartTime:          nt.StartTime,
		EndTime:            nt.EndTime,
		ScheduledStartTime: nt.ScheduledStartTime,
		CompletedAt:        nt.CompletedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if t.Status == "" {
		t.Status = task.StatusBacklog
	}
	if t.Priority == "" {
		t.Priority = task.PriorityLow
	}
	if t.Day.IsZero() {
		t.Day = now
	}

	data.Tasks = append(data.Tasks, t)
	data.Counter++
	if err := s.save(data); err != nil {
		return task.Task{}, err
	}
	return data.resolve(t), nil
}

func (s *LocalStore) UpdateTask(ctx context.Context, id string, ch TaskChanges) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return task.Task{}, err
	}

	idx := -1
	for i := range data.Tasks {
		if data.Tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return task.Task{}, task.ErrNotFound
	}

	t := &data.Tasks[idx]
	applyChanges(t, ch)
	t.UpdatedAt = time.Now()

	if err := s.save(data); err != nil {
		return task.Task{}, err
	}
	return data.resolve(*t), nil
}

func applyChanges(t *task.Task, ch TaskChanges) {
	if ch.Title != nil {
		t.Title = *ch.Title
	}
	if ch.Description != nil {
		t.Description = *ch.Description
	}
	if ch.Priority != nil {
		t.Priority = *ch.Priority
	}
	if ch.ExpectedTime != nil {
		t.ExpectedTime = *ch.ExpectedTime
	}
	if ch.ActualTime != nil {
		t.ActualTime = *ch.ActualTime
	}
	if ch.CategoryID != nil {
		t.CategoryID = *ch.CategoryID
	}
	if ch.Day != nil {
		t.Day = *ch.Day
	}
	if ch.StartTime.Defined {
		t.StartTime = ch.StartTime.Value
	}
	if ch.EndTime.Defined {
		t.EndTime = ch.EndTime.Value
	}
	if ch.ScheduledStartTime.Defined {
		t.ScheduledStartTime = ch.ScheduledStartTime.Value
	}
	if ch.CompletedAt.Defined {
		t.CompletedAt = ch.CompletedAt.Value
	}
}

func (s *LocalStore) UpdateTaskStatus(ctx context.Context, id string, ch StatusChange) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return task.Task{}, err
	}

	idx := -1
	for i := range data.Tasks {
		if data.Tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return task.Task{}, task.ErrNotFound
	}

	t := &data.Tasks[idx]
	if err := task.ValidateTransition(t.Status, ch.Status, t.HasActiveTimer(), ch.Role.Privileged()); err != nil {
		return task.Task{}, err
	}

	now := time.Now()
	task.ApplyTransition(t, ch.Status, ch.EndTime, ch.CompletedAt, now)
	t.UpdatedAt = now

	if err := s.save(data); err != nil {
		return task.Task{}, err
	}
	return data.resolve(*t), nil
}

func (s *LocalStore) DeleteTask(ctx context.Context, id string, role task.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	for i := range data.Tasks {
		if data.Tasks[i].ID != id {
			continue
		}
		if err := task.CanDelete(data.Tasks[i].Status, role); err != nil {
			return err
		}
		data.Tasks = append(data.Tasks[:i], data.Tasks[i+1:]...)
		return s.save(data)
	}
	return task.ErrNotFound
}

func (s *LocalStore) ListCategories(ctx context.Context) ([]task.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return append([]task.Category(nil), data.Categories...), nil
}

func (s *LocalStore) CreateCategory(ctx context.Context, nc NewCategory) (task.Category, error) {
	if nc.Name == "" {
		return task.Category{}, &task.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return task.Category{}, err
	}

	for _, c := range data.Categories {
		if c.Name == nc.Name {
			return task.Category{}, &task.ConflictError{Reason: "category with this name already exists"}
		}
	}

	now := time.Now()
	c := task.Category{
		ID:        tempID(),
		Name:      nc.Name,
		Color:     nc.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Color == "" {
		c.Color = task.RandomColor()
	}

	data.Categories = append(data.Categories, c)
	if err := s.save(data); err != nil {
		return task.Category{}, err
	}
	return c, nil
}

func (s *LocalStore) UpdateCategory(ctx context.Context, id string, ch CategoryChanges) (task.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return task.Category{}, err
	}

	for i := range data.Categories {
		if data.Categories[i].ID != id {
			continue
		}
		c := &data.Categories[i]
		if ch.Name != nil {
			for _, other := range data.Categories {
				if other.ID != id && other.Name == *ch.Name {
					return task.Category{}, &task.ConflictError{Reason: "category with this name already exists"}
				}
			}
			c.Name = *ch.Name
		}
		if ch.Color != nil {
			c.Color = *ch.Color
		}
		c.UpdatedAt = time.Now()
		if err := s.save(data); err != nil {
			return task.Category{}, err
		}
		return *c, nil
	}
	return task.Category{}, task.ErrNotFound
}

// DeleteCategory removes a category and detaches any task referencing it.
func (s *LocalStore) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	found := false
	for i := range data.Categories {
		if data.Categories[i].ID == id {
			data.Categories = append(data.Categories[:i], data.Categories[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return task.ErrNotFound
	}

	for i := range data.Tasks {
		if data.Tasks[i].CategoryID == id {
			data.Tasks[i].CategoryID = ""
			data.Tasks[i].Category = nil
			data.Tasks[i].UpdatedAt = time.Now()
		}
	}
	return s.save(data)
}

// TaskCounter returns how many tasks were ever created locally. The sign-in
// prompts key off this number.
func (s *LocalStore) TaskCounter() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return 0, err
	}
	return data.Counter, nil
}

// Empty reports whether the store holds no tasks and no categories.
func (s *LocalStore) Empty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}
	return len(data.Tasks) == 0 && len(data.Categories) == 0, nil
}

// Snapshot returns all local tasks and categories for migration, with
// category references resolved.
func (s *LocalStore) Snapshot() ([]task.Task, []task.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, nil, err
	}

	tasks := make([]task.Task, 0, len(data.Tasks))
	for _, t := range data.Tasks {
		tasks = append(tasks, data.resolve(t))
	}
	return tasks, append([]task.Category(nil), data.Categories...), nil
}

// RemoveMigrated deletes the given task and category IDs without running
// the deletion policy or detaching tasks; the migration reconciler calls it
// after items have been copied to the remote store. When the store ends up
// empty the creation counter resets too.
func (s *LocalStore) RemoveMigrated(taskIDs, categoryIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	drop := make(map[string]bool, len(taskIDs)+len(categoryIDs))
	for _, id := range taskIDs {
		drop[id] = true
	}
	for _, id := range categoryIDs {
		drop[id] = true
	}

	var tasks []task.Task
	for _, t := range data.Tasks {
		if !drop[t.ID] {
			tasks = append(tasks, t)
		}
	}
	var cats []task.Category
	for _, c := range data.Categories {
		if !drop[c.ID] {
			cats = append(cats, c)
		}
	}

	data.Tasks = tasks
	data.Categories = cats
	if len(tasks) == 0 && len(cats) == 0 {
		data.Counter = 0
	}
	return s.save(data)
}

var _ Store = (*LocalStore)(nil)
