package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// RemoteStore speaks the board's REST API. Timestamps travel as ISO-8601,
// durations as integer seconds. Server rejections map back onto the same
// error taxonomy the local store produces, so callers cannot tell the two
// backends apart.
type RemoteStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemoteStore creates a client for the server at baseURL authenticating
// with the given bearer token.
func NewRemoteStore(baseURL, token string) *RemoteStore {
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// apiError is the server's error envelope.
type apiError struct {
	Error string `json:"error"`
}

func (s *RemoteStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &task.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		return mapStatus(resp.StatusCode, ae.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &task.TransientError{Err: err}
		}
	}
	return nil
}

func mapStatus(code int, msg string) error {
	switch code {
	case http.StatusNotFound:
		return task.ErrNotFound
	case http.StatusForbidden:
		return &task.PermissionError{Rule: msg}
	case http.StatusConflict:
		return &task.ConflictError{Reason: msg}
	case http.StatusBadRequest:
		return &task.ValidationError{Field: "request", Reason: msg}
	case http.StatusUnauthorized:
		return &task.PermissionError{Rule: "not authenticated"}
	default:
		return &task.TransientError{Err: fmt.Errorf("server returned %d: %s", code, msg)}
	}
}

func (s *RemoteStore) ListTasks(ctx context.Context, f Filter) ([]task.Task, error) {
	params := url.Values{}
	if f.Day != nil {
		params.Set("day", timeutil.FormatDate(*f.Day))
	}
	if f.Status != nil {
		params.Set("status", string(*f.Status))
	}

	path := "/api/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var tasks []task.Task
	if err := s.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *RemoteStore) GetTask(ctx context.Context, id string) (task.Task, error) {
	var t task.Task
	if err := s.do(ctx, http.MethodGet, "/api/tasks/"+id, nil, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *RemoteStore) CreateTask(ctx context.Context, nt NewTask) (task.Task, error) {
	body := map[string]any{
		"title":        nt.Title,
		"description":  nt.Description,
		"status":       nt.Status,
		"priority":     nt.Priority,
		"expectedTime": nt.ExpectedTime,
		"actualTime":   nt.ActualTime,
	}
	if nt.CategoryID != "" {
		body["categoryId"] = nt.CategoryID
	}
	if !nt.Day.IsZero() {
		body["day"] = timeutil.FormatDate(nt.Day)
	}
	if nt.StartTime != nil {
		body["startTime"] = nt.StartTime
	}
	if nt.EndTime != nil {
		body["endTime"] = nt.EndTime
	}
	if nt.ScheduledStartTime != nil {
		body["scheduledStartTime"] = nt.ScheduledStartTime
	}
	if nt.CompletedAt != nil {
		body["completedAt"] = nt.CompletedAt
	}

	var t task.Task
	if err := s.do(ctx, http.MethodPost, "/api/tasks", body, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *RemoteStore) UpdateTask(ctx context.Context, id string, ch TaskChanges) (task.Task, error) {
	body := map[string]any{}
	if ch.Title != nil {
		body["title"] = *ch.Title
	}
	if ch.Description != nil {
		body["description"] = *ch.Description
	}
	if ch.Priority != nil {
		body["priority"] = *ch.Priority
	}
	if ch.ExpectedTime != nil {
		body["expectedTime"] = *ch.ExpectedTime
	}
	if ch.ActualTime != nil {
		body["actualTime"] = *ch.ActualTime
	}
	if ch.CategoryID != nil {
		body["categoryId"] = *ch.CategoryID
	}
	if ch.Day != nil {
		body["day"] = timeutil.FormatDate(*ch.Day)
	}
	if ch.StartTime.Defined {
		body["startTime"] = ch.StartTime.Value
	}
	if ch.EndTime.Defined {
		body["endTime"] = ch.EndTime.Value
	}
	if ch.ScheduledStartTime.Defined {
		body["scheduledStartTime"] = ch.ScheduledStartTime.Value
	}
	if ch.CompletedAt.Defined {
		body["completedAt"] = ch.CompletedAt.Value
	}

	var t task.Task
	if err := s.do(ctx, http.MethodPut, "/api/tasks/"+id, body, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *RemoteStore) UpdateTaskStatus(ctx context.Context, id string, ch StatusChange) (task.Task, error) {
	body := map[string]any{"status": ch.Status}
	if ch.EndTime != nil {
		body["endTime"] = ch.EndTime
	}
	if ch.CompletedAt != nil {
		body["completedAt"] = ch.CompletedAt
	}

	// The server derives the caller's role from the session token.
	var t task.Task
	if err := s.do(ctx, http.MethodPatch, "/api/tasks/"+id+"/status", body, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *RemoteStore) DeleteTask(ctx context.Context, id string, role task.Role) error {
	return s.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (s *RemoteStore) ListCategories(ctx context.Context) ([]task.Category, error) {
	var cats []task.Category
	if err := s.do(ctx, http.MethodGet, "/api/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (s *RemoteStore) CreateCategory(ctx context.Context, nc NewCategory) (task.Category, error) {
	body := map[string]any{"name": nc.Name}
	if nc.Color != "" {
		body["color"] = nc.Color
	}

	var c task.Category
	if err := s.do(ctx, http.MethodPost, "/api/categories", body, &c); err != nil {
		return task.Category{}, err
	}
	return c, nil
}

func (s *RemoteStore) UpdateCategory(ctx context.Context, id string, ch CategoryChanges) (task.Category, error) {
	body := map[string]any{}
	if ch.Name != nil {
		body["name"] = *ch.Name
	}
	if ch.Color != nil {
		body["color"] = *ch.Color
	}

	var c task.Category
	if err := s.do(ctx, http.MethodPut, "/api/categories/"+id, body, &c); err != nil {
		return task.Category{}, err
	}
	return c, nil
}

func (s *RemoteStore) DeleteCategory(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/categories/"+id, nil, nil)
}

// CheckSession probes whether the configured token is accepted by the
// server. The board uses it to decide between local and remote mode.
func (s *RemoteStore) CheckSession(ctx context.Context) (bool, error) {
	err := s.do(ctx, http.MethodGet, "/api/session/check", nil, nil)
	if err == nil {
		return true, nil
	}
	if task.IsPermission(err) {
		return false, nil
	}
	return false, err
}

var _ Store = (*RemoteStore)(nil)
