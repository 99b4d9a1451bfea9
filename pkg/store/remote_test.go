package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"monodo/pkg/task"
)

func TestRemoteListTasksSendsDayAndAuth(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]task.Task{{ID: "1", Title: "t"}})
	}))
	defer srv.Close()

	s := NewRemoteStore(srv.URL, "tok123")
	day := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	tasks, err := s.ListTasks(context.Background(), Filter{Day: &day})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}

	if gotPath != "/api/tasks?day=2025-03-14" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestRemoteErrorMapping(t *testing.T) {
	cases := []struct {
		code  int
		check func(error) bool
		name  string
	}{
		{http.StatusNotFound, func(err error) bool { return errors.Is(err, task.ErrNotFound) }, "not found"},
		{http.StatusForbidden, task.IsPermission, "permission"},
		{http.StatusConflict, func(err error) bool {
			var ce *task.ConflictError
			return errors.As(err, &ce)
		}, "conflict"},
		{http.StatusBadRequest, func(err error) bool {
			var ve *task.ValidationError
			return errors.As(err, &ve)
		}, "validation"},
		{http.StatusInternalServerError, task.IsTransient, "transient"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.code)
				json.NewEncoder(w).Encode(apiError{Error: "boom"})
			}))
			defer srv.Close()

			s := NewRemoteStore(srv.URL, "tok")
			_, err := s.GetTask(context.Background(), "x")
			if err == nil || !c.check(err) {
				t.Errorf("status %d mapped to %v", c.code, err)
			}
		})
	}
}

func TestRemoteNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	s := NewRemoteStore(srv.URL, "tok")
	_, err := s.ListTasks(context.Background(), Filter{})
	if !task.IsTransient(err) {
		t.Fatalf("expected TransientError, got %v", err)
	}
}

func TestRemoteUpdateTaskBody(t *testing.T) {
	var body map[string]any
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(task.Task{ID: "1"})
	}))
	defer srv.Close()

	s := NewRemoteStore(srv.URL, "tok")
	actual := 5
	_, err := s.UpdateTask(context.Background(), "1", TaskChanges{
		ActualTime: &actual,
		EndTime:    ClearTime(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if method != http.MethodPut {
		t.Errorf("method = %s, want PUT", method)
	}
	if got, ok := body["actualTime"].(float64); !ok || got != 5 {
		t.Errorf("actualTime = %v", body["actualTime"])
	}
	if v, present := body["endTime"]; !present || v != nil {
		t.Errorf("endTime = %v (present=%v), want explicit null", v, present)
	}
	if _, present := body["title"]; present {
		t.Error("unset field must not be sent")
	}
}

func TestRemoteStatusPatch(t *testing.T) {
	var body map[string]any
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(task.Task{ID: "1", Status: task.StatusCompleted})
	}))
	defer srv.Close()

	s := NewRemoteStore(srv.URL, "tok")
	got, err := s.UpdateTaskStatus(context.Background(), "1", StatusChange{Status: task.StatusCompleted})
	if err != nil {
		t.Fatal(err)
	}

	if method != http.MethodPatch || path != "/api/tasks/1/status" {
		t.Errorf("%s %s", method, path)
	}
	if body["status"] != "COMPLETED" {
		t.Errorf("status = %v", body["status"])
	}
	if got.Status != task.StatusCompleted {
		t.Errorf("returned status = %s", got.Status)
	}
}

func TestRemoteCheckSession(t *testing.T) {
	authorized := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(apiError{Error: "unauthorized"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewRemoteStore(srv.URL, "tok")

	ok, err := s.CheckSession(context.Background())
	if err != nil || ok {
		t.Errorf("unauthenticated check = %v, %v; want false, nil", ok, err)
	}

	authorized = true
	ok, err = s.CheckSession(context.Background())
	if err != nil || !ok {
		t.Errorf("authenticated check = %v, %v; want true, nil", ok, err)
	}
}
