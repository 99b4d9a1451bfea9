package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// writeError maps the store's error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		ve *task.ValidationError
		pe *task.PermissionError
		ce *task.ConflictError
	)
	switch {
	case errors.Is(err, task.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.As(err, &pe):
		c.JSON(http.StatusForbidden, gin.H{"error": pe.Error()})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{"error": ce.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) handleSessionCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "userId": userID(c)})
}

func (s *Server) handleListTasks(c *gin.Context) {
	var day *time.Time
	if raw := c.Query("day"); raw != "" {
		parsed, err := timeutil.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		day = &parsed
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), userID(c), day)
	if err != nil {
		writeError(c, err)
		return
	}

	if raw := c.Query("status"); raw != "" {
		status := task.Status(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Status             task.Status   `json:"status"`
	Priority           task.Priority `json:"priority"`
	ExpectedTime       int           `json:"expectedTime"`
	ActualTime         int           `json:"actualTime"`
	CategoryID         string        `json:"categoryId"`
	Day                string        `json:"day"`
	StartTime          *time.Time    `json:"startTime"`
	EndTime            *time.Time    `json:"endTime"`
	ScheduledStartTime *time.Time    `json:"scheduledStartTime"`
	CompletedAt        *time.Time    `json:"completedAt"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	nt := store.NewTask{
		Title:              req.Title,
		Description:        req.Description,
		Status:             req.Status,
		Priority:           req.Priority,
		ExpectedTime:       req.ExpectedTime,
		ActualTime:         req.ActualTime,
		CategoryID:         req.CategoryID,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		ScheduledStartTime: req.ScheduledStartTime,
		CompletedAt:        req.CompletedAt,
	}
	if req.Day != "" {
		day, err := timeutil.ParseDate(req.Day)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		nt.Day = day
	}

	created, err := s.store.CreateTask(c.Request.Context(), userID(c), nt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.store.GetTask(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// handleUpdateTask applies a partial update. The body is read as a raw key
// set so a field sent as null is distinguishable from one left out, which
// matters for the nullable timer fields.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var ch store.TaskChanges
	var bad string
	str := func(key string) *string {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			bad = key
			return nil
		}
		return &s
	}
	num := func(key string) *int {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			bad = key
			return nil
		}
		return &n
	}
	stamp := func(key string) store.OptionalTime {
		v, ok := raw[key]
		if !ok {
			return store.OptionalTime{}
		}
		var t *time.Time
		if err := json.Unmarshal(v, &t); err != nil {
			bad = key
			return store.OptionalTime{}
		}
		return store.OptionalTime{Defined: true, Value: t}
	}

	ch.Title = str("title")
	ch.Description = str("description")
	if p := str("priority"); p != nil {
		priority := task.Priority(*p)
		ch.Priority = &priority
	}
	ch.ExpectedTime = num("expectedTime")
	ch.ActualTime = num("actualTime")
	ch.CategoryID = str("categoryId")
	if d := str("day"); d != nil {
		day, err := timeutil.ParseDate(*d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		ch.Day = &day
	}
	ch.StartTime = stamp("startTime")
	ch.EndTime = stamp("endTime")
	ch.ScheduledStartTime = stamp("scheduledStartTime")
	ch.CompletedAt = stamp("completedAt")

	if bad != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value for " + bad})
		return
	}

	updated, err := s.store.UpdateTask(c.Request.Context(), userID(c), c.Param("id"), ch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type statusChangeRequest struct {
	Status      task.Status `json:"status"`
	EndTime     *time.Time  `json:"endTime"`
	CompletedAt *time.Time  `json:"completedAt"`
}

// handleUpdateTaskStatus runs the transition rules server-side. The
// caller's role comes from the token, never from the body.
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	updated, err := s.store.UpdateTaskStatus(c.Request.Context(), userID(c), c.Param("id"), store.StatusChange{
		Status:      req.Status,
		EndTime:     req.EndTime,
		CompletedAt: req.CompletedAt,
		Role:        callerRole(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	err := s.store.DeleteTask(c.Request.Context(), userID(c), c.Param("id"), callerRole(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) handleListCategories(c *gin.Context) {
	cats, err := s.store.ListCategories(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if cats == nil {
		cats = []task.Category{}
	}
	c.JSON(http.StatusOK, cats)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := s.store.CreateCategory(c.Request.Context(), userID(c), store.NewCategory{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var ch store.CategoryChanges
	if v, ok := raw["name"]; ok {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value for name"})
			return
		}
		ch.Name = &name
	}
	if v, ok := raw["color"]; ok {
		var color string
		if err := json.Unmarshal(v, &color); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value for color"})
			return
		}
		ch.Color = &color
	}

	updated, err := s.store.UpdateCategory(c.Request.Context(), userID(c), c.Param("id"), ch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	err := s.store.DeleteCategory(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
