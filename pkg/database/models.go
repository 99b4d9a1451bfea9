package database

import (
	"database/sql"
	"time"

	"monodo/pkg/task"
)

// taskRow mirrors a tasks table row with nullable columns.
type taskRow struct {
	ID                 string
	Title              string
	Description        string
	Status             string
	Priority           string
	ExpectedTime       int
	ActualTime         int
	StartTime          sql.NullTime
	EndTime            sql.NullTime
	ScheduledStartTime sql.NullTime
	CompletedAt        sql.NullTime
	CategoryID         sql.NullString
	Day                string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	CatID        sql.NullString
	CatName      sql.NullString
	CatColor     sql.NullString
	CatCreatedAt sql.NullTime
	CatUpdatedAt sql.NullTime
}

// toTask converts a scanned row into the domain model, attaching the joined
// category when present.
func (r *taskRow) toTask() (task.Task, error) {
	day, err := time.Parse("2006-01-02", r.Day)
	if err != nil {
		return task.Task{}, err
	}

	t := task.Task{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       task.Status(r.Status),
		Priority:     task.Priority(r.Priority),
		ExpectedTime: r.ExpectedTime,
		ActualTime:   r.ActualTime,
		Day:          day,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	if r.StartTime.Valid {
		v := r.StartTime.Time
		t.StartTime = &v
	}
	if r.EndTime.Valid {
		v := r.EndTime.Time
		t.EndTime = &v
	}
	if r.ScheduledStartTime.Valid {
		v := r.ScheduledStartTime.Time
		t.ScheduledStartTime = &v
	}
	if r.CompletedAt.Valid {
		v := r.CompletedAt.Time
		t.CompletedAt = &v
	}
	if r.CategoryID.Valid {
		t.CategoryID = r.CategoryID.String
	}
	if r.CatID.Valid {
		t.Category = &task.Category{
			ID:        r.CatID.String,
			Name:      r.CatName.String,
			Color:     r.CatColor.String,
			CreatedAt: r.CatCreatedAt.Time,
			UpdatedAt: r.CatUpdatedAt.Time,
		}
	}
	return t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
