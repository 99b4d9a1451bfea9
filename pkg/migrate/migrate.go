// Package migrate drains a local task store into the remote one after
// sign-in, keeping category references intact across the id change.
package migrate

import (
	"context"
	"log/slog"

	"monodo/pkg/store"
)

// Report summarizes one migration run.
type Report struct {
	CategoriesMigrated int
	CategoriesFailed   int
	TasksMigrated      int
	TasksFailed        int
}

// Failed reports whether any item was left behind.
func (r Report) Failed() bool {
	return r.CategoriesFailed > 0 || r.TasksFailed > 0
}

// Run copies every local category and task into the remote store.
// Categories go first so tasks can remap their category reference onto the
// remote ids. Individual failures are logged and skipped; a task whose
// category failed simply loses the reference. Only items that made it
// across are removed locally, so a partial failure leaves a remainder to
// retry instead of silently dropping data.
func Run(ctx context.Context, local *store.LocalStore, remote store.Store, logger *slog.Logger) (Report, error) {
	var report Report

	tasks, categories, err := local.Snapshot()
	if err != nil {
		return report, err
	}
	if len(tasks) == 0 && len(categories) == 0 {
		return report, nil
	}

	idMap := make(map[string]string, len(categories))
	var migratedCategories []string
	for _, c := range categories {
		created, err := remote.CreateCategory(ctx, store.NewCategory{Name: c.Name, Color: c.Color})
		if err != nil {
			report.CategoriesFailed++
			logger.Warn("category migration failed", "name", c.Name, "error", err)
			continue
		}
		idMap[c.ID] = created.ID
		migratedCategories = append(migratedCategories, c.ID)
		report.CategoriesMigrated++
	}

	var migratedTasks []string
	for _, t := range tasks {
		nt := store.NewTask{
			Title:              t.Title,
			Description:        t.Description,
			Status:             t.Status,
			Priority:           t.Priority,
			ExpectedTime:       t.ExpectedTime,
			ActualTime:         t.ActualTime,
			CategoryID:         idMap[t.CategoryID],
			Day:                t.Day,
			StartTime:          t.StartTime,
			EndTime:            t.EndTime,
			ScheduledStartTime: t.ScheduledStartTime,
			CompletedAt:        t.CompletedAt,
		}
		if _, err := remote.CreateTask(ctx, nt); err != nil {
			report.TasksFailed++
			logger.Warn("task migration failed", "title", t.Title, "error", err)
			continue
		}
		migratedTasks = append(migratedTasks, t.ID)
		report.TasksMigrated++
	}

	if err := local.RemoveMigrated(migratedTasks, migratedCategories); err != nil {
		return report, err
	}

	logger.Info("migration finished",
		"tasks", report.TasksMigrated, "categories", report.CategoriesMigrated,
		"tasksFailed", report.TasksFailed, "categoriesFailed", report.CategoriesFailed)
	return report, nil
}
