package commands

import (
	"context"
	"fmt"
	"strings"

	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// Purge deletes tasks matching the optional day and status filters. It
// runs with the admin capability so completed tasks can be cleared too.
func Purge(ctx context.Context, s store.Store, dayStr, statusStr string, skipConfirm bool) error {
	f := store.Filter{}
	if dayStr != "" {
		day, err := timeutil.ParseDate(dayStr)
		if err != nil {
			return fmt.Errorf("parsing date: %w", err)
		}
		f.Day = &day
	}
	if statusStr != "" {
		status := task.Status(strings.ToUpper(statusStr))
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", statusStr)
		}
		f.Status = &status
	}

	tasks, err := s.ListTasks(ctx, f)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("Nothing to purge.")
		return nil
	}

	if !skipConfirm {
		fmt.Printf("Are you sure you want to delete %d task(s)? (y/N): ", len(tasks))
		var response string
		fmt.Scanln(&response)
		if r := strings.ToLower(response); r != "y" && r != "yes" {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	var deleted int
	for _, t := range tasks {
		if err := s.DeleteTask(ctx, t.ID, task.RoleAdmin); err != nil {
			fmt.Printf("Skipping %q: %v\n", t.Title, err)
			continue
		}
		deleted++
	}

	fmt.Printf("Successfully deleted %d task(s)\n", deleted)
	return nil
}
