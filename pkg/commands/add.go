package commands

import (
	"context"
	"fmt"
	"time"

	"monodo/pkg/store"
	"monodo/pkg/timeutil"
)

// AddTask creates a task from the command line without opening the board.
// An empty dateStr targets today.
func AddTask(ctx context.Context, s store.Store, title, dateStr string, expectedMinutes int) error {
	day := time.Now()
	if dateStr != "" {
		parsed, err := timeutil.ParseDate(dateStr)
		if err != nil {
			return fmt.Errorf("parsing date: %w", err)
		}
		day = parsed
	}

	created, err := s.CreateTask(ctx, store.NewTask{
		Title:        title,
		ExpectedTime: timeutil.MinutesToSeconds(expectedMinutes),
		Day:          day,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added %q for %s\n", created.Title, timeutil.FormatDate(created.Day))
	return nil
}
