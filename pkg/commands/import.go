package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// Import reads a previously exported board file and creates its tasks and
// categories. The format is detected from the file extension. Items that
// fail to create are reported and skipped.
func Import(ctx context.Context, s store.Store, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var file boardFile
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &file)
	default:
		err = json.Unmarshal(content, &file)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}

	categoryIDs := make(map[string]string, len(file.Categories))
	existing, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range existing {
		categoryIDs[c.Name] = c.ID
	}

	for _, c := range file.Categories {
		if _, ok := categoryIDs[c.Name]; ok {
			continue
		}
		created, err := s.CreateCategory(ctx, store.NewCategory{Name: c.Name, Color: c.Color})
		if err != nil {
			fmt.Printf("Skipping category %q: %v\n", c.Name, err)
			continue
		}
		categoryIDs[c.Name] = created.ID
	}

	var added int
	for _, bt := range file.Tasks {
		nt := store.NewTask{
			Title:        bt.Title,
			Description:  bt.Description,
			Status:       task.Status(bt.Status),
			Priority:     task.Priority(bt.Priority),
			ExpectedTime: bt.ExpectedTime,
			ActualTime:   bt.ActualTime,
			CategoryID:   categoryIDs[bt.Category],
			CompletedAt:  bt.CompletedAt,
		}
		if bt.Day != "" {
			day, err := timeutil.ParseDate(bt.Day)
			if err != nil {
				fmt.Printf("Skipping task %q: %v\n", bt.Title, err)
				continue
			}
			nt.Day = day
		}

		if _, err := s.CreateTask(ctx, nt); err != nil {
			fmt.Printf("Skipping task %q: %v\n", bt.Title, err)
			continue
		}
		added++
	}

	fmt.Printf("Imported %d task(s) from %s\n", added, filename)
	return nil
}
