package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// boardFile is the portable export format shared by Export and Import.
type boardFile struct {
	Tasks      []boardTask     `json:"tasks" yaml:"tasks"`
	Categories []boardCategory `json:"categories" yaml:"categories"`
}

type boardTask struct {
	Title        string     `json:"title" yaml:"title"`
	Description  string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status       string     `json:"status" yaml:"status"`
	Priority     string     `json:"priority" yaml:"priority"`
	ExpectedTime int        `json:"expectedTime,omitempty" yaml:"expected_time,omitempty"`
	ActualTime   int        `json:"actualTime,omitempty" yaml:"actual_time,omitempty"`
	Category     string     `json:"category,omitempty" yaml:"category,omitempty"`
	Day          string     `json:"day" yaml:"day"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" yaml:"completed_at,omitempty"`
}

type boardCategory struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

func toBoardFile(tasks []task.Task, cats []task.Category) boardFile {
	var out boardFile
	for _, c := range cats {
		out.Categories = append(out.Categories, boardCategory{Name: c.Name, Color: c.Color})
	}
	for _, t := range tasks {
		bt := boardTask{
			Title:        t.Title,
			Description:  t.Description,
			Status:       string(t.Status),
			Priority:     string(t.Priority),
			ExpectedTime: t.ExpectedTime,
			ActualTime:   t.ActualTime,
			Day:          timeutil.FormatDate(t.Day),
			CompletedAt:  t.CompletedAt,
		}
		if t.Category != nil {
			bt.Category = t.Category.Name
		}
		out.Tasks = append(out.Tasks, bt)
	}
	return out
}

// Export writes every task and category to a file. The format is chosen by
// the format flag: "json" or "yaml".
func Export(ctx context.Context, s store.Store, filename, format string) error {
	tasks, err := s.ListTasks(ctx, store.Filter{})
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}

	file := toBoardFile(tasks, cats)

	var content []byte
	switch format {
	case "json":
		content, err = json.MarshalIndent(file, "", "  ")
	case "yaml", "yml":
		content, err = yaml.Marshal(file)
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return err
	}

	fmt.Printf("Exported %d task(s) and %d categor(ies) to %s\n", len(file.Tasks), len(file.Categories), filename)
	return nil
}
