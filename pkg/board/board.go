// Package board derives the per-column display ordering for the task
// board and keeps persisted manual orders consistent with the live task
// set.
package board

import (
	"sort"
	"strings"
	"time"

	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

// SortMode selects one column's ordering strategy. Each column carries
// its own mode independently.
type SortMode string

const (
	SortDefault          SortMode = "default"
	SortPriority         SortMode = "priority"
	SortCategory         SortMode = "category"
	SortStartTime        SortMode = "startTime"
	SortEndTime          SortMode = "endTime"
	SortExpectedTimeAsc  SortMode = "expectedTime-asc"
	SortExpectedTimeDesc SortMode = "expectedTime-desc"
	SortActualTimeAsc    SortMode = "actualTime-asc"
	SortActualTimeDesc   SortMode = "actualTime-desc"
	SortCustom           SortMode = "custom"
)

// Modes lists every sort mode in cycle order for the UI.
var Modes = []SortMode{
	SortDefault, SortPriority, SortCategory, SortStartTime, SortEndTime,
	SortExpectedTimeAsc, SortExpectedTimeDesc,
	SortActualTimeAsc, SortActualTimeDesc, SortCustom,
}

// Next returns the mode following m in the cycle.
func (m SortMode) Next() SortMode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return SortDefault
}

// SortColumn orders the tasks of one status column. The input is filtered
// to the given status and sorted by mode; the input slice is not mutated.
// All comparisons are stable, so ties keep their incoming order.
func SortColumn(tasks []task.Task, status task.Status, mode SortMode, customOrder []string) []task.Task {
	column := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			column = append(column, t)
		}
	}

	switch mode {
	case SortPriority:
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].Priority == task.PriorityHigh && column[j].Priority != task.PriorityHigh
		})
	case SortCategory:
		// Uncategorized compares as the empty string, so it sorts first.
		sort.SliceStable(column, func(i, j int) bool {
			return strings.ToLower(categoryName(column[i])) < strings.ToLower(categoryName(column[j]))
		})
	case SortStartTime:
		sortByTime(column, func(t task.Task) *time.Time { return t.StartTime }, true)
	case SortEndTime:
		sortByTime(column, func(t task.Task) *time.Time { return t.EndTime }, false)
	case SortExpectedTimeAsc:
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].ExpectedTime < column[j].ExpectedTime
		})
	case SortExpectedTimeDesc:
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].ExpectedTime > column[j].ExpectedTime
		})
	case SortActualTimeAsc:
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].ActualTime < column[j].ActualTime
		})
	case SortActualTimeDesc:
		sort.SliceStable(column, func(i, j int) bool {
			return column[i].ActualTime > column[j].ActualTime
		})
	case SortCustom:
		applyCustomOrder(column, customOrder)
	default:
		if status == task.StatusInProgress {
			// Active timer floats to the top; the rest read oldest-touched
			// first.
			sort.SliceStable(column, func(i, j int) bool {
				ai, aj := column[i].HasActiveTimer(), column[j].HasActiveTimer()
				if ai != aj {
					return ai
				}
				return column[i].UpdatedAt.Before(column[j].UpdatedAt)
			})
		} else {
			sort.SliceStable(column, func(i, j int) bool {
				return column[i].CreatedAt.After(column[j].CreatedAt)
			})
		}
	}

	return column
}

func categoryName(t task.Task) string {
	if t.Category != nil {
		return t.Category.Name
	}
	return ""
}

// sortByTime orders by an optional timestamp. Tasks without the timestamp
// always sort last, regardless of direction.
func sortByTime(column []task.Task, field func(task.Task) *time.Time, asc bool) {
	sort.SliceStable(column, func(i, j int) bool {
		ti, tj := field(column[i]), field(column[j])
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		if asc {
			return ti.Before(*tj)
		}
		return ti.After(*tj)
	})
}

// applyCustomOrder arranges the column to follow the persisted id list.
// Ids missing from the list keep their incoming order after the listed
// ones.
func applyCustomOrder(column []task.Task, order []string) {
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	sort.SliceStable(column, func(i, j int) bool {
		ri, iOK := rank[column[i].ID]
		rj, jOK := rank[column[j].ID]
		if iOK != jOK {
			return iOK
		}
		return ri < rj
	})
}

// WeeklyCompletion returns the completion percentage over the tasks of
// the last seven days ending at now.
func WeeklyCompletion(tasks []task.Task, now time.Time) int {
	cutoff := timeutil.StartOfDay(now.AddDate(0, 0, -6))
	total, completed := 0, 0
	for _, t := range tasks {
		if t.Day.Before(cutoff) || t.Day.After(timeutil.EndOfDay(now)) {
			continue
		}
		total++
		if t.Status == task.StatusCompleted {
			completed++
		}
	}
	return timeutil.CompletionPercentage(completed, total-completed)
}
