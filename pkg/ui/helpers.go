package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"monodo/pkg/board"
	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timeutil"
)

func (m *Model) ctx() context.Context {
	return context.Background()
}

// loadTasks refreshes the board from the store and reconciles the manual
// orders against the new task set.
func (m *Model) loadTasks() {
	day := m.viewDate
	tasks, err := m.store.ListTasks(m.ctx(), store.Filter{Day: &day})
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.tasks = tasks

	for _, status := range columns {
		var inColumn []task.Task
		for _, t := range tasks {
			if t.Status == status {
				inColumn = append(inColumn, t)
			}
		}
		m.orders[status] = board.ReconcileOrder(m.orders[status], inColumn)
	}
	m.clampCursors()
}

// column returns the focused-or-indexed column's tasks in display order.
func (m *Model) column(idx int) []task.Task {
	status := columns[idx]
	return board.SortColumn(m.tasks, status, m.sortModes[idx], m.orders[status])
}

// selectedTask returns the task under the cursor in the focused column.
func (m *Model) selectedTask() *task.Task {
	col := m.column(m.focusedCol)
	cursor := m.cursors[m.focusedCol]
	if cursor < 0 || cursor >= len(col) {
		return nil
	}
	t := col[cursor]
	return &t
}

func (m *Model) clampCursors() {
	for i := range columns {
		n := len(m.column(i))
		if m.cursors[i] >= n {
			m.cursors[i] = n - 1
		}
		if m.cursors[i] < 0 {
			m.cursors[i] = 0
		}
	}
}

// setNotice shows a transient message in the footer.
func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeUntil = time.Now().Add(3 * time.Second)
}

// drainNotices pulls pending engine notices into the footer.
func (m *Model) drainNotices() {
	for {
		select {
		case text := <-m.notices:
			m.setNotice(text)
		default:
			return
		}
	}
}

// moveTask drags the selected task into the adjacent column. The order
// lists only change when the transition validator allows the move.
func (m *Model) moveTask(t task.Task, dir int) {
	target := m.focusedCol + dir
	if target < 0 || target >= len(columns) {
		return
	}
	to := columns[target]

	if err := board.Drag(m.orders, t, to, -1, m.role.Privileged()); err != nil {
		m.setNotice(err.Error())
		return
	}

	if _, err := m.store.UpdateTaskStatus(m.ctx(), t.ID, store.StatusChange{
		Status: to,
		Role:   m.role,
	}); err != nil {
		// Put the order lists back the way they were.
		m.orders[to] = removeFromOrder(m.orders[to], t.ID)
		m.orders[t.Status] = append(m.orders[t.Status], t.ID)
		m.setNotice(err.Error())
		return
	}
	m.loadTasks()
}

func removeFromOrder(order []string, id string) []string {
	out := order[:0:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// reorderTask moves the selected task up or down under manual ordering.
// Using it switches the column to custom mode.
func (m *Model) reorderTask(t task.Task, dir int) {
	status := columns[m.focusedCol]
	m.sortModes[m.focusedCol] = board.SortCustom

	order := m.orders[status]
	pos := -1
	for i, id := range order {
		if id == t.ID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}
	target := pos + dir
	if target < 0 || target >= len(order) {
		return
	}
	m.orders[status] = board.MoveID(order, t.ID, target)
	m.cursors[m.focusedCol] = target
}

// submitForm creates a task on the focused column's day from the form
// fields.
func (m *Model) submitForm() {
	title := strings.TrimSpace(m.titleInput.Value())
	desc := strings.TrimSpace(m.descInput.Value())
	expectedRaw := strings.TrimSpace(m.expectedInput.Value())

	expected := 0
	if expectedRaw != "" {
		minutes, err := strconv.Atoi(expectedRaw)
		if err != nil || minutes < 0 {
			m.setNotice("expected time must be a number of minutes")
			return
		}
		expected = timeutil.MinutesToSeconds(minutes)
	}

	_, err := m.store.CreateTask(m.ctx(), store.NewTask{
		Title:        title,
		Description:  desc,
		Status:       columns[m.focusedCol],
		ExpectedTime: expected,
		Day:          m.viewDate,
	})
	if err != nil {
		m.setNotice(err.Error())
		return
	}

	m.mode = NormalMode
	m.resetInputs()
	m.loadTasks()
}

// focusNextInput cycles through the form inputs
func (m *Model) focusNextInput() {
	m.setInputFocus((m.activeInput + 1) % 3)
}

// focusPreviousInput cycles through the form inputs
func (m *Model) focusPreviousInput() {
	m.setInputFocus((m.activeInput + 2) % 3)
}

func (m *Model) setInputFocus(idx int) {
	m.activeInput = idx
	m.titleInput.Blur()
	m.descInput.Blur()
	m.expectedInput.Blur()
	switch idx {
	case 0:
		m.titleInput.Focus()
	case 1:
		m.descInput.Focus()
	case 2:
		m.expectedInput.Focus()
	}
}
