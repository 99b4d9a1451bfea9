package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"monodo/pkg/board"
	"monodo/pkg/task"
	"monodo/pkg/timer"
	"monodo/pkg/timeutil"
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedBorderStyle = borderStyle.Copy().
				BorderForeground(lipgloss.Color("205"))

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("205")).
			Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

var columnTitles = map[task.Status]string{
	task.StatusBacklog:    "Backlog",
	task.StatusInProgress: "In Progress",
	task.StatusCompleted:  "Completed",
}

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		sb.WriteString(titleBarStyle.Render(fmt.Sprintf(" monodo — %s ", timeutil.FormatDate(m.viewDate))))
		sb.WriteString("\n\n")

		rendered := make([]string, 0, len(columns))
		for i := range columns {
			rendered = append(rendered, m.renderColumn(i))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
		sb.WriteString("\n")

		sb.WriteString(dimStyle.Render(fmt.Sprintf(
			"Week: %d%% done | sort: %s",
			board.WeeklyCompletion(m.tasks, time.Now()),
			m.sortModes[m.focusedCol],
		)))
		sb.WriteString("\n")

	case AddMode:
		sb.WriteString(titleBarStyle.Render(" Add Task "))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DeleteConfirmMode:
		sb.WriteString(titleBarStyle.Copy().Background(lipgloss.Color("9")).Render(" Delete Task "))
		sb.WriteString("\n\n")
		if m.deleteTarget != nil {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", m.deleteTarget.Title))
			if m.deleteTarget.Description != "" {
				sb.WriteString(fmt.Sprintf("Description: %s\n", m.deleteTarget.Description))
			}
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case HelpViewMode:
		sb.WriteString(m.renderHelp())
	}

	if m.err != nil {
		sb.WriteString(noticeStyle.Render(fmt.Sprintf("\nError: %v", m.err)))
	}
	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(noticeStyle.Render(m.notice))
	}

	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

// renderColumn draws one status column with its tasks.
func (m Model) renderColumn(idx int) string {
	status := columns[idx]
	tasks := m.column(idx)

	var sb strings.Builder
	sb.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[status], len(tasks))))
	sb.WriteString("\n\n")

	if len(tasks) == 0 {
		sb.WriteString(dimStyle.Render("no tasks"))
	}

	for i, t := range tasks {
		line := m.renderTaskLine(t)
		if idx == m.focusedCol && i == m.cursors[idx] {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	width := 30
	if m.width > 0 {
		if w := m.width/len(columns) - 4; w > 20 {
			width = w
		}
	}

	style := borderStyle
	if idx == m.focusedCol {
		style = focusedBorderStyle
	}
	return style.Width(width).Render(sb.String())
}

// renderTaskLine draws one task row: title, category marker, and the
// relevant time readout.
func (m Model) renderTaskLine(t task.Task) string {
	var parts []string

	if t.Priority == task.PriorityHigh {
		parts = append(parts, "!")
	}
	parts = append(parts, t.Title)

	if t.Category != nil {
		catStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Category.Color))
		parts = append(parts, catStyle.Render("["+t.Category.Name+"]"))
	}

	switch {
	case m.engine.SessionState(t.ID) != timer.Stopped:
		readout := m.engine.Display(t.ID)
		if m.engine.SessionState(t.ID) == timer.Paused {
			readout += " (paused)"
		}
		parts = append(parts, timerStyle.Render(readout))
	case t.Status == task.StatusCompleted:
		parts = append(parts, dimStyle.Render(timeutil.FormatTimeShort(t.ActualTime)))
	case t.ExpectedTime > 0:
		parts = append(parts, dimStyle.Render(timeutil.FormatTimeShort(t.ExpectedTime)))
	}

	return strings.Join(parts, " ")
}

// renderForm renders the input form for adding tasks
func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString("Title:\n")
	sb.WriteString(m.titleInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("Description:\n")
	sb.WriteString(m.descInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("Expected time (minutes):\n")
	sb.WriteString(m.expectedInput.View())

	return sb.String()
}

// renderHelp lists every command with its binding.
func (m Model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
	sb.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	addCommand := func(binding key.Binding) {
		sb.WriteString(fmt.Sprintf("%s: %s\n",
			binding.Help().Desc,
			keyStyle.Render(binding.Help().Key)))
	}

	addCommand(m.keyMap.QuitApp)
	addCommand(m.keyMap.ShowHelp)
	addCommand(m.keyMap.AddTask)
	addCommand(m.keyMap.DeleteTask)
	addCommand(m.keyMap.StartTimer)
	addCommand(m.keyMap.StopTimer)
	addCommand(m.keyMap.PauseTimer)
	addCommand(m.keyMap.CompleteTask)

	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Navigation Commands"))
	sb.WriteString("\n\n")

	addCommand(m.keyMap.PrevColumn)
	addCommand(m.keyMap.NextColumn)
	addCommand(m.keyMap.CursorUp)
	addCommand(m.keyMap.CursorDown)
	addCommand(m.keyMap.MoveLeft)
	addCommand(m.keyMap.MoveRight)
	addCommand(m.keyMap.ReorderUp)
	addCommand(m.keyMap.ReorderDown)
	addCommand(m.keyMap.CycleSortMode)
	addCommand(m.keyMap.PrevDay)
	addCommand(m.keyMap.NextDay)
	addCommand(m.keyMap.JumpToToday)

	return sb.String()
}

// helpBar renders a sleek status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	separator := dimStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), dimStyle.Render(desc)))
	}

	switch m.mode {
	case NormalMode:
		addAction("a", "add")
		addAction("d", "del")
		addAction("enter", "start")
		addAction("s", "stop")
		addAction("p", "pause")
		addAction("c", "done")
		addAction("o", "sort")
		addAction("ctrl+b", "help")
		addAction("q", "quit")

	case AddMode:
		addAction("tab", "next field")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case HelpViewMode:
		addAction("ctrl+b/esc", "back")
		addAction("q", "quit")
	}

	return strings.Join(actions, separator)
}
