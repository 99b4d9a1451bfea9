package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"monodo/pkg/task"
	"monodo/pkg/timer"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		m.drainNotices()
		if m.notice != "" && time.Now().After(m.noticeUntil) {
			m.notice = ""
		}
		// Redraw for the running timer and pick up write-through state.
		if m.engine.ActiveTask() != "" {
			m.loadTasks()
		}
		return m, tickCmd()

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			switch {
			case key.Matches(msg, m.keyMap.ShowHelp):
				m.mode = HelpViewMode

			case key.Matches(msg, m.keyMap.QuitApp):
				m.engine.Sync()
				m.engine.Close()
				return m, tea.Quit

			case key.Matches(msg, m.keyMap.PrevColumn):
				if m.focusedCol > 0 {
					m.focusedCol--
				}

			case key.Matches(msg, m.keyMap.NextColumn):
				if m.focusedCol < len(columns)-1 {
					m.focusedCol++
				}

			case key.Matches(msg, m.keyMap.CursorUp):
				if m.cursors[m.focusedCol] > 0 {
					m.cursors[m.focusedCol]--
				}

			case key.Matches(msg, m.keyMap.CursorDown):
				if m.cursors[m.focusedCol] < len(m.column(m.focusedCol))-1 {
					m.cursors[m.focusedCol]++
				}

			case key.Matches(msg, m.keyMap.AddTask):
				m.mode = AddMode
				m.resetInputs()

			case key.Matches(msg, m.keyMap.DeleteTask):
				if t := m.selectedTask(); t != nil {
					m.mode = DeleteConfirmMode
					m.deleteTarget = t
				}

			case key.Matches(msg, m.keyMap.StartTimer):
				if t := m.selectedTask(); t != nil && t.Status == task.StatusInProgress {
					if err := m.engine.Start(m.ctx(), t.ID); err != nil {
						m.setNotice(err.Error())
					}
					m.loadTasks()
				}

			case key.Matches(msg, m.keyMap.StopTimer):
				if t := m.selectedTask(); t != nil {
					if err := m.engine.Stop(m.ctx(), t.ID); err != nil {
						m.setNotice(err.Error())
					}
					m.loadTasks()
				}

			case key.Matches(msg, m.keyMap.PauseTimer):
				if t := m.selectedTask(); t != nil {
					switch m.engine.SessionState(t.ID) {
					case timer.Running:
						m.engine.Pause(t.ID)
					case timer.Paused:
						m.engine.Resume(t.ID)
					}
				}

			case key.Matches(msg, m.keyMap.CompleteTask):
				if t := m.selectedTask(); t != nil {
					if err := m.engine.Complete(m.ctx(), t.ID); err != nil {
						m.setNotice(err.Error())
					}
					m.loadTasks()
				}

			case key.Matches(msg, m.keyMap.MoveLeft):
				if t := m.selectedTask(); t != nil {
					m.moveTask(*t, -1)
				}

			case key.Matches(msg, m.keyMap.MoveRight):
				if t := m.selectedTask(); t != nil {
					m.moveTask(*t, 1)
				}

			case key.Matches(msg, m.keyMap.ReorderUp):
				if t := m.selectedTask(); t != nil {
					m.reorderTask(*t, -1)
				}

			case key.Matches(msg, m.keyMap.ReorderDown):
				if t := m.selectedTask(); t != nil {
					m.reorderTask(*t, 1)
				}

			case key.Matches(msg, m.keyMap.CycleSortMode):
				m.sortModes[m.focusedCol] = m.sortModes[m.focusedCol].Next()
				m.clampCursors()

			case key.Matches(msg, m.keyMap.PrevDay):
				m.viewDate = m.viewDate.AddDate(0, 0, -1)
				m.loadTasks()

			case key.Matches(msg, m.keyMap.NextDay):
				m.viewDate = m.viewDate.AddDate(0, 0, 1)
				m.loadTasks()

			case key.Matches(msg, m.keyMap.JumpToToday):
				m.viewDate = time.Now()
				m.loadTasks()
			}

		case AddMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.resetInputs()

			case "tab":
				m.focusNextInput()

			case "shift+tab":
				m.focusPreviousInput()

			case "enter":
				if m.activeInput == 2 { // Submit on enter from the last field
					m.submitForm()
				} else {
					m.focusNextInput()
				}
			}

			// Handle input updates
			switch m.activeInput {
			case 0:
				m.titleInput, cmd = m.titleInput.Update(msg)
				cmds = append(cmds, cmd)
			case 1:
				m.descInput, cmd = m.descInput.Update(msg)
				cmds = append(cmds, cmd)
			case 2:
				m.expectedInput, cmd = m.expectedInput.Update(msg)
				cmds = append(cmds, cmd)
			}

		case DeleteConfirmMode:
			switch msg.String() {
			case "y", "Y":
				if m.deleteTarget != nil {
					err := m.store.DeleteTask(m.ctx(), m.deleteTarget.ID, m.role)
					if err != nil {
						m.setNotice(err.Error())
					} else {
						m.loadTasks()
					}
				}
				m.mode = NormalMode
				m.deleteTarget = nil

			case "n", "N", "esc":
				m.mode = NormalMode
				m.deleteTarget = nil
			}

		case HelpViewMode:
			switch msg.String() {
			case "esc", "ctrl+b":
				m.mode = NormalMode
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}

	return m, tea.Batch(cmds...)
}
