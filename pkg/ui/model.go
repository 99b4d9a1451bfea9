package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"monodo/pkg/board"
	"monodo/pkg/config"
	"monodo/pkg/keymaps"
	"monodo/pkg/store"
	"monodo/pkg/task"
	"monodo/pkg/timer"
)

// InputMode represents the current input mode
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	DeleteConfirmMode
	HelpViewMode
)

// columns fixes the board layout: backlog, in progress, completed.
var columns = []task.Status{
	task.StatusBacklog,
	task.StatusInProgress,
	task.StatusCompleted,
}

// tickMsg drives the once-a-second redraw while a timer runs.
type tickMsg time.Time

// Model represents the application state
type Model struct {
	store  store.Store
	engine *timer.Engine
	role   task.Role

	tasks         []task.Task
	width, height int
	err           error

	// Configuration
	config config.Config
	keyMap keymaps.KeyMap

	// View state
	viewDate     time.Time
	focusedCol   int
	cursors      [3]int
	sortModes    [3]board.SortMode
	orders       board.Orders
	notice      string
	noticeUntil time.Time
	notices     chan string

	// Form state
	mode          InputMode
	titleInput    textinput.Model
	descInput     textinput.Model
	expectedInput textinput.Model
	activeInput   int

	// Delete state
	deleteTarget *task.Task
}

// NewModel creates a new UI model over the given store
func NewModel(s store.Store, cfg config.Config, role task.Role) Model {
	titleInput := textinput.New()
	titleInput.Placeholder = "Title"
	titleInput.Focus()
	titleInput.Width = 40

	descInput := textinput.New()
	descInput.Placeholder = "Description (optional)"
	descInput.Width = 40

	expectedInput := textinput.New()
	expectedInput.Placeholder = "Expected minutes (optional)"
	expectedInput.Width = 40

	notices := make(chan string, 8)

	m := Model{
		store:   s,
		role:    role,
		config:  cfg,
		keyMap:  keymaps.BuildKeyMap(cfg.KeyMap),
		notices: notices,
		engine: timer.NewEngine(s,
			timer.WithRole(role),
			timer.WithNotifier(func(msg string) {
				select {
				case notices <- msg:
				default:
				}
			}),
		),
		mode:          NormalMode,
		titleInput:    titleInput,
		descInput:     descInput,
		expectedInput: expectedInput,
		viewDate:      time.Now(),
		focusedCol:    1,
		orders:        board.Orders{},
	}
	for i := range m.sortModes {
		m.sortModes[i] = board.SortDefault
	}

	m.loadTasks()
	return m
}

// Init starts the redraw ticker (required by Bubble Tea Model interface)
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// resetInputs clears all form inputs
func (m *Model) resetInputs() {
	m.titleInput.Reset()
	m.descInput.Reset()
	m.expectedInput.Reset()

	m.activeInput = 0
	m.titleInput.Focus()
	m.descInput.Blur()
	m.expectedInput.Blur()
}
