package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":      {"ctrl+b", "show/hide commands"},
	"QuitApp":       {"q", "quit"},
	"PrevColumn":    {"left,h", "previous column"},
	"NextColumn":    {"right,l", "next column"},
	"CursorUp":      {"up,k", "move up"},
	"CursorDown":    {"down,j", "move down"},
	"AddTask":       {"a", "add task"},
	"DeleteTask":    {"d", "delete task"},
	"StartTimer":    {"enter", "start timer"},
	"StopTimer":     {"s", "stop timer"},
	"PauseTimer":    {"p", "pause/resume timer"},
	"CompleteTask":  {"c", "complete task"},
	"MoveLeft":      {"shift+left", "move task to previous column"},
	"MoveRight":     {"shift+right", "move task to next column"},
	"ReorderUp":     {"shift+up", "move task up"},
	"ReorderDown":   {"shift+down", "move task down"},
	"CycleSortMode": {"o", "cycle sort mode"},
	"PrevDay":       {"ctrl+left", "previous day"},
	"NextDay":       {"ctrl+right", "next day"},
	"JumpToToday":   {"t", "jump to today"},
}

type KeyMap struct {
	ShowHelp      key.Binding
	QuitApp       key.Binding
	PrevColumn    key.Binding
	NextColumn    key.Binding
	CursorUp      key.Binding
	CursorDown    key.Binding
	AddTask       key.Binding
	DeleteTask    key.Binding
	StartTimer    key.Binding
	StopTimer     key.Binding
	PauseTimer    key.Binding
	CompleteTask  key.Binding
	MoveLeft      key.Binding
	MoveRight     key.Binding
	ReorderUp     key.Binding
	ReorderDown   key.Binding
	CycleSortMode key.Binding
	PrevDay       key.Binding
	NextDay       key.Binding
	JumpToToday   key.Binding
}

func BuildKeyMap(configOverrides map[string]string) KeyMap {
	km := KeyMap{}
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := configOverrides[action]; exists && override != "" {
			keyStr = override
		}

		binding := parseKeyBinding(keyStr, def.DefaultKey, def.Help)
		switch action {
		case "ShowHelp":
			km.ShowHelp = binding
		case "QuitApp":
			km.QuitApp = binding
		case "PrevColumn":
			km.PrevColumn = binding
		case "NextColumn":
			km.NextColumn = binding
		case "CursorUp":
			km.CursorUp = binding
		case "CursorDown":
			km.CursorDown = binding
		case "AddTask":
			km.AddTask = binding
		case "DeleteTask":
			km.DeleteTask = binding
		case "StartTimer":
			km.StartTimer = binding
		case "StopTimer":
			km.StopTimer = binding
		case "PauseTimer":
			km.PauseTimer = binding
		case "CompleteTask":
			km.CompleteTask = binding
		case "MoveLeft":
			km.MoveLeft = binding
		case "MoveRight":
			km.MoveRight = binding
		case "ReorderUp":
			km.ReorderUp = binding
		case "ReorderDown":
			km.ReorderDown = binding
		case "CycleSortMode":
			km.CycleSortMode = binding
		case "PrevDay":
			km.PrevDay = binding
		case "NextDay":
			km.NextDay = binding
		case "JumpToToday":
			km.JumpToToday = binding
		}
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if keyStr == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	keys := strings.Split(keyStr, ",")
	for i, k := range keys {
		keys[i] = strings.TrimSpace(k)
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keys[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
