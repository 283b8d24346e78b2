// Package keymap provides the key bindings of the plan dashboard and the
// lookup from key presses to dashboard commands.
package keymap

import tea "github.com/charmbracelet/bubbletea"

// Command represents a named action that can be triggered by a key binding.
type Command string

const (
	CmdQuit           Command = "quit"
	CmdReload         Command = "reload"
	CmdScrollUp       Command = "scroll_up"
	CmdScrollDown     Command = "scroll_down"
	CmdScrollPageUp   Command = "scroll_page_up"
	CmdScrollPageDown Command = "scroll_page_down"
	CmdScrollToTop    Command = "scroll_to_top"
	CmdScrollToBottom Command = "scroll_to_bottom"
)

// KeyBinding represents a single key binding.
type KeyBinding struct {
	// KeyType is the key. For rune keys use tea.KeyRunes and set Rune.
	KeyType tea.KeyType

	// Rune is the character for rune-based keys.
	Rune rune

	// Command is the action to execute when this binding is triggered.
	Command Command

	// Description is a short label for the help bar.
	Description string
}

// Matches checks if a tea.KeyMsg matches this binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	if msg.Alt {
		return false
	}

	// For special keys (not runes), match the key type directly
	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// String returns a human-readable representation of the key binding.
func (kb KeyBinding) String() string {
	switch kb.KeyType {
	case tea.KeyRunes:
		return string(kb.Rune)
	case tea.KeyUp:
		return "↑"
	case tea.KeyDown:
		return "↓"
	}
	return kb.KeyType.String()
}

// Keymap is an ordered list of bindings. The first match wins.
type Keymap struct {
	Bindings []KeyBinding
}

// Default returns the dashboard bindings.
func Default() *Keymap {
	return &Keymap{
		Bindings: []KeyBinding{
			{KeyType: tea.KeyRunes, Rune: 'r', Command: CmdReload, Description: "reload"},

			// Scrolling
			{KeyType: tea.KeyUp, Command: CmdScrollUp, Description: "scroll"},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdScrollUp, Description: "scroll"},
			{KeyType: tea.KeyDown, Command: CmdScrollDown, Description: "scroll"},
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdScrollDown, Description: "scroll"},
			{KeyType: tea.KeyPgUp, Command: CmdScrollPageUp, Description: "page up"},
			{KeyType: tea.KeyPgDown, Command: CmdScrollPageDown, Description: "page down"},
			{KeyType: tea.KeyRunes, Rune: 'g', Command: CmdScrollToTop, Description: "top"},
			{KeyType: tea.KeyRunes, Rune: 'G', Command: CmdScrollToBottom, Description: "bottom"},

			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "quit"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "quit"},
		},
	}
}

// Lookup returns the command bound to msg.
func (km *Keymap) Lookup(msg tea.KeyMsg) (Command, bool) {
	for _, binding := range km.Bindings {
		if binding.Matches(msg) {
			return binding.Command, true
		}
	}
	return "", false
}

// BindingsFor returns all bindings that trigger cmd, in order.
func (km *Keymap) BindingsFor(cmd Command) []KeyBinding {
	var result []KeyBinding
	for _, binding := range km.Bindings {
		if binding.Command == cmd {
			result = append(result, binding)
		}
	}
	return result
}

// HelpEntry is one item of the help bar: the keys and their label.
type HelpEntry struct {
	Keys        string
	Description string
}

// Help lists the first key bound to each of cmds. Consecutive commands with
// the same description share one entry, their keys joined by "/".
// Commands without bindings are skipped.
func (km *Keymap) Help(cmds ...Command) []HelpEntry {
	var entries []HelpEntry
	for _, cmd := range cmds {
		bindings := km.BindingsFor(cmd)
		if len(bindings) == 0 {
			continue
		}
		first := bindings[0]
		if n := len(entries); n > 0 && entries[n-1].Description == first.Description {
			entries[n-1].Keys += "/" + first.String()
			continue
		}
		entries = append(entries, HelpEntry{Keys: first.String(), Description: first.Description})
	}
	return entries
}
