package main

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the play command's key bindings, grounded on
// pkg/tui/keys.go's keyMap — a struct of key.Binding plus a package
// var, rather than a bubbles/help.KeyMap (the teacher never adopts
// that interface either, preferring to render its own hint string).
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Journal key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "select"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "select"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Journal: key.NewBinding(
		key.WithKeys("ctrl+j"),
		key.WithHelp("ctrl+j", "journal"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// keyBarText renders the context-sensitive key hint string, the same
// concatenation pkg/tui/keys.go's keyBarText builds from keyStyle and
// keyDescStyle rather than a rendered help.Model.
func keyBarText(m *playModel) string {
	if m.ended {
		return keyStyle.Render("q") + keyDescStyle.Render(":quit")
	}
	switch m.overlay {
	case overlayChoices:
		return keyStyle.Render(keys.Up.Help().Key) + keyDescStyle.Render(":select") + "  " +
			keyStyle.Render(keys.Confirm.Help().Key) + keyDescStyle.Render(":"+keys.Confirm.Help().Desc) + "  " +
			keyStyle.Render("1-9") + keyDescStyle.Render(":quick") + "  " +
			keyStyle.Render(keys.Quit.Help().Key) + keyDescStyle.Render(":quit")
	case overlayInput:
		return keyStyle.Render(keys.Confirm.Help().Key) + keyDescStyle.Render(":submit") + "  " +
			keyStyle.Render(keys.Quit.Help().Key) + keyDescStyle.Render(":quit")
	default:
		return keyStyle.Render(keys.Confirm.Help().Key) + keyDescStyle.Render(":advance") + "  " +
			keyStyle.Render(keys.Journal.Help().Key) + keyDescStyle.Render(":journal") + "  " +
			keyStyle.Render(keys.Quit.Help().Key) + keyDescStyle.Render(":quit")
	}
}
