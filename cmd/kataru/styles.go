package main

import "github.com/charmbracelet/lipgloss"

// Palette adapts to terminal capabilities via lipgloss, the same way
// pkg/tui/styles.go picks a fixed set of ANSI colors rather than
// reaching for a theme system.
var (
	colorCyan   = lipgloss.Color("51")
	colorYellow = lipgloss.Color("214")
	colorRed    = lipgloss.Color("196")
	colorGreen  = lipgloss.Color("42")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

var (
	speakerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	textStyle    = lipgloss.NewStyle().Italic(true).Foreground(colorWhite)
	emphasisStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)

	choicePromptStyle = lipgloss.NewStyle().Foreground(colorYellow)
	choiceLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	warnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)

	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	keyDescStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// renderDialogue formats a runner.Dialogue for the plain-terminal
// renderer: speaker bold, text italic. When the line has any
// attributed span, the whole text is rendered with one generic
// emphasis style instead; individual spans are not styled on their
// own, and tag names ("shout", "whisper") get no distinct treatment,
// since a story's tag names are author-defined.
func renderDialogue(name, text string, spanCount int) string {
	body := textStyle.Render(text)
	if spanCount > 0 {
		body = emphasisStyle.Render(text)
	}
	if name == "" {
		return body
	}
	return speakerStyle.Render(name+":") + " " + body
}
