package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/runner"
	"github.com/kataru-lang/kataru/pkg/storyyaml"
	"github.com/kataru-lang/kataru/pkg/validate"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <story-dir>",
	Short: "Play a story in a full-screen Bubble Tea terminal UI",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	st, err := storyyaml.Load(args[0])
	if err != nil {
		return fmt.Errorf("load story: %w", err)
	}
	if err := validate.Story(st); err != nil {
		return fmt.Errorf("validate story: %w", err)
	}

	bm := bookmark.New()
	r, err := runner.New(bm, st)
	if err != nil {
		return fmt.Errorf("start runner: %w", err)
	}

	m := newPlayModel(r)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// overlayKind tracks which interactive surface, if any, is waiting on
// the player — mirroring pkg/tui/app.go's overlayKind state machine,
// scaled down to the two shapes a Runner can hand back that need a
// response (Choices, Input) versus the ones that just need an
// acknowledgement keypress to advance (Dialogue, Command) or none at
// all (End).
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayChoices
	overlayInput
)

type playModel struct {
	r *runner.Runner

	transcript []string
	overlay    overlayKind

	choiceLabels []string
	cursor       int

	inputPrompt string
	inputBuf    string

	journal []string // accumulated notes a "journal" command can append to

	ended bool
	err   error

	width, height int
}

func newPlayModel(r *runner.Runner) *playModel {
	m := &playModel{r: r}
	m.advance("")
	return m
}

// advance drives the runner with input and appends whatever it
// surfaces to the transcript, setting up the next overlay.
func (m *playModel) advance(input string) {
	line, err := m.r.Next(input)
	if err != nil {
		m.err = err
		return
	}

	switch l := line.(type) {
	case runner.LineDialogue:
		m.transcript = append(m.transcript, renderDialogue(l.Dialogue.Name, l.Dialogue.Text, len(l.Dialogue.Attributes)))
		m.overlay = overlayNone

	case runner.LineChoices:
		m.choiceLabels = l.Choices.Labels
		m.cursor = 0
		m.overlay = overlayChoices

	case runner.LineInput:
		m.inputPrompt = ""
		if len(l.Prompts) > 0 {
			m.inputPrompt = l.Prompts[0].Prompt
		}
		m.inputBuf = ""
		m.overlay = overlayInput

	case runner.LineCommand:
		if l.Command.Name == "journal" {
			if v, ok := l.Command.Params.Get("text"); ok {
				m.journal = append(m.journal, v.String())
			}
			m.advance("")
			return
		}
		var buf strings.Builder
		_ = dispatchCommand(&buf, l.Command)
		if buf.Len() > 0 {
			m.transcript = append(m.transcript, strings.TrimRight(buf.String(), "\n"))
		}
		m.overlay = overlayNone
		m.advance("")

	case runner.LineInvalidChoice:
		m.transcript = append(m.transcript, warnStyle.Render("invalid choice"))
		m.overlay = overlayNone

	case runner.LineEnd:
		m.ended = true
		m.overlay = overlayNone
	}
}

func (m *playModel) Init() tea.Cmd { return nil }

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.ended || m.err != nil {
			if key.Matches(msg, keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, keys.Journal) {
			m.transcript = append(m.transcript, renderJournal(m.journal))
			return m, nil
		}

		switch m.overlay {
		case overlayChoices:
			switch {
			case key.Matches(msg, keys.Up):
				if m.cursor > 0 {
					m.cursor--
				}
			case key.Matches(msg, keys.Down):
				if m.cursor < len(m.choiceLabels)-1 {
					m.cursor++
				}
			case key.Matches(msg, keys.Confirm):
				choice := m.choiceLabels[m.cursor]
				m.transcript = append(m.transcript, choicePromptStyle.Render("> "+choice))
				m.advance(choice)
			default:
				if n := digitIndex(msg.String()); n >= 0 && n < len(m.choiceLabels) {
					choice := m.choiceLabels[n]
					m.transcript = append(m.transcript, choicePromptStyle.Render("> "+choice))
					m.advance(choice)
				}
			}

		case overlayInput:
			switch {
			case key.Matches(msg, keys.Confirm):
				answer := m.inputBuf
				m.transcript = append(m.transcript, choicePromptStyle.Render("> "+answer))
				m.advance(answer)
			case msg.String() == "backspace":
				if len(m.inputBuf) > 0 {
					m.inputBuf = m.inputBuf[:len(m.inputBuf)-1]
				}
			default:
				if len(msg.String()) == 1 {
					m.inputBuf += msg.String()
				}
			}

		default:
			if key.Matches(msg, keys.Confirm) || msg.String() == " " {
				m.advance("")
			}
		}
	}
	return m, nil
}

func digitIndex(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '1')
}

// journalRenderer is a package-level glamour renderer, grounded on
// pkg/tui/markdown.go's init-time renderer + fallback-to-raw pattern.
var journalRenderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err == nil {
		journalRenderer = r
	}
}

func renderJournal(entries []string) string {
	if len(entries) == 0 {
		return dimStyle.Render("(journal is empty)")
	}
	var md strings.Builder
	md.WriteString("## Journal\n\n")
	for _, e := range entries {
		md.WriteString("- " + e + "\n")
	}
	if journalRenderer == nil {
		return md.String()
	}
	out, err := journalRenderer.Render(md.String())
	if err != nil {
		return md.String()
	}
	return strings.TrimRight(out, "\n")
}

var playPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)

func (m *playModel) View() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error()) + "\n" + dimStyle.Render("press q to quit")
	}

	var body strings.Builder
	history := m.transcript
	if len(history) > 20 {
		history = history[len(history)-20:]
	}
	for _, line := range history {
		body.WriteString(line)
		body.WriteString("\n")
	}

	switch {
	case m.ended:
		body.WriteString(successStyle.Render("— The End —"))
	case m.overlay == overlayChoices:
		body.WriteString("\n" + choicePromptStyle.Render("What do you do?") + "\n")
		for i, label := range m.choiceLabels {
			prefix := "  "
			line := fmt.Sprintf("%s%d) %s", prefix, i+1, label)
			if i == m.cursor {
				line = choiceLabelStyle.Render("> " + fmt.Sprintf("%d) %s", i+1, label))
			}
			body.WriteString(line + "\n")
		}
	case m.overlay == overlayInput:
		body.WriteString("\n" + choicePromptStyle.Render(m.inputPrompt) + " " + m.inputBuf + "█\n")
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	panel := playPanelStyle.Width(width - 4).Render(body.String())

	return panel + "\n" + keyBarText(m)
}
