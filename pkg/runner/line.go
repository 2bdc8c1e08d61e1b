// Package runner steps a Bookmark through a Story one output Line at a
// time, mirroring the original engine's Runner::next() dispatch loop:
// most RawLine kinds are consumed silently and the loop continues,
// while a handful (dialogue, choices, input, commands, end-of-story)
// produce a Line the host must act on before calling Next again.
package runner

import (
	"github.com/kataru-lang/kataru/pkg/attr"
	"github.com/kataru-lang/kataru/pkg/choice"
	"github.com/kataru-lang/kataru/pkg/story"
)

// Line is one host-visible step of a running story. It is a closed sum
// type analogous to story.RawLine.
type Line interface {
	line()
}

// Dialogue is a speaker/text pair ready for display, with its
// interpolation and tag stripping already applied.
type Dialogue struct {
	Name       string
	Text       string
	Attributes []attr.AttributedSpan
}

// LineDialogue is emitted for both LineDialogue and LineText raw lines.
type LineDialogue struct{ Dialogue Dialogue }

// LineChoices is emitted when a non-empty choices block is reached.
type LineChoices struct{ Choices choice.Choices }

// LineCommand is emitted for both named and positional commands, fully
// merged against their declared defaults and promoted.
type LineCommand struct{ Command story.Command }

// LineInput is emitted when an input line is reached; the host's next
// Next(answer) call binds answer to every prompted variable.
type LineInput struct{ Prompts []story.InputPrompt }

// LineInvalidChoice is emitted when the host's input didn't match any
// displayed choice label.
type LineInvalidChoice struct{}

// LineEnd is emitted when Return pops an empty call stack: the story
// has finished.
type LineEnd struct{}

func (LineDialogue) line()      {}
func (LineChoices) line()       {}
func (LineCommand) line()       {}
func (LineInput) line()         {}
func (LineInvalidChoice) line() {}
func (LineEnd) line()           {}
