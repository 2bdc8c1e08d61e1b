// Package kerr defines the two error kinds produced anywhere in the
// Kataru engine: ParseError for load-time story defects and
// RuntimeError for defects only reachable while running a Bookmark
// through a Story.
package kerr

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/story"
)

// ParseError reports a defect found while loading or statically
// validating a story: a malformed YAML document, an unresolvable
// goto/call target, a type mismatch in a declared set-command, etc.
type ParseError struct {
	Namespace string
	Passage   string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Passage != "" {
		return fmt.Sprintf("parse error in %s:%s: %v", e.Namespace, e.Passage, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError wraps err with the passage it was found in.
func NewParseError(namespace, passage string, err error) *ParseError {
	return &ParseError{Namespace: namespace, Passage: passage, Err: err}
}

// RuntimeError reports a defect encountered while actually stepping a
// Runner, carrying the Position where it happened.
type RuntimeError struct {
	Position story.Position
	Err      error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %s:%s:%d: %v", e.Position.Namespace, e.Position.Passage, e.Position.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// NewRuntimeError wraps err with the position it happened at.
func NewRuntimeError(pos story.Position, err error) *RuntimeError {
	return &RuntimeError{Position: pos, Err: err}
}
