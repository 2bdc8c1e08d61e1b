// Package flatten turns a nested Passage (whose Branches/Choices lines
// carry their own nested bodies) into the flat, indexable opcode array
// the Runner actually steps through, inserting Break sentinels between
// adjacent inline bodies and a trailing Return sentinel.
package flatten

import "github.com/kataru-lang/kataru/pkg/story"

// Passage flattens an entire authored passage and appends the
// terminating Return sentinel every flattened passage ends with.
func Passage(lines story.Passage) []story.RawLine {
	out := Lines([]story.RawLine(lines))
	return append(out, story.LineReturn{})
}

// Lines flattens a slice of RawLines without adding a trailing Return,
// used both for whole passages (via Passage) and recursively for the
// inline bodies nested inside Branches/Choices.
func Lines(lines []story.RawLine) []story.RawLine {
	out := make([]story.RawLine, 0, story.LinesLen(lines))
	appendLines(&out, lines)
	return out
}

func appendLines(out *[]story.RawLine, lines []story.RawLine) {
	for _, line := range lines {
		switch l := line.(type) {
		case story.LineBranches:
			*out = append(*out, l)
			for i, arm := range l.Branches.Arms {
				appendLines(out, arm.Body)
				if i != len(l.Branches.Arms)-1 {
					*out = append(*out, story.LineBreak{})
				}
			}
		case story.LineChoices:
			*out = append(*out, l)
			appendChoiceBodies(out, l.Choices)
		default:
			*out = append(*out, line)
		}
	}
}

// appendChoiceBodies appends every inline Lines-target body, each
// followed by a Break, then the default body with no leading break
// (the runner enters the default by skipping straight to its first
// line; no inline body falls through into it).
func appendChoiceBodies(out *[]story.RawLine, raw story.RawChoices) {
	for _, arm := range raw.Choices {
		if arm.Choice.IsConditional {
			for _, cond := range arm.Choice.Conditional {
				appendInlineBody(out, cond.Target)
			}
			continue
		}
		appendInlineBody(out, arm.Choice.Target)
	}
	if raw.Default.Kind == story.TargetLines {
		appendLines(out, raw.Default.Lines)
	}
}

func appendInlineBody(out *[]story.RawLine, target story.ChoiceTarget) {
	if target.Kind != story.TargetLines {
		return
	}
	appendLines(out, target.Lines)
	*out = append(*out, story.LineBreak{})
}
