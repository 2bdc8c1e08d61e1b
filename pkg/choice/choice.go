// Package choice implements the Choices-arm reverse-walk inheritance
// algorithm and the Branches sequential-skip algorithm: the two
// load-bearing pieces of bookkeeping the flattener and runner rely on
// to know how many lines to skip when a choice or branch is taken.
package choice

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

// Choices is the player-facing view of a RawChoices: the labels to
// present, in declaration order, and an optional timeout.
type Choices struct {
	Labels  []string
	Timeout float64
}

func (c Choices) Len() int     { return len(c.Labels) }
func (c Choices) Empty() bool  { return len(c.Labels) == 0 }

// Resolution is the result of walking a RawChoices: the labels to
// display plus the lookup tables the runner consults when the player
// picks one.
type Resolution struct {
	Choices         Choices
	ChoiceToPassage map[string]string
	ChoiceToLineNum map[string]int
}

// FromRaw walks raw's arms in reverse declaration order, the same
// direction the original engine does, so that an arm with no explicit
// target (ChoiceTarget.Kind == TargetNone) inherits the nearest
// following arm's PassageName target. This inheritance is why the
// walk must run backwards: a forward walk would have no "nearest
// following" target to propagate yet.
//
// A conditional arm's guards are evaluated against r in declaration
// order (if, elif, ..., else); the first true guard's target is used
// as that arm's effective target. line_num bookkeeping still accounts
// for every inner body's length, since the flattener lays all of them
// out in the flat array regardless of which one a given run takes.
func FromRaw(raw story.RawChoices, r value.Resolver) (Resolution, error) {
	lineNum := raw.LineLen() - raw.Default.LineLen()
	passage := ""
	choiceToPassage := map[string]string{}
	choiceToLineNum := map[string]int{}
	labels := make([]string, 0, len(raw.Choices))

	addTarget := func(label string, target story.ChoiceTarget, bodyLen int) {
		labels = append(labels, label)
		switch target.Kind {
		case story.TargetPassageName:
			passage = target.PassageName
			choiceToPassage[label] = passage
		case story.TargetNone:
			choiceToPassage[label] = passage
		case story.TargetLines:
			lineNum -= bodyLen + 1
			choiceToLineNum[label] = lineNum
		}
	}

	for i := len(raw.Choices) - 1; i >= 0; i-- {
		arm := raw.Choices[i]
		if !arm.Choice.IsConditional {
			addTarget(arm.Label, arm.Choice.Target, arm.Choice.Target.LineLen())
			continue
		}
		totalBody := 0
		for _, cond := range arm.Choice.Conditional {
			totalBody += cond.Target.LineLen()
		}
		winner, ok, err := pickConditionalTarget(arm.Choice.Conditional, r)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			// No guard matched and there was no "else": this arm is
			// not shown at all, but its body still occupies space in
			// the flattened array.
			lineNum -= totalBody + len(arm.Choice.Conditional)
			continue
		}
		addTarget(arm.Label, winner, totalBody)
	}

	// Reverse back into declaration order for display.
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}

	return Resolution{
		Choices:         Choices{Labels: labels, Timeout: raw.Timeout},
		ChoiceToPassage: choiceToPassage,
		ChoiceToLineNum: choiceToLineNum,
	}, nil
}

func pickConditionalTarget(arms []story.CondArm, r value.Resolver) (story.ChoiceTarget, bool, error) {
	for _, arm := range arms {
		if arm.Guard == "else" {
			return arm.Target, true, nil
		}
		ok, err := value.EvalBoolExpr(arm.Guard, r)
		if err != nil {
			return story.ChoiceTarget{}, false, err
		}
		if ok {
			return arm.Target, true, nil
		}
	}
	return story.ChoiceTarget{}, false, nil
}

// Take advances bm past the choices block's header to the chosen
// arm's inline body (skipLines into the block), and returns the line
// number to jump to once that body finishes: the first line past the
// whole choices block, so a Break there skips every other arm's body
// and the default body too, regardless of which arm was taken.
// Mirrors RawChoices::take in the original engine.
func Take(raw story.RawChoices, bm *bookmark.Bookmark, skipLines int) int {
	nextLine := bm.Line() + raw.LineLen()
	bm.SkipLines(skipLines)
	return nextLine
}

// TakeBranches evaluates each arm of b against r in order, advances bm
// to the matched arm's body, and returns the line number to jump to
// once that body finishes: the first line past the whole Branches
// block. Mirrors Branches::take in the original engine: each skipped
// arm (including its own Break-insertion slot) adds to the running
// skip count, and the header slot counts toward the offset to the
// matched arm's body.
func TakeBranches(b story.Branches, bm *bookmark.Bookmark, r value.Resolver) (int, error) {
	skip := 1
	for i, arm := range b.Arms {
		matched := arm.Guard == "else"
		if !matched {
			var err error
			matched, err = value.EvalBoolExpr(arm.Guard, r)
			if err != nil {
				return 0, err
			}
		}
		if matched {
			break
		}
		skip += story.LinesLen(arm.Body)
		if i != len(b.Arms)-1 {
			skip++ // the Break inserted between adjacent arm bodies.
		}
	}
	nextLine := bm.Line() + b.LineLen()
	bm.SkipLines(skip)
	return nextLine, nil
}

// ErrNoChoiceTarget is returned when a choice's default target is
// TargetNone (there was nothing to fall back to).
var ErrNoChoiceTarget = fmt.Errorf("no choice target available")
