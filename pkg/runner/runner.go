package runner

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/choice"
	"github.com/kataru-lang/kataru/pkg/flatten"
	"github.com/kataru-lang/kataru/pkg/kerr"
	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

// Runner steps a Bookmark through a Story, one flattened RawLine at a
// time, translating the opcodes the player never sees (Break, Return,
// Call, set:, the two command shapes) into Bookmark mutations, and
// surfacing the ones the player does see as a Line.
type Runner struct {
	bookmark *bookmark.Bookmark
	story    story.Story

	section *story.Section
	lines   []story.RawLine
	breaks  []int
	speaker string

	choiceToPassage map[string]string
	choiceToLineNum map[string]int
}

// New builds a Runner positioned wherever bm already points (the
// GLOBAL passage named "" for a fresh Bookmark, or wherever a loaded
// snapshot/save file left it), initializing any state defaults the
// story declares that bm doesn't already have, and running that
// passage's on_enter hook.
func New(bm *bookmark.Bookmark, st story.Story) (*Runner, error) {
	bm.InitState(st)
	r := &Runner{
		bookmark:        bm,
		story:           st,
		choiceToPassage: map[string]string{},
		choiceToLineNum: map[string]int{},
	}
	if err := r.goTo(); err != nil {
		return nil, r.wrap(err)
	}
	return r, nil
}

// Bookmark exposes the underlying cursor for the host to snapshot.
func (r *Runner) Bookmark() *bookmark.Bookmark { return r.bookmark }

func (r *Runner) wrap(err error) error {
	if err == nil {
		return nil
	}
	return kerr.NewRuntimeError(r.bookmark.Position(), err)
}

// Next advances the story. input is the player's response to whatever
// the previous call returned (a choice label, an input answer, or ""
// if the previous Line didn't ask for one); pass "" to start or to
// resume after a non-interactive Line.
func (r *Runner) Next(input string) (Line, error) {
	line, err := r.next(input)
	if err != nil {
		return nil, r.wrap(err)
	}
	return line, nil
}

func (r *Runner) next(input string) (Line, error) {
	for {
		raw, err := r.readline()
		if err != nil {
			return nil, err
		}

		switch l := raw.(type) {
		case story.LineChoices:
			out, done, err := r.stepChoices(l.Choices, input)
			if err != nil {
				return nil, err
			}
			if done {
				return out, nil
			}

		case story.LineInput:
			if input == "" {
				return LineInput{Prompts: l.Prompts}, nil
			}
			for _, p := range l.Prompts {
				if err := r.bookmark.SetState(story.State{"$" + p.Var: value.String(input)}); err != nil {
					return nil, err
				}
			}
			r.bookmark.NextLine()

		case story.LineBranches:
			nextLine, err := choice.TakeBranches(l.Branches, r.bookmark, r.bookmark)
			if err != nil {
				return nil, err
			}
			r.breaks = append(r.breaks, nextLine)

		case story.LineCall:
			if err := r.call(l.Passage); err != nil {
				return nil, err
			}

		case story.LineReturn:
			if err := r.runOnExit(); err != nil {
				return nil, err
			}
			pos, ok := r.bookmark.PopStack()
			if !ok {
				return LineEnd{}, nil
			}
			r.bookmark.SetPosition(pos)
			if err := r.loadBookmarkPosition(); err != nil {
				return nil, err
			}

		case story.LineBreak:
			if len(r.breaks) == 0 {
				r.bookmark.SetLine(0)
			} else {
				last := r.breaks[len(r.breaks)-1]
				r.breaks = r.breaks[:len(r.breaks)-1]
				r.bookmark.SetLine(last)
			}

		case story.LineCommand:
			r.bookmark.NextLine()
			cmd, err := buildCommand(l.Raw, r.story, r.bookmark)
			if err != nil {
				return nil, err
			}
			return LineCommand{Command: cmd}, nil

		case story.LinePositionalCommand:
			r.bookmark.NextLine()
			cmd, err := buildPositionalCommand(l.Raw, r.story, r.bookmark)
			if err != nil {
				return nil, err
			}
			return LineCommand{Command: cmd}, nil

		case story.LineSet:
			r.bookmark.NextLine()
			if err := r.bookmark.SetState(l.Set); err != nil {
				return nil, err
			}

		case story.LineDialogue:
			r.bookmark.NextLine()
			d, err := buildDialogue(l.Name, l.Text, r.story, r.bookmark)
			if err != nil {
				return nil, err
			}
			r.speaker = l.Name
			return LineDialogue{Dialogue: d}, nil

		case story.LineText:
			r.bookmark.NextLine()
			d, err := buildDialogue(r.speaker, l.Text, r.story, r.bookmark)
			if err != nil {
				return nil, err
			}
			return LineDialogue{Dialogue: d}, nil

		default:
			return nil, fmt.Errorf("unknown flattened line type %T", raw)
		}

		input = ""
	}
}

// stepChoices handles a LineChoices opcode: on first visit (input ==
// "") it resolves the block's arms and either displays the labels or,
// if every arm was conditional and none matched, falls through to the
// default. On the follow-up call with the player's chosen label, it
// routes to whichever of the two lookup tables the label landed in.
func (r *Runner) stepChoices(raw story.RawChoices, input string) (Line, bool, error) {
	if input == "" {
		res, err := choice.FromRaw(raw, r.bookmark)
		if err != nil {
			return nil, false, err
		}
		r.choiceToPassage = res.ChoiceToPassage
		r.choiceToLineNum = res.ChoiceToLineNum
		if res.Choices.Empty() {
			return nil, false, r.callDefault(raw)
		}
		return LineChoices{Choices: res.Choices}, true, nil
	}

	if passageName, ok := r.choiceToPassage[input]; ok {
		delete(r.choiceToPassage, input)
		return nil, false, r.callAt(passageName, r.bookmark.Line()+raw.LineLen())
	}
	if skipLines, ok := r.choiceToLineNum[input]; ok {
		delete(r.choiceToLineNum, input)
		nextLine := choice.Take(raw, r.bookmark, skipLines)
		r.breaks = append(r.breaks, nextLine)
		return nil, false, nil
	}
	return LineInvalidChoice{}, true, nil
}

// callDefault takes a choices block's default target when no labels
// were shown (every arm was conditional-and-unmatched) or when the
// host never supplies input for an empty block.
func (r *Runner) callDefault(raw story.RawChoices) error {
	switch raw.Default.Kind {
	case story.TargetLines:
		r.bookmark.SkipLines(raw.LineLen() - raw.Default.LineLen())
		return nil
	case story.TargetPassageName:
		return r.callAt(raw.Default.PassageName, r.bookmark.Line()+raw.LineLen())
	default:
		return choice.ErrNoChoiceTarget
	}
}

// readline returns the flattened line the bookmark's cursor currently
// points at.
func (r *Runner) readline() (story.RawLine, error) {
	line := r.bookmark.Line()
	if line < 0 || line >= len(r.lines) {
		return nil, fmt.Errorf("line %d out of bounds for passage %q (%d lines)", line, r.bookmark.Passage(), len(r.lines))
	}
	return r.lines[line], nil
}

// call transfers control to passageName from a LineCall opcode, whose
// return address is simply the next line.
func (r *Runner) call(passageName string) error {
	r.bookmark.NextLine()
	return r.callAt(passageName, r.bookmark.Line())
}

// callAt transfers control to passageName, pushing returnLine (in the
// current passage) as the return address unless the line at
// returnLine is an unconditional Return with no on_exit hook to run
// (tail-call elision): in that case popping back through this frame
// and then immediately popping again would be indistinguishable from
// never having pushed it at all. Choice-driven calls pass the line
// just past the whole choices block, not one past the header, so the
// eventual return skips the other arms and the default entirely.
func (r *Runner) callAt(passageName string, returnLine int) error {
	r.bookmark.SetLine(returnLine)
	if !r.canOptimizeTailCall() {
		r.bookmark.PushStack(r.bookmark.Position())
	}
	qname := story.NewQualifiedName(r.bookmark.Namespace(), passageName)
	r.bookmark.UpdatePosition(qname)
	r.bookmark.SetLine(0)
	return r.goTo()
}

func (r *Runner) canOptimizeTailCall() bool {
	line := r.bookmark.Line()
	if line < 0 || line >= len(r.lines) {
		return false
	}
	if _, ok := r.lines[line].(story.LineReturn); !ok {
		return false
	}
	return r.section == nil || r.section.Config.OnExit() == nil
}

// goTo resolves the bookmark's current namespace/passage, loads and
// flattens it, reconstructs the break stack, and runs the new
// passage's on_enter hook. Used whenever control transfers to a
// passage normally (the initial position, a call, a return landing
// back in the caller).
func (r *Runner) goTo() error {
	if err := r.loadBookmarkPosition(); err != nil {
		return err
	}
	return r.runOnEnter()
}

// loadBookmarkPosition resolves and flattens the bookmark's current
// passage without running any on_enter/on_exit hook, used both by
// goTo and when restoring a snapshot (where hooks must not re-fire).
func (r *Runner) loadBookmarkPosition() error {
	sec, passage, found := story.ResolveSection(r.story, r.bookmark.Namespace(), r.bookmark.Passage())
	if !found {
		return fmt.Errorf("passage %q not found in namespace %q", r.bookmark.Passage(), r.bookmark.Namespace())
	}
	r.bookmark.SetNamespace(sec.Config.Namespace)
	r.section = sec
	r.lines = flatten.Passage(passage)
	r.loadBreaks()
	return nil
}

// loadBreaks replays the flat array up to the bookmark's current line,
// pushing a break target for every Branches/Choices header passed and
// discarding any whose target has already been passed, reconstructing
// exactly the break stack Next would have built by stepping there one
// line at a time.
func (r *Runner) loadBreaks() {
	cur := r.bookmark.Line()
	breaks := r.breaks[:0]
	for i := 0; i < cur && i < len(r.lines); i++ {
		switch l := r.lines[i].(type) {
		case story.LineBranches:
			breaks = append(breaks, i+l.Branches.LineLen())
		case story.LineChoices:
			breaks = append(breaks, i+l.Choices.LineLen())
		}
	}
	r.breaks = r.breaks[:0]
	for _, b := range breaks {
		if b > cur {
			r.breaks = append(r.breaks, b)
		}
	}
}

func (r *Runner) runOnEnter() error {
	if r.section == nil {
		return nil
	}
	if hooks := r.section.Config.OnEnter(); hooks != nil {
		return r.bookmark.SetState(hooks)
	}
	return nil
}

func (r *Runner) runOnExit() error {
	if r.section == nil {
		return nil
	}
	if hooks := r.section.Config.OnExit(); hooks != nil {
		return r.bookmark.SetState(hooks)
	}
	return nil
}

// LoadSnapshot restores the bookmark from a previously saved snapshot
// and re-derives the runner's in-memory passage/break/choice state to
// match, without re-running any on_enter/on_exit hook (a snapshot
// restore is a jump, not a narrative transition).
func (r *Runner) LoadSnapshot(name string) error {
	if err := r.bookmark.LoadSnapshot(name); err != nil {
		return r.wrap(err)
	}
	if err := r.loadBookmarkPosition(); err != nil {
		return r.wrap(err)
	}
	if raw, ok := r.lines[r.bookmark.Line()].(story.LineChoices); ok {
		res, err := choice.FromRaw(raw.Choices, r.bookmark)
		if err != nil {
			return r.wrap(err)
		}
		r.choiceToPassage = res.ChoiceToPassage
		r.choiceToLineNum = res.ChoiceToLineNum
	}
	return nil
}

// SaveSnapshot is a thin pass-through to the bookmark, kept on Runner
// so callers don't need to reach into Bookmark() for the common case.
func (r *Runner) SaveSnapshot(name string) { r.bookmark.SaveSnapshot(name) }
