package runner

import (
	"testing"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/story"
)

func newTestStory() story.Story {
	global := &story.Section{
		Config: story.Config{Namespace: story.GLOBAL},
		Passages: map[string]story.Passage{
			"start": {
				story.LineDialogue{Name: "Alice", Text: "Hello"},
				story.LineChoices{Choices: story.RawChoices{
					Choices: []story.ChoiceArm{
						{Label: "Yes", Choice: story.RawChoice{Target: story.ChoiceTarget{
							Kind:  story.TargetLines,
							Lines: []story.RawLine{story.LineText{Text: "You said yes"}},
						}}},
						{Label: "No", Choice: story.RawChoice{Target: story.ChoiceTarget{
							Kind:        story.TargetPassageName,
							PassageName: "no_branch",
						}}},
					},
					Default: story.ChoiceTarget{Kind: story.TargetNone},
				}},
				story.LineCommand{Raw: story.RawCommand{"shake": nil}},
			},
			"no_branch": {
				story.LineText{Text: "you said no"},
			},
		},
	}
	return story.Story{story.GLOBAL: global}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	bm := bookmark.New()
	bm.SetPassage("start")
	r, err := New(bm, newTestStory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRunnerDialogueThenChoicesThenCommandThenEnd(t *testing.T) {
	r := newTestRunner(t)

	line, err := r.Next("")
	if err != nil {
		t.Fatalf("dialogue step: %v", err)
	}
	d, ok := line.(LineDialogue)
	if !ok || d.Dialogue.Name != "Alice" || d.Dialogue.Text != "Hello" {
		t.Fatalf("unexpected first line: %#v", line)
	}

	line, err = r.Next("")
	if err != nil {
		t.Fatalf("choices step: %v", err)
	}
	choices, ok := line.(LineChoices)
	if !ok || len(choices.Choices.Labels) != 2 || choices.Choices.Labels[0] != "Yes" || choices.Choices.Labels[1] != "No" {
		t.Fatalf("unexpected choices line: %#v", line)
	}

	line, err = r.Next("Yes")
	if err != nil {
		t.Fatalf("choosing Yes: %v", err)
	}
	d, ok = line.(LineDialogue)
	if !ok || d.Dialogue.Name != "Alice" || d.Dialogue.Text != "You said yes" {
		t.Fatalf("unexpected inline-choice-body line: %#v", line)
	}

	line, err = r.Next("")
	if err != nil {
		t.Fatalf("command step: %v", err)
	}
	cmd, ok := line.(LineCommand)
	if !ok || cmd.Command.Name != "shake" {
		t.Fatalf("unexpected command line: %#v", line)
	}

	line, err = r.Next("")
	if err != nil {
		t.Fatalf("end step: %v", err)
	}
	if _, ok := line.(LineEnd); !ok {
		t.Fatalf("expected LineEnd, got %#v", line)
	}
}

func TestRunnerChoiceWithPassageTarget(t *testing.T) {
	r := newTestRunner(t)

	if _, err := r.Next(""); err != nil {
		t.Fatalf("dialogue step: %v", err)
	}
	if _, err := r.Next(""); err != nil {
		t.Fatalf("choices step: %v", err)
	}

	line, err := r.Next("No")
	if err != nil {
		t.Fatalf("choosing No: %v", err)
	}
	d, ok := line.(LineDialogue)
	if !ok || d.Dialogue.Text != "you said no" {
		t.Fatalf("unexpected passage-target line: %#v", line)
	}

	// Returning from no_branch lands just past the whole choices block
	// in "start" — skipping the "Yes" arm's body and its own Break
	// entirely — landing on the "shake" command, not the end.
	line, err = r.Next("")
	if err != nil {
		t.Fatalf("return from no_branch: %v", err)
	}
	cmd, ok := line.(LineCommand)
	if !ok || cmd.Command.Name != "shake" {
		t.Fatalf("expected the shake command after returning from no_branch, got %#v", line)
	}

	line, err = r.Next("")
	if err != nil {
		t.Fatalf("final return: %v", err)
	}
	if _, ok := line.(LineEnd); !ok {
		t.Fatalf("expected LineEnd, got %#v", line)
	}
}

func TestRunnerInvalidChoiceLabel(t *testing.T) {
	r := newTestRunner(t)

	if _, err := r.Next(""); err != nil {
		t.Fatalf("dialogue step: %v", err)
	}
	if _, err := r.Next(""); err != nil {
		t.Fatalf("choices step: %v", err)
	}

	line, err := r.Next("Maybe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := line.(LineInvalidChoice); !ok {
		t.Fatalf("expected LineInvalidChoice, got %#v", line)
	}
}

func TestRunnerSnapshotRoundTrip(t *testing.T) {
	r := newTestRunner(t)

	if _, err := r.Next(""); err != nil {
		t.Fatalf("dialogue step: %v", err)
	}
	if _, err := r.Next(""); err != nil {
		t.Fatalf("choices step: %v", err)
	}
	r.SaveSnapshot("before-choice")

	if _, err := r.Next("Yes"); err != nil {
		t.Fatalf("choosing Yes: %v", err)
	}

	if err := r.LoadSnapshot("before-choice"); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	line, err := r.Next("No")
	if err != nil {
		t.Fatalf("choosing No after restore: %v", err)
	}
	d, ok := line.(LineDialogue)
	if !ok || d.Dialogue.Text != "you said no" {
		t.Fatalf("unexpected line after snapshot restore: %#v", line)
	}
}
