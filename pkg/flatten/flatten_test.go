package flatten

import (
	"testing"

	"github.com/kataru-lang/kataru/pkg/story"
)

func text(s string) story.RawLine { return story.LineText{Text: s} }

func TestPassageLengthMatchesLineLen(t *testing.T) {
	passage := story.Passage{
		text("intro"),
		story.LineBranches{Branches: story.Branches{Arms: []story.BranchArm{
			{Guard: "if true", Body: []story.RawLine{text("a")}},
			{Guard: "else", Body: []story.RawLine{text("b")}},
		}}},
		text("outro"),
	}
	flat := Passage(passage)
	// 1 (intro) + branches.LineLen() + 1 (outro) + 1 (trailing Return)
	want := 1 + story.LineBranches{Branches: passage[1].(story.LineBranches).Branches}.Branches.LineLen() + 1 + 1
	if len(flat) != want {
		t.Fatalf("got %d flattened lines, want %d: %#v", len(flat), want, flat)
	}
	if _, ok := flat[len(flat)-1].(story.LineReturn); !ok {
		t.Fatalf("expected trailing Return sentinel, got %#v", flat[len(flat)-1])
	}
}

func TestBranchesInsertsBreakBetweenArmsNotAfterLast(t *testing.T) {
	passage := story.Passage{
		story.LineBranches{Branches: story.Branches{Arms: []story.BranchArm{
			{Guard: "if true", Body: []story.RawLine{text("a")}},
			{Guard: "elif false", Body: []story.RawLine{text("b")}},
			{Guard: "else", Body: []story.RawLine{text("c")}},
		}}},
	}
	flat := Lines([]story.RawLine(passage))
	// header, a, Break, b, Break, c  (no trailing break after c)
	if len(flat) != 6 {
		t.Fatalf("got %d lines, want 6: %#v", len(flat), flat)
	}
	if _, ok := flat[2].(story.LineBreak); !ok {
		t.Fatalf("expected Break at index 2, got %#v", flat[2])
	}
	if _, ok := flat[4].(story.LineBreak); !ok {
		t.Fatalf("expected Break at index 4, got %#v", flat[4])
	}
	if _, ok := flat[5].(story.LineBreak); ok {
		t.Fatalf("did not expect trailing Break after last arm")
	}
}

func TestChoicesBodyThenDefaultNoLeadingBreak(t *testing.T) {
	raw := story.RawChoices{
		Choices: []story.ChoiceArm{
			{Label: "e", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetLines, Lines: []story.RawLine{text("E1")}}}},
		},
		Default: story.ChoiceTarget{Kind: story.TargetLines, Lines: []story.RawLine{text("d1"), text("d2")}},
	}
	flat := Lines([]story.RawLine{story.LineChoices{Choices: raw}})
	// header, E1, Break, d1, d2
	if len(flat) != 5 {
		t.Fatalf("got %d lines, want 5: %#v", len(flat), flat)
	}
	if _, ok := flat[2].(story.LineBreak); !ok {
		t.Fatalf("expected Break after inline choice body, got %#v", flat[2])
	}
	if flat[3] != story.RawLine(text("d1")) {
		t.Fatalf("expected default body to follow with no leading break, got %#v", flat[3])
	}
}
