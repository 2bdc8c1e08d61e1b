package choice

import (
	"reflect"
	"testing"

	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

type emptyResolver struct{}

func (emptyResolver) Resolve(string) (value.Value, bool) { return value.Value{}, false }

func lineText(s string) story.RawLine { return story.LineText{Text: s} }

func TestFromRawInheritsImplicitTarget(t *testing.T) {
	raw := story.RawChoices{
		Choices: []story.ChoiceArm{
			{Label: "a", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetNone}}},
			{Label: "b", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetNone}}},
			{Label: "c", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetNone}}},
			{Label: "d", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetPassageName, PassageName: "D"}}},
		},
		Default: story.ChoiceTarget{Kind: story.TargetLines, Lines: []story.RawLine{lineText("d1"), lineText("d2")}},
	}

	res, err := FromRaw(raw, emptyResolver{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(res.Choices.Labels, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected label order: %v", res.Choices.Labels)
	}
	want := map[string]string{"a": "D", "b": "D", "c": "D", "d": "D"}
	if !reflect.DeepEqual(res.ChoiceToPassage, want) {
		t.Fatalf("unexpected choice_to_passage: %v", res.ChoiceToPassage)
	}
}

func TestFromRawLineNumBookkeeping(t *testing.T) {
	raw := story.RawChoices{
		Choices: []story.ChoiceArm{
			{Label: "a", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetNone}}},
			{Label: "b", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetNone}}},
			{Label: "c", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetNone}}},
			{Label: "d", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetPassageName, PassageName: "D"}}},
			{Label: "e", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetLines, Lines: []story.RawLine{lineText("E1")}}}},
			{Label: "f", Choice: story.RawChoice{Target: story.ChoiceTarget{Kind: story.TargetLines, Lines: []story.RawLine{lineText("F1"), lineText("F2")}}}},
		},
		Default: story.ChoiceTarget{Kind: story.TargetLines, Lines: []story.RawLine{lineText("d1"), lineText("d2")}},
	}

	res, err := FromRaw(raw, emptyResolver{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int{"e": 1, "f": 3}
	if !reflect.DeepEqual(res.ChoiceToLineNum, want) {
		t.Fatalf("unexpected choice_to_line_num: %v", res.ChoiceToLineNum)
	}
}

func TestBranchesLineLen(t *testing.T) {
	cases := []struct {
		branches story.Branches
		want     int
	}{
		{
			story.Branches{Arms: []story.BranchArm{
				{Guard: "if true", Body: []story.RawLine{lineText("a")}},
			}},
			2,
		},
		{
			story.Branches{Arms: []story.BranchArm{
				{Guard: "if true", Body: []story.RawLine{lineText("a")}},
				{Guard: "else", Body: []story.RawLine{lineText("b")}},
			}},
			4,
		},
		{
			story.Branches{Arms: []story.BranchArm{
				{Guard: "if true", Body: []story.RawLine{}},
				{Guard: "else", Body: []story.RawLine{lineText("b"), lineText("c")}},
			}},
			4,
		},
	}
	for i, c := range cases {
		if got := c.branches.LineLen(); got != c.want {
			t.Errorf("case %d: LineLen() = %d, want %d", i, got, c.want)
		}
	}
}
