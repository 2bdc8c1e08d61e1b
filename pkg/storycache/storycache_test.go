package storycache

import (
	"bytes"
	"testing"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

func testStory() story.Story {
	macroDefault := value.Number(1)
	return story.Story{
		story.GLOBAL: &story.Section{
			Config: story.Config{
				Namespace: story.GLOBAL,
				State:     story.State{"hp": value.Number(10)},
				Commands:  map[string]story.Params{"shake": nil, "heal": {{Name: "amount", Value: value.Number(0)}}},
				Characters: map[string]story.CharacterData{
					"Alice": {Description: "the protagonist"},
				},
				Attributes: map[string]*story.AttributeConfig{
					"size":  {Value: value.Number(10)},
					"hey":   {IsMacro: true, Macro: map[string]*value.Value{"sfx": &macroDefault, "volume": nil}},
				},
				OnPassage: &story.OnPassageHooks{
					OnEnter: story.State{"visited": value.Bool(true)},
				},
			},
			Passages: map[string]story.Passage{
				"start": {
					story.LineDialogue{Name: "Alice", Text: "Hello"},
					story.LineChoices{Choices: story.RawChoices{
						Choices: []story.ChoiceArm{
							{Label: "Yes", Choice: story.RawChoice{Target: story.ChoiceTarget{
								Kind:  story.TargetLines,
								Lines: []story.RawLine{story.LineText{Text: "You said yes"}},
							}}},
							{Label: "No", Choice: story.RawChoice{IsConditional: true, Conditional: []story.CondArm{
								{Guard: "if $hp > 5", Target: story.ChoiceTarget{Kind: story.TargetPassageName, PassageName: "strong"}},
								{Guard: "else", Target: story.ChoiceTarget{Kind: story.TargetPassageName, PassageName: "weak"}},
							}}},
						},
						Timeout: 30,
						Default: story.ChoiceTarget{Kind: story.TargetNone},
					}},
					story.LineBranches{Branches: story.Branches{Arms: []story.BranchArm{
						{Guard: "if $hp > 0", Body: []story.RawLine{story.LineText{Text: "alive"}}},
						{Guard: "else", Body: []story.RawLine{story.LineText{Text: "dead"}, story.LineReturn{}}},
					}}},
					story.LineCommand{Raw: story.RawCommand{"shake": nil}},
					story.LinePositionalCommand{Raw: story.PositionalCommand{"move": {value.Number(3), value.String("up"), value.Bool(true)}}},
					story.LineSet{Set: story.State{"hp": value.Number(3)}},
					story.LineInput{Prompts: []story.InputPrompt{{Var: "answer", Prompt: "name?"}}},
					story.LineCall{Passage: "start"},
					story.LineReturn{},
				},
			},
		},
	}
}

func TestStoryRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	st := testStory()
	if err := SaveStory(&buf, st); err != nil {
		t.Fatalf("SaveStory: %v", err)
	}
	got, err := LoadStory(&buf)
	if err != nil {
		t.Fatalf("LoadStory: %v", err)
	}
	sec := got[story.GLOBAL]
	if sec == nil {
		t.Fatalf("GLOBAL section missing after round trip")
	}
	if sec.Config.State["hp"] != value.Number(10) {
		t.Fatalf("hp = %v", sec.Config.State["hp"])
	}
	if _, ok := sec.Config.Commands["shake"]; !ok {
		t.Fatalf("shake command missing")
	}
	if params := sec.Config.Commands["heal"]; len(params) != 1 || params[0].Name != "amount" {
		t.Fatalf("heal params = %#v", params)
	}
	attr := sec.Config.Attributes["hey"]
	if attr == nil || !attr.IsMacro || attr.Macro["sfx"] == nil || *attr.Macro["sfx"] != value.Number(1) || attr.Macro["volume"] != nil {
		t.Fatalf("hey macro = %#v", attr)
	}
	start := sec.Passages["start"]
	if len(start) != 9 {
		t.Fatalf("start passage has %d lines, want 9: %#v", len(start), start)
	}
	d, ok := start[0].(story.LineDialogue)
	if !ok || d.Name != "Alice" || d.Text != "Hello" {
		t.Fatalf("start[0] = %#v", start[0])
	}
	choices, ok := start[1].(story.LineChoices)
	if !ok || len(choices.Choices.Choices) != 2 || choices.Choices.Timeout != 30 {
		t.Fatalf("start[1] = %#v", start[1])
	}
	noChoice := choices.Choices.Choices[1].Choice
	if !noChoice.IsConditional || len(noChoice.Conditional) != 2 || noChoice.Conditional[0].Guard != "if $hp > 5" {
		t.Fatalf("No choice = %#v", noChoice)
	}
	branches, ok := start[2].(story.LineBranches)
	if !ok || len(branches.Branches.Arms) != 2 || len(branches.Branches.Arms[1].Body) != 2 {
		t.Fatalf("start[2] = %#v", start[2])
	}
	cmd, ok := start[4].(story.LinePositionalCommand)
	if !ok {
		t.Fatalf("start[4] = %#v", start[4])
	}
	args := cmd.Raw["move"]
	if len(args) != 3 || args[0] != value.Number(3) || args[1] != value.String("up") || args[2] != value.Bool(true) {
		t.Fatalf("move args = %#v", args)
	}
	call, ok := start[7].(story.LineCall)
	if !ok || call.Passage != "start" {
		t.Fatalf("start[7] = %#v", start[7])
	}
	if _, ok := start[8].(story.LineReturn); !ok {
		t.Fatalf("start[8] = %#v", start[8])
	}
}

func TestBookmarkRoundTrip(t *testing.T) {
	b := bookmark.New()
	b.InitState(testStory())
	b.SetPassage("start")
	b.SetLine(2)
	b.PushStack(story.Position{Namespace: story.GLOBAL, Passage: "caller", Line: 5})
	b.SaveSnapshot("checkpoint")

	var buf bytes.Buffer
	if err := SaveBookmark(&buf, b); err != nil {
		t.Fatalf("SaveBookmark: %v", err)
	}
	got, err := LoadBookmark(&buf)
	if err != nil {
		t.Fatalf("LoadBookmark: %v", err)
	}
	if got.Namespace() != story.GLOBAL || got.Passage() != "start" || got.Line() != 2 {
		t.Fatalf("position = %s/%s/%d", got.Namespace(), got.Passage(), got.Line())
	}
	if len(got.Stack()) != 1 || got.Stack()[0].Passage != "caller" {
		t.Fatalf("stack = %#v", got.Stack())
	}
	if _, ok := got.Snapshots()["checkpoint"]; !ok {
		t.Fatalf("checkpoint snapshot missing")
	}
	v, err := got.Value("$hp")
	if err != nil || v != value.Number(10) {
		t.Fatalf("$hp = %v, %v", v, err)
	}
}

func TestFramedBlobsAreSequential(t *testing.T) {
	var buf bytes.Buffer
	st := testStory()
	b := bookmark.New()
	b.InitState(st)

	if err := SaveStory(&buf, st); err != nil {
		t.Fatalf("SaveStory: %v", err)
	}
	if err := SaveBookmark(&buf, b); err != nil {
		t.Fatalf("SaveBookmark: %v", err)
	}

	if _, err := LoadStory(&buf); err != nil {
		t.Fatalf("LoadStory: %v", err)
	}
	if _, err := LoadBookmark(&buf); err != nil {
		t.Fatalf("LoadBookmark: %v", err)
	}
}
