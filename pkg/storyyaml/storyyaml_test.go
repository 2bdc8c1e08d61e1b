package storyyaml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestLoadConfigOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "global.yml", `
namespace: global
state:
  hp: 10
  name: Alice
characters:
  Alice:
    description: the protagonist
commands:
  shake:
  heal:
    amount: 0
`)
	st, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sec := st[story.GLOBAL]
	if sec == nil {
		t.Fatalf("GLOBAL section missing")
	}
	if hp, ok := sec.Config.State["hp"]; !ok || hp != value.Number(10) {
		t.Fatalf("state hp = %v, %v", hp, ok)
	}
	if _, ok := sec.Config.Characters["Alice"]; !ok {
		t.Fatalf("Alice not declared")
	}
	if params, ok := sec.Config.Commands["shake"]; !ok || params != nil {
		t.Fatalf("shake command = %#v, %v, want nil params", params, ok)
	}
	if params, ok := sec.Config.Commands["heal"]; !ok || len(params) != 1 || params[0].Name != "amount" {
		t.Fatalf("heal command = %#v, %v", params, ok)
	}
}

func TestLoadConfigAndPassages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "story.yml", `
namespace: global
---
start:
  - Alice: Hello there
  - choices:
      choices:
        Yes:
          - Alice: You said yes
        No: no_branch
      default:
  - shake:
no_branch:
  - you said no
  - return
`)
	st, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sec := st[story.GLOBAL]
	start, ok := sec.Passages["start"]
	if !ok || len(start) != 3 {
		t.Fatalf("start passage = %#v", start)
	}
	d, ok := start[0].(story.LineDialogue)
	if !ok || d.Name != "Alice" || d.Text != "Hello there" {
		t.Fatalf("start[0] = %#v", start[0])
	}
	choices, ok := start[1].(story.LineChoices)
	if !ok || len(choices.Choices.Choices) != 2 {
		t.Fatalf("start[1] = %#v", start[1])
	}
	if choices.Choices.Choices[0].Label != "Yes" || choices.Choices.Choices[0].Choice.Target.Kind != story.TargetLines {
		t.Fatalf("Yes choice = %#v", choices.Choices.Choices[0])
	}
	if choices.Choices.Choices[1].Label != "No" || choices.Choices.Choices[1].Choice.Target.Kind != story.TargetPassageName {
		t.Fatalf("No choice = %#v", choices.Choices.Choices[1])
	}
	cmd, ok := start[2].(story.LineCommand)
	if !ok {
		t.Fatalf("start[2] = %#v", start[2])
	}
	if params, ok := cmd.Raw["shake"]; !ok || params != nil {
		t.Fatalf("shake = %#v, %v", params, ok)
	}

	noBranch, ok := sec.Passages["no_branch"]
	if !ok || len(noBranch) != 2 {
		t.Fatalf("no_branch passage = %#v", noBranch)
	}
	if text, ok := noBranch[0].(story.LineText); !ok || text.Text != "you said no" {
		t.Fatalf("no_branch[0] = %#v", noBranch[0])
	}
	if _, ok := noBranch[1].(story.LineReturn); !ok {
		t.Fatalf("no_branch[1] = %#v", noBranch[1])
	}
}

func TestLoadBranchesAndCallAndSetAndInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "story.yml", `
namespace: global
---
start:
  - if $hp > 5:
      - Alice: strong
    elif $hp > 0:
      - Alice: weak
    else:
      - Alice: dead
  - set:
      hp: 3
      name: Bob
  - input:
      answer: "what is your name?"
  - goto: next
next:
  - call: start
`)
	st, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	start := st[story.GLOBAL].Passages["start"]
	branches, ok := start[0].(story.LineBranches)
	if !ok || len(branches.Branches.Arms) != 3 {
		t.Fatalf("start[0] = %#v", start[0])
	}
	if branches.Branches.Arms[0].Guard != "if $hp > 5" || branches.Branches.Arms[2].Guard != "else" {
		t.Fatalf("branch guards = %#v", branches.Branches.Arms)
	}

	set, ok := start[1].(story.LineSet)
	if !ok || set.Set["hp"] != value.Number(3) || set.Set["name"] != value.String("Bob") {
		t.Fatalf("start[1] = %#v", start[1])
	}

	input, ok := start[2].(story.LineInput)
	if !ok || len(input.Prompts) != 1 || input.Prompts[0].Var != "answer" {
		t.Fatalf("start[2] = %#v", start[2])
	}

	call, ok := start[3].(story.LineCall)
	if !ok || call.Passage != "next" {
		t.Fatalf("start[3] = %#v (goto alias)", start[3])
	}

	next := st[story.GLOBAL].Passages["next"]
	call, ok = next[0].(story.LineCall)
	if !ok || call.Passage != "start" {
		t.Fatalf("next[0] = %#v (call keyword)", next[0])
	}
}

func TestLoadConditionalChoiceTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "story.yml", `
namespace: global
---
start:
  - choices:
      choices:
        a:
          if $hp > 5:
            - alive
          else: dead_branch
      default:
`)
	st, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	start := st[story.GLOBAL].Passages["start"]
	choices := start[0].(story.LineChoices)
	choice := choices.Choices.Choices[0].Choice
	if !choice.IsConditional || len(choice.Conditional) != 2 {
		t.Fatalf("choice = %#v", choice)
	}
	if choice.Conditional[0].Guard != "if $hp > 5" || choice.Conditional[0].Target.Kind != story.TargetLines {
		t.Fatalf("conditional[0] = %#v", choice.Conditional[0])
	}
	if choice.Conditional[1].Guard != "else" || choice.Conditional[1].Target.Kind != story.TargetPassageName {
		t.Fatalf("conditional[1] = %#v", choice.Conditional[1])
	}
}

func TestLoadMergesAcrossFilesFirstWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yml", `
namespace: global
state:
  hp: 10
`)
	writeFile(t, dir, "b.yml", `
namespace: global
state:
  hp: 99
  mp: 5
`)
	st, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sec := st[story.GLOBAL]
	if sec.Config.State["hp"] != value.Number(10) {
		t.Fatalf("hp = %v, want first-file value 10 to win", sec.Config.State["hp"])
	}
	if sec.Config.State["mp"] != value.Number(5) {
		t.Fatalf("mp = %v, want second file's unique key merged in", sec.Config.State["mp"])
	}
}

func TestLoadPositionalCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "story.yml", `
namespace: global
---
start:
  - move: [3, up, true]
`)
	st, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	start := st[story.GLOBAL].Passages["start"]
	cmd, ok := start[0].(story.LinePositionalCommand)
	if !ok {
		t.Fatalf("start[0] = %#v", start[0])
	}
	args, ok := cmd.Raw["move"]
	if !ok || len(args) != 3 {
		t.Fatalf("move args = %#v, %v", args, ok)
	}
	if args[0] != value.Number(3) || args[1] != value.String("up") || args[2] != value.Bool(true) {
		t.Fatalf("move args = %#v", args)
	}
}
