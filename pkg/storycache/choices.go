package storycache

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/story"
)

type wireChoiceTarget struct {
	Kind        int
	Lines       []wireLine `msgpack:",omitempty"`
	PassageName string     `msgpack:",omitempty"`
}

type wireCondArm struct {
	Guard  string
	Target wireChoiceTarget
}

type wireRawChoice struct {
	IsConditional bool
	Conditional   []wireCondArm `msgpack:",omitempty"`
	Target        wireChoiceTarget
}

type wireChoiceArm struct {
	Label  string
	Choice wireRawChoice
}

type wireRawChoices struct {
	Choices []wireChoiceArm
	Timeout float64
	Default wireChoiceTarget
}

type wireBranchArm struct {
	Guard string
	Body  []wireLine
}

type wireBranches struct {
	Arms []wireBranchArm
}

func choiceTargetToWire(t story.ChoiceTarget) (wireChoiceTarget, error) {
	lines, err := linesToWire(t.Lines)
	if err != nil {
		return wireChoiceTarget{}, err
	}
	return wireChoiceTarget{Kind: int(t.Kind), Lines: lines, PassageName: t.PassageName}, nil
}

func wireToChoiceTarget(w wireChoiceTarget) (story.ChoiceTarget, error) {
	lines, err := wireToLines(w.Lines)
	if err != nil {
		return story.ChoiceTarget{}, err
	}
	return story.ChoiceTarget{Kind: story.ChoiceTargetKind(w.Kind), Lines: lines, PassageName: w.PassageName}, nil
}

func choiceToWire(c story.RawChoice) (wireRawChoice, error) {
	target, err := choiceTargetToWire(c.Target)
	if err != nil {
		return wireRawChoice{}, err
	}
	cond := make([]wireCondArm, len(c.Conditional))
	for i, arm := range c.Conditional {
		t, err := choiceTargetToWire(arm.Target)
		if err != nil {
			return wireRawChoice{}, err
		}
		cond[i] = wireCondArm{Guard: arm.Guard, Target: t}
	}
	return wireRawChoice{IsConditional: c.IsConditional, Conditional: cond, Target: target}, nil
}

func wireToChoice(w wireRawChoice) (story.RawChoice, error) {
	target, err := wireToChoiceTarget(w.Target)
	if err != nil {
		return story.RawChoice{}, err
	}
	cond := make([]story.CondArm, len(w.Conditional))
	for i, arm := range w.Conditional {
		t, err := wireToChoiceTarget(arm.Target)
		if err != nil {
			return story.RawChoice{}, err
		}
		cond[i] = story.CondArm{Guard: arm.Guard, Target: t}
	}
	return story.RawChoice{IsConditional: w.IsConditional, Conditional: cond, Target: target}, nil
}

func rawChoicesToWire(rc story.RawChoices) (wireRawChoices, error) {
	arms := make([]wireChoiceArm, len(rc.Choices))
	for i, arm := range rc.Choices {
		c, err := choiceToWire(arm.Choice)
		if err != nil {
			return wireRawChoices{}, fmt.Errorf("choice %q: %w", arm.Label, err)
		}
		arms[i] = wireChoiceArm{Label: arm.Label, Choice: c}
	}
	def, err := choiceTargetToWire(rc.Default)
	if err != nil {
		return wireRawChoices{}, err
	}
	return wireRawChoices{Choices: arms, Timeout: rc.Timeout, Default: def}, nil
}

func wireToRawChoices(w wireRawChoices) (story.RawChoices, error) {
	arms := make([]story.ChoiceArm, len(w.Choices))
	for i, arm := range w.Choices {
		c, err := wireToChoice(arm.Choice)
		if err != nil {
			return story.RawChoices{}, fmt.Errorf("choice %q: %w", arm.Label, err)
		}
		arms[i] = story.ChoiceArm{Label: arm.Label, Choice: c}
	}
	def, err := wireToChoiceTarget(w.Default)
	if err != nil {
		return story.RawChoices{}, err
	}
	return story.RawChoices{Choices: arms, Timeout: w.Timeout, Default: def}, nil
}

func branchesToWire(b story.Branches) (wireBranches, error) {
	arms := make([]wireBranchArm, len(b.Arms))
	for i, arm := range b.Arms {
		body, err := linesToWire(arm.Body)
		if err != nil {
			return wireBranches{}, fmt.Errorf("branch %q: %w", arm.Guard, err)
		}
		arms[i] = wireBranchArm{Guard: arm.Guard, Body: body}
	}
	return wireBranches{Arms: arms}, nil
}

func wireToBranches(w wireBranches) (story.Branches, error) {
	arms := make([]story.BranchArm, len(w.Arms))
	for i, arm := range w.Arms {
		body, err := wireToLines(arm.Body)
		if err != nil {
			return story.Branches{}, fmt.Errorf("branch %q: %w", arm.Guard, err)
		}
		arms[i] = story.BranchArm{Guard: arm.Guard, Body: body}
	}
	return story.Branches{Arms: arms}, nil
}
