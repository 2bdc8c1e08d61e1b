// Package validate statically checks a loaded Story for the defects
// that would otherwise only surface mid-playthrough: dangling goto/call
// targets, undeclared characters, malformed dialogue markup, commands
// called with unknown parameters, and set: mutations against undeclared
// or type-mismatched variables.
package validate

import (
	"fmt"
	"strings"

	"github.com/kataru-lang/kataru/pkg/attr"
	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/kerr"
	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

// Story runs the full static validator over st: every passage in every
// namespace, visited in map iteration order (so which defect is reported
// first is not fixed when there are several). It returns the first defect found,
// wrapped as a *kerr.ParseError naming the namespace and passage it
// was found in.
func Story(st story.Story) error {
	bm := bookmark.New()
	bm.InitState(st)
	v := &validator{story: st, bookmark: bm}
	return v.validate()
}

type validator struct {
	story    story.Story
	bookmark *bookmark.Bookmark
}

func (v *validator) validate() error {
	for namespace, sec := range v.story {
		v.bookmark.SetNamespace(namespace)
		for name, passage := range sec.Passages {
			v.bookmark.SetPassage(name)
			if err := v.validatePassage(passage); err != nil {
				return kerr.NewParseError(namespace, name, err)
			}
		}
	}
	return nil
}

func (v *validator) validatePassage(lines []story.RawLine) error {
	for i, line := range lines {
		if err := v.validateLine(line); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

func (v *validator) validateLine(line story.RawLine) error {
	switch l := line.(type) {
	case story.LineDialogue:
		return v.validateDialogue(l.Name, l.Text)
	case story.LineText:
		return v.validateText(l.Text)
	case story.LineBranches:
		return v.validateBranches(l.Branches)
	case story.LineChoices:
		return v.validateChoices(l.Choices)
	case story.LineCall:
		return v.validateGoto(l.Passage)
	case story.LineSet:
		return v.validateState(l.Set)
	case story.LineCommand:
		return v.validateNamedCommand(l.Raw)
	case story.LinePositionalCommand:
		return v.validatePositionalCommand(l.Raw)
	default:
		return nil
	}
}

func (v *validator) validateText(text string) error {
	var cfg map[string]*story.AttributeConfig
	if sec, ok := v.story[v.bookmark.Namespace()]; ok {
		cfg = sec.Config.Attributes
	}
	_, _, err := attr.New(cfg).Extract(text)
	return err
}

func (v *validator) validateCharacter(name string) error {
	if _, found, _ := v.story.Character(v.bookmark.Namespace(), name); !found {
		return fmt.Errorf("undefined character name %q", name)
	}
	return nil
}

func (v *validator) validateDialogue(name, text string) error {
	if err := v.validateCharacter(name); err != nil {
		return err
	}
	return v.validateText(text)
}

func (v *validator) validateConditional(guard string) error {
	_, err := value.EvalBoolExpr(guard, v.bookmark)
	return err
}

func (v *validator) validateBranches(b story.Branches) error {
	for _, arm := range b.Arms {
		if arm.Guard != "else" {
			if err := v.validateConditional(arm.Guard); err != nil {
				return err
			}
		}
		if err := v.validatePassage(arm.Body); err != nil {
			return err
		}
	}
	return nil
}

func validateParams(commandName string, supplied, declared story.Params) error {
	for _, kv := range supplied {
		if _, ok := declared.Get(kv.Name); !ok {
			return fmt.Errorf("no such parameter %q for command %q", kv.Name, commandName)
		}
	}
	return nil
}

// validateNamespaceCommand resolves commandName's declared params
// local-then-global and checks supplied against them, mirroring
// story.Cmd's own fallback so a command declared only globally still
// validates from a namespace that doesn't redeclare it.
func (v *validator) validateNamespaceCommand(commandName string, supplied story.Params) error {
	declared, found, _ := v.story.Cmd(v.bookmark.Namespace(), commandName)
	if !found {
		return fmt.Errorf("no such command %q", commandName)
	}
	if declared == nil {
		return nil
	}
	return validateParams(commandName, supplied, declared)
}

func (v *validator) resolveCommandKey(rawName string) (string, error) {
	if character, cmd, ok := story.SplitCommandName(rawName); ok {
		if err := v.validateCharacter(character); err != nil {
			return "", err
		}
		return "$character." + cmd, nil
	}
	if strings.Count(rawName, ".") > 0 {
		return "", fmt.Errorf("commands can only contain one '.' delimiter")
	}
	return rawName, nil
}

func (v *validator) validateNamedCommand(raw story.RawCommand) error {
	for name, params := range raw {
		key, err := v.resolveCommandKey(name)
		if err != nil {
			return err
		}
		if err := v.validateNamespaceCommand(key, params); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validatePositionalCommand(raw story.PositionalCommand) error {
	for name := range raw {
		key, err := v.resolveCommandKey(name)
		if err != nil {
			return err
		}
		if _, found, _ := v.story.Cmd(v.bookmark.Namespace(), key); !found {
			return fmt.Errorf("no such command %q", name)
		}
	}
	return nil
}

// validateOp checks that op is legal between v1 and v2: SET allows any
// matching-kind pair, ADD/SUB require both operands to be Numbers.
func validateOp(v1, v2 value.Value, op bookmark.AssignOp) error {
	if op == bookmark.AssignSet {
		if v1.Kind() != v2.Kind() {
			return fmt.Errorf("operators require operands of the same type, not %v and %v", v1.Kind(), v2.Kind())
		}
		return nil
	}
	if v1.Kind() != value.KindNumber || v2.Kind() != value.KindNumber {
		return fmt.Errorf("'+'/'-' can only be used on two numbers, not %v and %v", v1.Kind(), v2.Kind())
	}
	return nil
}

// validateVar resolves a set: key's variable part, which may be a bare
// name ("$hp"), a passage-scoped pattern ("$somePassage.visited", which
// must match a declared "$passage.visited" default and name a real
// passage), or a character-scoped pattern ("$Alice.mood", matching a
// declared "$character.mood" default and naming a real character).
func (v *validator) validateVar(name string) (value.Value, error) {
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 1:
		val, found, _ := v.story.State(v.bookmark.Namespace(), name)
		if !found {
			return value.Value{}, fmt.Errorf("variable %q was undefined", name)
		}
		return val, nil
	case 2:
		prefix, suffix := parts[0], parts[1]
		if val, found, _ := v.story.State(v.bookmark.Namespace(), "$passage."+suffix); found {
			if err := v.validateGoto(prefix); err != nil {
				return value.Value{}, err
			}
			return val, nil
		}
		if val, found, _ := v.story.State(v.bookmark.Namespace(), "$character."+suffix); found {
			if err := v.validateCharacter(prefix); err != nil {
				return value.Value{}, err
			}
			return val, nil
		}
		return value.Value{}, fmt.Errorf("variable %q did not match any character or passage variables", name)
	default:
		return value.Value{}, fmt.Errorf("variables can only contain one '.' delimiter")
	}
}

func (v *validator) validateState(state story.State) error {
	for key, val := range state {
		mod, err := bookmark.ParseStateMod(key)
		if err != nil {
			return err
		}
		declared, err := v.validateVar(mod.Var)
		if err != nil {
			return err
		}
		if err := validateOp(declared, val, mod.Op); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateGoto(passageName string) error {
	if _, found, _ := v.story.Passage(v.bookmark.Namespace(), passageName); !found {
		return fmt.Errorf("passage name %q was not defined in the story", passageName)
	}
	return nil
}

func (v *validator) validateTarget(t story.ChoiceTarget) error {
	switch t.Kind {
	case story.TargetPassageName:
		return v.validateGoto(t.PassageName)
	case story.TargetLines:
		return v.validatePassage(t.Lines)
	default:
		return nil
	}
}

func (v *validator) validateChoices(raw story.RawChoices) error {
	for _, arm := range raw.Choices {
		if !arm.Choice.IsConditional {
			if err := v.validateTarget(arm.Choice.Target); err != nil {
				return err
			}
			continue
		}
		for _, cond := range arm.Choice.Conditional {
			if cond.Guard != "else" {
				if err := v.validateConditional(cond.Guard); err != nil {
					return err
				}
			}
			if err := v.validateTarget(cond.Target); err != nil {
				return err
			}
		}
	}
	return v.validateTarget(raw.Default)
}
