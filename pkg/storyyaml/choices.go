package storyyaml

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/story"
	"gopkg.in/yaml.v3"
)

// decodeChoiceTarget reads a ChoiceTarget from whatever shape the node
// carries: a sequence of lines (an inline sub-passage), a bare string
// (a passage name), or null (no target — inherits from the nearest
// subsequent explicit target during the choice's reverse-walk).
func decodeChoiceTarget(node *yaml.Node) (story.ChoiceTarget, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return story.ChoiceTarget{Kind: story.TargetNone}, nil
		}
		var name string
		if err := node.Decode(&name); err != nil {
			return story.ChoiceTarget{}, err
		}
		return story.ChoiceTarget{Kind: story.TargetPassageName, PassageName: name}, nil
	case yaml.SequenceNode:
		lines, err := decodeLines(node)
		if err != nil {
			return story.ChoiceTarget{}, err
		}
		return story.ChoiceTarget{Kind: story.TargetLines, Lines: lines}, nil
	default:
		return story.ChoiceTarget{}, fmt.Errorf("a choice target must be a passage name, an inline list of lines, or omitted, not %v", node.Tag)
	}
}

// decodeChoice reads one choice arm's value: either a plain target, or
// a conditional chain (a mapping from "if "/"elif "/"else" guards to
// their own targets), in declaration order.
func decodeChoice(node *yaml.Node) (story.RawChoice, error) {
	if node.Kind == yaml.MappingNode && looksLikeGuardMap(node) {
		arms := make([]story.CondArm, 0, len(node.Content)/2)
		for i := 0; i < len(node.Content); i += 2 {
			var guard string
			if err := node.Content[i].Decode(&guard); err != nil {
				return story.RawChoice{}, err
			}
			target, err := decodeChoiceTarget(node.Content[i+1])
			if err != nil {
				return story.RawChoice{}, err
			}
			arms = append(arms, story.CondArm{Guard: guard, Target: target})
		}
		return story.RawChoice{IsConditional: true, Conditional: arms}, nil
	}
	target, err := decodeChoiceTarget(node)
	if err != nil {
		return story.RawChoice{}, err
	}
	return story.RawChoice{Target: target}, nil
}

// decodeChoiceArms reads the "choices" sibling key's value: a mapping
// from label to RawChoice, in declaration order (order is load-bearing
// for pkg/choice's reverse-walk implicit-target inheritance).
func decodeChoiceArms(node *yaml.Node) ([]story.ChoiceArm, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("choices must be a mapping of label to target, got %v", node.Tag)
	}
	arms := make([]story.ChoiceArm, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		var label string
		if err := node.Content[i].Decode(&label); err != nil {
			return nil, err
		}
		choice, err := decodeChoice(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("choice %q: %w", label, err)
		}
		arms = append(arms, story.ChoiceArm{Label: label, Choice: choice})
	}
	return arms, nil
}

// looksLikeGuardMap reports whether every key in a mapping node is a
// branch guard ("if ", "elif ", or "else"), the same shape test used
// to tell a conditional choice target apart from a plain target that
// happens to be a single-key mapping (never the case for ChoiceTarget,
// but kept as its own helper for symmetry with line.go's allGuardKeys).
func looksLikeGuardMap(node *yaml.Node) bool {
	for i := 0; i < len(node.Content); i += 2 {
		if !isGuardKey(node.Content[i].Value) {
			return false
		}
	}
	return len(node.Content) > 0
}
