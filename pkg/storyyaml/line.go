package storyyaml

import (
	"fmt"
	"strings"

	"github.com/kataru-lang/kataru/pkg/story"
	"gopkg.in/yaml.v3"
)

// decodeLines reads a sequence node into a slice of RawLines, each
// discriminated by decodeLine.
func decodeLines(node *yaml.Node) ([]story.RawLine, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a list of lines, got %v", node.Tag)
	}
	out := make([]story.RawLine, 0, len(node.Content))
	for i, child := range node.Content {
		line, err := decodeLine(child)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, line)
	}
	return out, nil
}

// isGuardKey reports whether s is a Branches arm guard: "if ", "elif "
// (with a following condition) or the bare keyword "else".
func isGuardKey(s string) bool {
	return strings.HasPrefix(s, "if ") || strings.HasPrefix(s, "elif ") || s == "else"
}

// decodeLine discriminates one passage line by its YAML shape: a bare
// string (text, or the keyword "return"), or a mapping whose keys
// identify a reserved construct (choices/branches guards/call or
// goto/set/input) or, failing all of those, a single-entry mapping
// read as dialogue, a named command, or a positional command
// depending on the single value's own shape.
func decodeLine(node *yaml.Node) (story.RawLine, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		if s == "return" {
			return story.LineReturn{}, nil
		}
		return story.LineText{Text: s}, nil

	case yaml.MappingNode:
		return decodeMappingLine(node)

	default:
		return nil, fmt.Errorf("a line must be a string or a mapping, got %v", node.Tag)
	}
}

func decodeMappingLine(node *yaml.Node) (story.RawLine, error) {
	if hasKey(node, "choices") {
		// A line that is only "choices:" holding its own "choices" key
		// carries the whole block (choices/default/timeout) nested.
		if len(node.Content) == 2 && node.Content[1].Kind == yaml.MappingNode && hasKey(node.Content[1], "choices") {
			return decodeChoicesLine(node.Content[1])
		}
		return decodeChoicesLine(node)
	}
	if allGuardKeys(node) {
		return decodeBranchesLine(node)
	}
	if len(node.Content) == 2 {
		switch node.Content[0].Value {
		case "call", "goto":
			var passage string
			if err := node.Content[1].Decode(&passage); err != nil {
				return nil, err
			}
			return story.LineCall{Passage: passage}, nil
		case "set":
			set, err := decodeState(node.Content[1])
			if err != nil {
				return nil, err
			}
			return story.LineSet{Set: set}, nil
		case "input":
			prompts, err := decodeInput(node.Content[1])
			if err != nil {
				return nil, err
			}
			return story.LineInput{Prompts: prompts}, nil
		}
	}
	return decodeDialogueOrCommand(node)
}

// decodeDialogueOrCommand handles the single-entry-mapping case left
// over once every reserved keyword has been ruled out: the value's
// own shape decides what the key means. A bare scalar value makes it
// dialogue (the key is a speaker name); a null or mapping value makes
// it a named command (the key is a command, possibly "Character.cmd");
// a sequence value makes it a positional command.
func decodeDialogueOrCommand(node *yaml.Node) (story.RawLine, error) {
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("dialogue and command lines must have exactly one entry, got %d", len(node.Content)/2)
	}
	name := node.Content[0].Value
	value := node.Content[1]

	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return story.LineCommand{Raw: story.RawCommand{name: nil}}, nil
		}
		var text string
		if err := value.Decode(&text); err != nil {
			return nil, err
		}
		return story.LineDialogue{Name: name, Text: text}, nil

	case yaml.MappingNode:
		var params orderedParams
		if err := value.Decode(&params); err != nil {
			return nil, err
		}
		return story.LineCommand{Raw: story.RawCommand{name: story.Params(params)}}, nil

	case yaml.SequenceNode:
		args, err := decodePositionalParams(value)
		if err != nil {
			return nil, err
		}
		return story.LinePositionalCommand{Raw: story.PositionalCommand{name: args}}, nil

	default:
		return nil, fmt.Errorf("unrecognized value shape for %q", name)
	}
}

func decodePositionalParams(node *yaml.Node) (story.PositionalParams, error) {
	out := make(story.PositionalParams, 0, len(node.Content))
	for _, child := range node.Content {
		var v yamlValue
		if err := child.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v.Value)
	}
	return out, nil
}

func decodeChoicesLine(node *yaml.Node) (story.RawLine, error) {
	rc := story.RawChoices{}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "choices":
			arms, err := decodeChoiceArms(val)
			if err != nil {
				return nil, err
			}
			rc.Choices = arms
		case "timeout":
			if err := val.Decode(&rc.Timeout); err != nil {
				return nil, err
			}
		case "default":
			target, err := decodeChoiceTarget(val)
			if err != nil {
				return nil, err
			}
			rc.Default = target
		default:
			return nil, fmt.Errorf("unrecognized key %q in a choices line", key)
		}
	}
	return story.LineChoices{Choices: rc}, nil
}

func decodeBranchesLine(node *yaml.Node) (story.RawLine, error) {
	arms := make([]story.BranchArm, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		guard := node.Content[i].Value
		body, err := decodeLines(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("branch %q: %w", guard, err)
		}
		arms = append(arms, story.BranchArm{Guard: guard, Body: body})
	}
	return story.LineBranches{Branches: story.Branches{Arms: arms}}, nil
}

func decodeState(node *yaml.Node) (story.State, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("set must be a mapping of variable to value, got %v", node.Tag)
	}
	st := make(story.State, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		var v yamlValue
		if err := node.Content[i+1].Decode(&v); err != nil {
			return nil, err
		}
		st[node.Content[i].Value] = v.Value
	}
	return st, nil
}

func decodeInput(node *yaml.Node) ([]story.InputPrompt, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("input must be a mapping of variable to prompt, got %v", node.Tag)
	}
	out := make([]story.InputPrompt, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		var prompt string
		if err := node.Content[i+1].Decode(&prompt); err != nil {
			return nil, err
		}
		out = append(out, story.InputPrompt{Var: node.Content[i].Value, Prompt: prompt})
	}
	return out, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func allGuardKeys(node *yaml.Node) bool {
	if len(node.Content) == 0 {
		return false
	}
	for i := 0; i < len(node.Content); i += 2 {
		if !isGuardKey(node.Content[i].Value) {
			return false
		}
	}
	return true
}
