package storycache

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/story"
)

// wireLine is a flat, tagged envelope standing in for the RawLine
// interface, which MessagePack cannot encode directly: only Type and
// whichever payload fields that variant uses are populated.
type wireLine struct {
	Type string

	Name string `msgpack:",omitempty"`
	Text string `msgpack:",omitempty"`

	Command    string         `msgpack:",omitempty"`
	Params     []wireParam    `msgpack:",omitempty"`
	Positional []any          `msgpack:",omitempty"`

	Passage string `msgpack:",omitempty"`

	Set map[string]any `msgpack:",omitempty"`

	Prompts []wirePrompt `msgpack:",omitempty"`

	Choices  *wireRawChoices `msgpack:",omitempty"`
	Branches *wireBranches   `msgpack:",omitempty"`
}

type wireParam struct {
	Name  string
	Value any
}

type wirePrompt struct {
	Var    string
	Prompt string
}

func linesToWire(lines []story.RawLine) ([]wireLine, error) {
	if lines == nil {
		return nil, nil
	}
	out := make([]wireLine, len(lines))
	for i, l := range lines {
		w, err := lineToWire(l)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out[i] = w
	}
	return out, nil
}

func wireToLines(wire []wireLine) ([]story.RawLine, error) {
	if wire == nil {
		return nil, nil
	}
	out := make([]story.RawLine, len(wire))
	for i, w := range wire {
		l, err := wireToLine(w)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out[i] = l
	}
	return out, nil
}

func paramsToWire(p story.Params) []wireParam {
	if p == nil {
		return nil
	}
	out := make([]wireParam, len(p))
	for i, kv := range p {
		out[i] = wireParam{Name: kv.Name, Value: valueToWire(kv.Value)}
	}
	return out
}

func wireToParams(wire []wireParam) (story.Params, error) {
	if wire == nil {
		return nil, nil
	}
	out := make(story.Params, len(wire))
	for i, kv := range wire {
		v, err := wireToValue(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", kv.Name, err)
		}
		out[i] = story.Param{Name: kv.Name, Value: v}
	}
	return out, nil
}

func lineToWire(line story.RawLine) (wireLine, error) {
	switch l := line.(type) {
	case story.LineDialogue:
		return wireLine{Type: "dialogue", Name: l.Name, Text: l.Text}, nil
	case story.LineText:
		return wireLine{Type: "text", Text: l.Text}, nil
	case story.LineReturn:
		return wireLine{Type: "return"}, nil
	case story.LineBreak:
		return wireLine{Type: "break"}, nil
	case story.LineCall:
		return wireLine{Type: "call", Passage: l.Passage}, nil
	case story.LineSet:
		return wireLine{Type: "set", Set: stateToWire(l.Set)}, nil
	case story.LineInput:
		prompts := make([]wirePrompt, len(l.Prompts))
		for i, p := range l.Prompts {
			prompts[i] = wirePrompt{Var: p.Var, Prompt: p.Prompt}
		}
		return wireLine{Type: "input", Prompts: prompts}, nil
	case story.LineCommand:
		name, params, err := soleCommandEntry(l.Raw)
		if err != nil {
			return wireLine{}, err
		}
		return wireLine{Type: "command", Command: name, Params: paramsToWire(params)}, nil
	case story.LinePositionalCommand:
		name, args, err := solePositionalEntry(l.Raw)
		if err != nil {
			return wireLine{}, err
		}
		positional := make([]any, len(args))
		for i, v := range args {
			positional[i] = valueToWire(v)
		}
		return wireLine{Type: "positional_command", Command: name, Positional: positional}, nil
	case story.LineBranches:
		wb, err := branchesToWire(l.Branches)
		if err != nil {
			return wireLine{}, err
		}
		return wireLine{Type: "branches", Branches: &wb}, nil
	case story.LineChoices:
		wc, err := rawChoicesToWire(l.Choices)
		if err != nil {
			return wireLine{}, err
		}
		return wireLine{Type: "choices", Choices: &wc}, nil
	default:
		return wireLine{}, fmt.Errorf("storycache: unhandled line type %T", line)
	}
}

func wireToLine(w wireLine) (story.RawLine, error) {
	switch w.Type {
	case "dialogue":
		return story.LineDialogue{Name: w.Name, Text: w.Text}, nil
	case "text":
		return story.LineText{Text: w.Text}, nil
	case "return":
		return story.LineReturn{}, nil
	case "break":
		return story.LineBreak{}, nil
	case "call":
		return story.LineCall{Passage: w.Passage}, nil
	case "set":
		set, err := wireToState(w.Set)
		if err != nil {
			return nil, err
		}
		return story.LineSet{Set: set}, nil
	case "input":
		prompts := make([]story.InputPrompt, len(w.Prompts))
		for i, p := range w.Prompts {
			prompts[i] = story.InputPrompt{Var: p.Var, Prompt: p.Prompt}
		}
		return story.LineInput{Prompts: prompts}, nil
	case "command":
		params, err := wireToParams(w.Params)
		if err != nil {
			return nil, err
		}
		return story.LineCommand{Raw: story.RawCommand{w.Command: params}}, nil
	case "positional_command":
		args := make(story.PositionalParams, len(w.Positional))
		for i, raw := range w.Positional {
			v, err := wireToValue(raw)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return story.LinePositionalCommand{Raw: story.PositionalCommand{w.Command: args}}, nil
	case "branches":
		if w.Branches == nil {
			return nil, fmt.Errorf("storycache: branches line missing payload")
		}
		b, err := wireToBranches(*w.Branches)
		if err != nil {
			return nil, err
		}
		return story.LineBranches{Branches: b}, nil
	case "choices":
		if w.Choices == nil {
			return nil, fmt.Errorf("storycache: choices line missing payload")
		}
		rc, err := wireToRawChoices(*w.Choices)
		if err != nil {
			return nil, err
		}
		return story.LineChoices{Choices: rc}, nil
	default:
		return nil, fmt.Errorf("storycache: unknown line type %q", w.Type)
	}
}

// soleCommandEntry unwraps the always-single-entry RawCommand map.
func soleCommandEntry(raw story.RawCommand) (string, story.Params, error) {
	if len(raw) != 1 {
		return "", nil, fmt.Errorf("storycache: command line must have exactly one entry, got %d", len(raw))
	}
	for name, params := range raw {
		return name, params, nil
	}
	panic("unreachable")
}

// solePositionalEntry unwraps the always-single-entry PositionalCommand map.
func solePositionalEntry(raw story.PositionalCommand) (string, story.PositionalParams, error) {
	if len(raw) != 1 {
		return "", nil, fmt.Errorf("storycache: positional command line must have exactly one entry, got %d", len(raw))
	}
	for name, args := range raw {
		return name, args, nil
	}
	panic("unreachable")
}
