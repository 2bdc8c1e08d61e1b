package storyyaml

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
	"gopkg.in/yaml.v3"
)

// yamlValue decodes a scalar YAML node directly into a value.Value,
// matching the three-type domain the runtime understands (numbers and
// bools decode natively; everything else, including quoted strings
// and bare words, decodes as a string — promotion to an evaluated
// expression happens later, at read time, not at load time).
type yamlValue struct {
	Value value.Value
}

func (v *yamlValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		v.Value = value.Number(f)
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		v.Value = value.Bool(b)
	default:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		v.Value = value.String(s)
	}
	return nil
}

// orderedParams decodes a mapping of parameter name to default value,
// preserving declaration order (needed for positional-argument
// zipping); a null node (a command declared with no params schema)
// decodes to a nil slice.
type orderedParams story.Params

func (p *orderedParams) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping of parameter name to default value, got %v", node.Tag)
	}
	out := make(orderedParams, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		var v yamlValue
		if err := node.Content[i+1].Decode(&v); err != nil {
			return err
		}
		out = append(out, story.Param{Name: name, Value: v.Value})
	}
	*p = out
	return nil
}
