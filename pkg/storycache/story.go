package storycache

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

type wireCharacter struct {
	Description string
}

type wireAttribute struct {
	IsMacro bool
	Value   any            `msgpack:",omitempty"`
	Macro   map[string]any `msgpack:",omitempty"`
}

type wireOnPassage struct {
	OnEnter map[string]any
	OnExit  map[string]any
}

type wireConfig struct {
	Namespace  string
	State      map[string]any
	Commands   map[string][]wireParam
	Characters map[string]wireCharacter
	Attributes map[string]wireAttribute
	OnPassage  *wireOnPassage `msgpack:",omitempty"`
}

type wireSection struct {
	Config   wireConfig
	Passages map[string][]wireLine
}

// wireStory is the top-level envelope written to a binary cache.
type wireStory struct {
	Sections map[string]wireSection
}

func attributeToWire(a *story.AttributeConfig) wireAttribute {
	if a == nil {
		return wireAttribute{}
	}
	w := wireAttribute{IsMacro: a.IsMacro, Value: valueToWire(a.Value)}
	if a.Macro != nil {
		w.Macro = make(map[string]any, len(a.Macro))
		for k, v := range a.Macro {
			if v == nil {
				w.Macro[k] = nil
				continue
			}
			w.Macro[k] = valueToWire(*v)
		}
	}
	return w
}

func wireToAttribute(w wireAttribute) (*story.AttributeConfig, error) {
	a := &story.AttributeConfig{IsMacro: w.IsMacro}
	if w.IsMacro {
		a.Macro = make(map[string]*value.Value, len(w.Macro))
		for k, raw := range w.Macro {
			if raw == nil {
				a.Macro[k] = nil
				continue
			}
			v, err := wireToValue(raw)
			if err != nil {
				return nil, fmt.Errorf("attribute macro %q: %w", k, err)
			}
			a.Macro[k] = &v
		}
		return a, nil
	}
	v, err := wireToValue(w.Value)
	if err != nil {
		return nil, fmt.Errorf("attribute value: %w", err)
	}
	a.Value = v
	return a, nil
}

func configToWire(c story.Config) (wireConfig, error) {
	w := wireConfig{
		Namespace:  c.Namespace,
		State:      stateToWire(c.State),
		Commands:   make(map[string][]wireParam, len(c.Commands)),
		Characters: make(map[string]wireCharacter, len(c.Characters)),
		Attributes: make(map[string]wireAttribute, len(c.Attributes)),
	}
	for name, params := range c.Commands {
		w.Commands[name] = paramsToWire(params)
	}
	for name, ch := range c.Characters {
		w.Characters[name] = wireCharacter{Description: ch.Description}
	}
	for name, attr := range c.Attributes {
		w.Attributes[name] = attributeToWire(attr)
	}
	if c.OnPassage != nil {
		w.OnPassage = &wireOnPassage{
			OnEnter: stateToWire(c.OnPassage.OnEnter),
			OnExit:  stateToWire(c.OnPassage.OnExit),
		}
	}
	return w, nil
}

func wireToConfig(w wireConfig) (story.Config, error) {
	state, err := wireToState(w.State)
	if err != nil {
		return story.Config{}, err
	}
	c := story.Config{
		Namespace:  w.Namespace,
		State:      state,
		Commands:   make(map[string]story.Params, len(w.Commands)),
		Characters: make(map[string]story.CharacterData, len(w.Characters)),
		Attributes: make(map[string]*story.AttributeConfig, len(w.Attributes)),
	}
	for name, wp := range w.Commands {
		params, err := wireToParams(wp)
		if err != nil {
			return story.Config{}, fmt.Errorf("command %q: %w", name, err)
		}
		c.Commands[name] = params
	}
	for name, ch := range w.Characters {
		c.Characters[name] = story.CharacterData{Description: ch.Description}
	}
	for name, attr := range w.Attributes {
		a, err := wireToAttribute(attr)
		if err != nil {
			return story.Config{}, fmt.Errorf("attribute %q: %w", name, err)
		}
		c.Attributes[name] = a
	}
	if w.OnPassage != nil {
		onEnter, err := wireToState(w.OnPassage.OnEnter)
		if err != nil {
			return story.Config{}, err
		}
		onExit, err := wireToState(w.OnPassage.OnExit)
		if err != nil {
			return story.Config{}, err
		}
		c.OnPassage = &story.OnPassageHooks{OnEnter: onEnter, OnExit: onExit}
	}
	return c, nil
}

func sectionToWire(sec *story.Section) (wireSection, error) {
	cfg, err := configToWire(sec.Config)
	if err != nil {
		return wireSection{}, err
	}
	passages := make(map[string][]wireLine, len(sec.Passages))
	for name, p := range sec.Passages {
		lines, err := linesToWire(p)
		if err != nil {
			return wireSection{}, fmt.Errorf("passage %q: %w", name, err)
		}
		passages[name] = lines
	}
	return wireSection{Config: cfg, Passages: passages}, nil
}

func wireToSection(w wireSection) (*story.Section, error) {
	cfg, err := wireToConfig(w.Config)
	if err != nil {
		return nil, err
	}
	passages := make(map[string]story.Passage, len(w.Passages))
	for name, wl := range w.Passages {
		lines, err := wireToLines(wl)
		if err != nil {
			return nil, fmt.Errorf("passage %q: %w", name, err)
		}
		passages[name] = story.Passage(lines)
	}
	return &story.Section{Config: cfg, Passages: passages}, nil
}

// storyToWire converts a loaded Story into its binary-cache envelope.
func storyToWire(st story.Story) (wireStory, error) {
	w := wireStory{Sections: make(map[string]wireSection, len(st))}
	for ns, sec := range st {
		ws, err := sectionToWire(sec)
		if err != nil {
			return wireStory{}, fmt.Errorf("namespace %q: %w", ns, err)
		}
		w.Sections[ns] = ws
	}
	return w, nil
}

// wireToStory rebuilds a Story from its binary-cache envelope.
func wireToStory(w wireStory) (story.Story, error) {
	st := make(story.Story, len(w.Sections))
	for ns, ws := range w.Sections {
		sec, err := wireToSection(ws)
		if err != nil {
			return nil, fmt.Errorf("namespace %q: %w", ns, err)
		}
		st[ns] = sec
	}
	return st, nil
}
