package storyyaml

import (
	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

// rawConfig mirrors the YAML shape of a section's config document.
// Only Commands needs declaration-order preservation (for positional
// parameter zipping); State/OnEnter/OnExit are consumed by name only.
type rawConfig struct {
	Namespace  string                     `yaml:"namespace"`
	State      map[string]yamlValue       `yaml:"state"`
	Commands   map[string]orderedParams   `yaml:"commands"`
	Characters map[string]rawCharacter    `yaml:"characters"`
	Attributes map[string]rawAttribute    `yaml:"attributes"`
	OnEnter    map[string]yamlValue       `yaml:"on_enter"`
	OnExit     map[string]yamlValue       `yaml:"on_exit"`
}

type rawCharacter struct {
	Description string `yaml:"description"`
}

// rawAttribute is either a bare value default (a single-valued
// attribute tag) or a macro table expanding to several attributes.
type rawAttribute struct {
	Value *yamlValue            `yaml:"value"`
	Macro map[string]*yamlValue `yaml:"macro"`
}

func (c rawConfig) toStoryConfig() story.Config {
	cfg := story.Config{
		Namespace:  c.Namespace,
		State:      toState(c.State),
		Characters: map[string]story.CharacterData{},
		Commands:   map[string]story.Params{},
		Attributes: map[string]*story.AttributeConfig{},
	}
	for name, ch := range c.Characters {
		cfg.Characters[name] = story.CharacterData{Description: ch.Description}
	}
	for name, params := range c.Commands {
		cfg.Commands[name] = story.Params(params)
	}
	for name, attr := range c.Attributes {
		cfg.Attributes[name] = attr.toAttributeConfig()
	}
	if len(c.OnEnter) > 0 || len(c.OnExit) > 0 {
		cfg.OnPassage = &story.OnPassageHooks{
			OnEnter: toState(c.OnEnter),
			OnExit:  toState(c.OnExit),
		}
	}
	return cfg
}

func (a rawAttribute) toAttributeConfig() *story.AttributeConfig {
	if a.Macro != nil {
		macro := make(map[string]*value.Value, len(a.Macro))
		for k, v := range a.Macro {
			if v == nil {
				macro[k] = nil
				continue
			}
			val := v.Value
			macro[k] = &val
		}
		return &story.AttributeConfig{IsMacro: true, Macro: macro}
	}
	ac := &story.AttributeConfig{}
	if a.Value != nil {
		ac.Value = a.Value.Value
	}
	return ac
}

func toState(m map[string]yamlValue) story.State {
	if m == nil {
		return story.State{}
	}
	st := make(story.State, len(m))
	for k, v := range m {
		st[k] = v.Value
	}
	return st
}
