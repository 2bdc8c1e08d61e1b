// Package story holds the immutable, loaded representation of a
// Kataru story: namespaces (Sections) of named Passages, each a flat
// list of RawLines discriminated by shape.
package story

import (
	"strings"

	"github.com/kataru-lang/kataru/pkg/value"
)

// GLOBAL is the namespace name used for story-wide state, characters,
// commands, and passages not qualified to a specific section.
const GLOBAL = "global"

// QualifiedName splits a "namespace:name" reference into its parts.
type QualifiedName struct {
	Namespace string
	Name      string
}

// NewQualifiedName resolves name in the context of the current
// namespace: if name itself carries an explicit "other:name" prefix
// (split on the rightmost colon), that namespace wins; otherwise the
// ambient namespace is used.
func NewQualifiedName(namespace, name string) QualifiedName {
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		return QualifiedName{Namespace: name[:idx], Name: name[idx+1:]}
	}
	return QualifiedName{Namespace: namespace, Name: name}
}

func (q QualifiedName) String() string {
	if q.Namespace == "" || q.Namespace == GLOBAL {
		return q.Name
	}
	return q.Namespace + ":" + q.Name
}

// Position names a single line within a story: the namespace, the
// passage within it, and the line index within that passage.
type Position struct {
	Namespace string
	Passage   string
	Line      int
}

// State maps variable names to their current Values.
type State map[string]value.Value

// Clone returns a shallow copy of s (Values are immutable, so this is
// a deep-enough copy for snapshotting purposes).
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Param is one key/value pair in an order-preserving parameter list.
type Param struct {
	Name  string
	Value value.Value
}

// Params is an order-preserving map, needed because positional
// parameter merging zips supplied values against the declared default
// params in declaration order.
type Params []Param

// Get returns the value bound to name and whether it was found.
func (p Params) Get(name string) (value.Value, bool) {
	for _, kv := range p {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return value.Value{}, false
}

// Keys returns the parameter names in declaration order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Name
	}
	return keys
}

// Set returns a copy of p with name bound to v, appending if absent.
func (p Params) Set(name string, v value.Value) Params {
	out := make(Params, 0, len(p)+1)
	found := false
	for _, kv := range p {
		if kv.Name == name {
			out = append(out, Param{Name: name, Value: v})
			found = true
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, Param{Name: name, Value: v})
	}
	return out
}

// CharacterData describes a declared character.
type CharacterData struct {
	Description string
}

// AttributeConfig describes how an inline tag name should be
// interpreted: either a single valued attribute (<size=10/>) or a
// macro that expands to several attributes, some with default values
// (<hey/> expanding to sfx/volume/emote).
type AttributeConfig struct {
	// IsMacro distinguishes Value from Macro; a zero AttributeConfig is
	// a valueless single attribute.
	IsMacro bool
	Value   value.Value
	// Macro maps each expanded attribute name to its default value.
	// A missing Value (nil) means the expanded attribute carries no
	// value of its own, e.g. a bare flag.
	Macro map[string]*value.Value
}

// OnPassageHooks holds the state mutations to apply when entering or
// leaving any passage in a section.
type OnPassageHooks struct {
	OnEnter State
	OnExit  State
}

// Config is a section's static configuration: its declared state
// defaults, commands, characters, attribute tags, and passage hooks.
type Config struct {
	Namespace  string
	State      State
	Commands   map[string]Params
	Characters map[string]CharacterData
	Attributes map[string]*AttributeConfig
	OnPassage  *OnPassageHooks
}

// OnEnter returns the state to apply when entering any passage in this
// section's owning Section, or nil if none is configured.
func (c Config) OnEnter() State {
	if c.OnPassage == nil {
		return nil
	}
	return c.OnPassage.OnEnter
}

// OnExit returns the state to apply when leaving any passage in this
// section's owning Section, or nil if none is configured.
func (c Config) OnExit() State {
	if c.OnPassage == nil {
		return nil
	}
	return c.OnPassage.OnExit
}

// Passage is a flat, ordered list of raw lines as authored (before
// flattening inserts Break/Return sentinels).
type Passage []RawLine

// Section is one namespace's configuration and passages.
type Section struct {
	Config   Config
	Passages map[string]Passage
}

func (s *Section) Passage(name string) (Passage, bool) {
	p, ok := s.Passages[name]
	return p, ok
}

func (s *Section) Params(name string) (Params, bool) {
	p, ok := s.Config.Commands[name]
	return p, ok
}

func (s *Section) Character(name string) (CharacterData, bool) {
	c, ok := s.Config.Characters[name]
	return c, ok
}

func (s *Section) Value(name string) (value.Value, bool) {
	v, ok := s.Config.State[name]
	return v, ok
}

// AttributeConfig looks up an attribute tag name's configuration.
func (s *Section) AttributeConfig(name string) (*AttributeConfig, bool) {
	c, ok := s.Config.Attributes[name]
	return c, ok
}

// Story is the full loaded tree: every namespace's Section, keyed by
// namespace name. GLOBAL always exists (a loader that found no global
// YAML document still creates an empty one).
type Story map[string]*Section

func (s Story) resolve(namespace, name string) (string, string) {
	q := NewQualifiedName(namespace, name)
	return q.Namespace, q.Name
}

// Character resolves a character name local-then-global. foundGlobal
// reports whether the match (or lack of one) came from the GLOBAL
// namespace rather than the local one.
func (s Story) Character(namespace, name string) (CharacterData, bool, bool) {
	ns, base := s.resolve(namespace, name)
	return getFrom(s, ns, base, func(sec *Section, n string) (CharacterData, bool) { return sec.Character(n) })
}

func (s Story) Passage(namespace, name string) (Passage, bool, bool) {
	ns, base := s.resolve(namespace, name)
	return getFrom(s, ns, base, func(sec *Section, n string) (Passage, bool) { return sec.Passage(n) })
}

func (s Story) State(namespace, name string) (value.Value, bool, bool) {
	ns, base := s.resolve(namespace, name)
	return getFrom(s, ns, base, func(sec *Section, n string) (value.Value, bool) { return sec.Value(n) })
}

func (s Story) Cmd(namespace, name string) (Params, bool, bool) {
	ns, base := s.resolve(namespace, name)
	return getFrom(s, ns, base, func(sec *Section, n string) (Params, bool) { return sec.Params(n) })
}

// ResolveSection finds the Section and Passage that actually own the
// passage named `name` when referenced from `namespace` (local first,
// GLOBAL fallback), returning the Section the Passage was found in —
// which may differ from the namespace the caller started with.
func ResolveSection(s Story, namespace, name string) (*Section, Passage, bool) {
	q := NewQualifiedName(namespace, name)
	if sec, ok := s[q.Namespace]; ok {
		if p, ok := sec.Passage(q.Name); ok {
			return sec, p, true
		}
	}
	if q.Namespace != GLOBAL {
		if sec, ok := s[GLOBAL]; ok {
			if p, ok := sec.Passage(q.Name); ok {
				return sec, p, true
			}
		}
	}
	return nil, nil, false
}

// getFrom implements the local-then-global resolution fallback shared
// by every Story getter: look in the local namespace's section first,
// then in GLOBAL if not found (and local isn't already GLOBAL).
func getFrom[T any](s Story, namespace, name string, get func(*Section, string) (T, bool)) (T, bool, bool) {
	if sec, ok := s[namespace]; ok {
		if v, ok := get(sec, name); ok {
			return v, true, namespace == GLOBAL
		}
	}
	if namespace != GLOBAL {
		if sec, ok := s[GLOBAL]; ok {
			if v, ok := get(sec, name); ok {
				return v, true, true
			}
		}
	}
	var zero T
	return zero, false, namespace == GLOBAL
}
