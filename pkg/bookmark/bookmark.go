// Package bookmark implements the mutable cursor that tracks progress
// through a Story: the current position, per-namespace state, the
// call stack, and named snapshots for save/restore.
package bookmark

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

// Bookmark is the full mutable state of a story in progress. It holds
// no reference to the Story itself — operations that need to consult
// the story tree take it as a parameter.
type Bookmark struct {
	state     map[string]story.State
	position  story.Position
	stack     []story.Position
	snapshots map[string][]story.Position
}

// New returns a Bookmark positioned at line 0 of the passage named ""
// in the GLOBAL namespace, with no state, stack, or snapshots yet.
func New() *Bookmark {
	return &Bookmark{
		state:     map[string]story.State{story.GLOBAL: {}},
		position:  story.Position{Namespace: story.GLOBAL},
		snapshots: map[string][]story.Position{},
	}
}

func (b *Bookmark) Namespace() string { return b.position.Namespace }
func (b *Bookmark) Passage() string   { return b.position.Passage }
func (b *Bookmark) Line() int         { return b.position.Line }

// NextLine advances the line cursor by one.
func (b *Bookmark) NextLine() { b.position.Line++ }

// SkipLines advances the line cursor by n.
func (b *Bookmark) SkipLines(n int) { b.position.Line += n }

// SetLine sets the line cursor directly.
func (b *Bookmark) SetLine(n int) { b.position.Line = n }

// Position returns the current position.
func (b *Bookmark) Position() story.Position { return b.position }

// SetPosition overwrites the entire current position.
func (b *Bookmark) SetPosition(p story.Position) { b.position = p }

// SetNamespace overwrites only the namespace, leaving passage/line.
func (b *Bookmark) SetNamespace(ns string) { b.position.Namespace = ns }

// SetPassage overwrites only the passage, leaving namespace/line.
func (b *Bookmark) SetPassage(p string) { b.position.Passage = p }

// UpdatePosition moves to the start of the passage named by qname,
// leaving the line at whatever the caller sets next (callers
// invariably call SetLine(0) immediately after).
func (b *Bookmark) UpdatePosition(qname story.QualifiedName) {
	b.position.Namespace = qname.Namespace
	b.position.Passage = qname.Name
}

// Stack exposes the call stack for the runner to push/pop directly.
func (b *Bookmark) Stack() []story.Position { return b.stack }

// AllState exposes every namespace's state map, for serialization.
func (b *Bookmark) AllState() map[string]story.State { return b.state }

// Snapshots exposes the named snapshot table, for serialization.
func (b *Bookmark) Snapshots() map[string][]story.Position { return b.snapshots }

// Restore rebuilds a Bookmark from its serialized parts, as read back
// from a binary cache.
func Restore(state map[string]story.State, position story.Position, stack []story.Position, snapshots map[string][]story.Position) *Bookmark {
	if state == nil {
		state = map[string]story.State{}
	}
	if snapshots == nil {
		snapshots = map[string][]story.Position{}
	}
	return &Bookmark{state: state, position: position, stack: stack, snapshots: snapshots}
}

// PushStack pushes a return position onto the call stack.
func (b *Bookmark) PushStack(p story.Position) { b.stack = append(b.stack, p) }

// PopStack pops the most recent return position, if any.
func (b *Bookmark) PopStack() (story.Position, bool) {
	if len(b.stack) == 0 {
		return story.Position{}, false
	}
	p := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return p, true
}

// ensureNamespace returns the per-namespace state map, creating it if
// this is the first reference to ns.
func (b *Bookmark) ensureNamespace(ns string) story.State {
	s, ok := b.state[ns]
	if !ok {
		s = story.State{}
		b.state[ns] = s
	}
	return s
}

// State returns the local namespace's state, erroring if it doesn't
// exist yet (InitState should always be called before running).
func (b *Bookmark) State() (story.State, error) {
	s, ok := b.state[b.Namespace()]
	if !ok {
		return nil, fmt.Errorf("no state initialized for namespace %q", b.Namespace())
	}
	return s, nil
}

// GlobalState returns the GLOBAL namespace's state.
func (b *Bookmark) GlobalState() (story.State, error) {
	s, ok := b.state[story.GLOBAL]
	if !ok {
		return nil, fmt.Errorf("no state initialized for namespace %q", story.GLOBAL)
	}
	return s, nil
}

// Value resolves a `$name` or `$namespace:name` variable reference
// against local state first, falling back to GLOBAL state.
func (b *Bookmark) Value(ref string) (value.Value, error) {
	name := strings.TrimPrefix(ref, "$")
	qname := story.NewQualifiedName(b.Namespace(), name)
	if s, ok := b.state[qname.Namespace]; ok {
		if v, ok := s[qname.Name]; ok {
			return v, nil
		}
	}
	if qname.Namespace != story.GLOBAL {
		if s, ok := b.state[story.GLOBAL]; ok {
			if v, ok := s[qname.Name]; ok {
				return v, nil
			}
		}
	}
	return value.Value{}, fmt.Errorf("undefined state variable %q", ref)
}

// Resolve adapts Value to value.Resolver for the expression evaluator.
func (b *Bookmark) Resolve(name string) (value.Value, bool) {
	v, err := b.Value(name)
	if err != nil {
		return value.Value{}, false
	}
	return v, true
}

var varRef = regexp.MustCompile(`\$\{([a-zA-Z0-9_]*)\}`)

// Interpolate expands every "${name}" occurrence in text with the
// Display rendering of the named variable, leaving "${name}" untouched
// if it doesn't resolve. This is the original engine's dialogue text
// interpolation, distinct from `$name` expression evaluation.
func (b *Bookmark) Interpolate(text string) string {
	return varRef.ReplaceAllStringFunc(text, func(match string) string {
		name := varRef.FindStringSubmatch(match)[1]
		v, err := b.Value("$" + name)
		if err != nil {
			return match
		}
		return v.String()
	})
}

// StateMod is a parsed `set:` key: the target variable and an
// optional accumulation operator.
type StateMod struct {
	Var string
	Op  AssignOp
}

type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
)

// ParseStateMod parses a `set:` key of the form "$var", "$var +", or
// "$var -" into its variable name and operator.
func ParseStateMod(key string) (StateMod, error) {
	parts := strings.Fields(key)
	switch len(parts) {
	case 1:
		return StateMod{Var: strings.TrimPrefix(parts[0], "$")}, nil
	case 2:
		var op AssignOp
		switch parts[1] {
		case "+":
			op = AssignAdd
		case "-":
			op = AssignSub
		default:
			return StateMod{}, fmt.Errorf("invalid state operator %q", parts[1])
		}
		return StateMod{Var: strings.TrimPrefix(parts[0], "$"), Op: op}, nil
	default:
		return StateMod{}, fmt.Errorf("invalid state key %q", key)
	}
}

// Apply routes v into the state map that already declares Var
// (local-namespace state is checked before global by the caller,
// which passes whichever map actually has the key), applying the
// accumulation operator.
func (m StateMod) Apply(state story.State, v value.Value) error {
	existing, ok := state[m.Var]
	if !ok {
		return fmt.Errorf("undefined state variable %q", m.Var)
	}
	switch m.Op {
	case AssignAdd:
		state[m.Var] = existing.Add(v)
	case AssignSub:
		state[m.Var] = existing.Sub(v)
	default:
		state[m.Var] = v
	}
	return nil
}

// SetState applies a batch of `set:` mutations. updates is keyed by
// the raw StateMod text ("$hp", "$hp +", ...) mapping to the value to
// assign. String-typed values are first promoted through expression
// evaluation (so `set: {$hp: "$hp - 1"}` works); already-typed values
// pass through unchanged. The special "passage" token in a key is
// expanded to the current passage's own name, then the mutation is
// routed to whichever of local/global state already declares the
// target variable.
func (b *Bookmark) SetState(updates story.State) error {
	for key, raw := range updates {
		promoted := raw
		if raw.IsString() {
			v, err := value.EvalAsExpr(raw.AsString(), b)
			if err != nil {
				return err
			}
			promoted = v
		}
		effectiveKey := strings.ReplaceAll(key, "passage", b.Passage())
		mod, err := ParseStateMod(effectiveKey)
		if err != nil {
			return err
		}
		local, err := b.State()
		if err != nil {
			return err
		}
		global, err := b.GlobalState()
		if err != nil {
			return err
		}
		if _, ok := local[mod.Var]; ok {
			if err := mod.Apply(local, promoted); err != nil {
				return err
			}
			continue
		}
		if err := mod.Apply(global, promoted); err != nil {
			return err
		}
	}
	return nil
}

// InitState ensures every namespace in st has a state map, and that
// every state variable the section declares a default for exists
// (without overwriting an already-set value). A default key of the
// form "$passage.visited" is expanded once per passage in the
// section, substituting that passage's name for the "$passage"
// prefix and dropping the leading "$" (matching SetState/ParseStateMod,
// which always store and look up state under the bare variable name),
// letting a story declare per-passage flags without listing every
// passage explicitly.
func (b *Bookmark) InitState(st story.Story) {
	for ns, sec := range st {
		local := b.ensureNamespace(ns)
		for key, def := range sec.Config.State {
			if strings.Contains(key, "passage") {
				for passageName := range sec.Passages {
					expanded := passageName + strings.TrimPrefix(key, "$passage")
					if _, ok := local[expanded]; !ok {
						local[expanded] = def
					}
				}
				continue
			}
			if _, ok := local[key]; !ok {
				local[key] = def
			}
		}
	}
}

// CharacterIsLocal reports whether character is declared by the
// current namespace's section (GLOBAL namespace never has "local"
// characters by definition).
func (b *Bookmark) CharacterIsLocal(st story.Story, character string) bool {
	if b.Namespace() == story.GLOBAL {
		return false
	}
	sec, ok := st[b.Namespace()]
	if !ok {
		return false
	}
	_, ok = sec.Character(character)
	return ok
}

// SaveSnapshot records the call stack plus current position under
// name, overwriting any prior snapshot with the same name.
func (b *Bookmark) SaveSnapshot(name string) {
	snap := make([]story.Position, len(b.stack)+1)
	copy(snap, b.stack)
	snap[len(b.stack)] = b.position
	b.snapshots[name] = snap
}

// LoadSnapshot restores the call stack and position from the named
// snapshot, consuming it (a second LoadSnapshot with the same name
// fails). State is never part of a snapshot — saving/loading replays
// position only, matching the original engine.
func (b *Bookmark) LoadSnapshot(name string) error {
	snap, ok := b.snapshots[name]
	if !ok || len(snap) == 0 {
		return fmt.Errorf("no snapshot named %q", name)
	}
	delete(b.snapshots, name)
	b.stack = snap[:len(snap)-1]
	b.position = snap[len(snap)-1]
	return nil
}
