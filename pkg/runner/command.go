package runner

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/story"
)

// buildCommand resolves a single-entry named RawCommand into a fully
// merged, promoted story.Command, qualifying the name by character or
// namespace the same way the original engine does.
func buildCommand(raw story.RawCommand, st story.Story, bm *bookmark.Bookmark) (story.Command, error) {
	rawName, supplied, err := oneNamedEntry(raw)
	if err != nil {
		return story.Command{}, err
	}
	name, defaults, err := resolveCommandName(rawName, st, bm)
	if err != nil {
		return story.Command{}, err
	}
	merged := story.MergeNamed(supplied, defaults)
	promoted, err := story.PromoteParams(merged, bm)
	if err != nil {
		return story.Command{}, err
	}
	return story.Command{Name: name, Params: promoted}, nil
}

// buildPositionalCommand is buildCommand's counterpart for positional
// argument lists, zipping them against the declared defaults' order.
func buildPositionalCommand(raw story.PositionalCommand, st story.Story, bm *bookmark.Bookmark) (story.Command, error) {
	rawName, supplied, err := onePositionalEntry(raw)
	if err != nil {
		return story.Command{}, err
	}
	name, defaults, err := resolveCommandName(rawName, st, bm)
	if err != nil {
		return story.Command{}, err
	}
	merged := story.MergePositional(supplied, defaults)
	promoted, err := story.PromoteParams(merged, bm)
	if err != nil {
		return story.Command{}, err
	}
	return story.Command{Name: name, Params: promoted}, nil
}

func oneNamedEntry(raw story.RawCommand) (string, story.Params, error) {
	if len(raw) != 1 {
		return "", nil, fmt.Errorf("command line must have exactly one entry, got %d", len(raw))
	}
	for name, params := range raw {
		return name, params, nil
	}
	panic("unreachable")
}

func onePositionalEntry(raw story.PositionalCommand) (string, story.PositionalParams, error) {
	if len(raw) != 1 {
		return "", nil, fmt.Errorf("command line must have exactly one entry, got %d", len(raw))
	}
	for name, params := range raw {
		return name, params, nil
	}
	panic("unreachable")
}

// resolveCommandName qualifies a raw command reference and returns its
// declared default params. "Character.cmd" qualifies through the
// character (namespace-prefixed only if the character is locally
// declared); a bare name qualifies through the namespace it actually
// resolved in (global resolution keeps the bare name, local resolution
// gets the namespace prefix).
func resolveCommandName(rawName string, st story.Story, bm *bookmark.Bookmark) (string, story.Params, error) {
	if character, cmd, ok := story.SplitCommandName(rawName); ok {
		if _, found, _ := st.Character(bm.Namespace(), character); !found {
			return "", nil, fmt.Errorf("unknown character %q", character)
		}
		defaults, _, _ := st.Cmd(bm.Namespace(), "$character."+cmd)
		qualifiedCharacter := character
		if bm.CharacterIsLocal(st, character) {
			qualifiedCharacter = bm.Namespace() + ":" + character
		}
		return qualifiedCharacter + "." + cmd, defaults, nil
	}

	defaults, found, foundGlobal := st.Cmd(bm.Namespace(), rawName)
	if !found {
		defaults = nil
	}
	if foundGlobal {
		return rawName, defaults, nil
	}
	return bm.Namespace() + ":" + rawName, defaults, nil
}
