package storyyaml

import "github.com/kataru-lang/kataru/pkg/story"

// mergeSection folds sec into the story keyed by its own declared
// namespace, first-declared-wins on every overlapping key — mirroring
// the original's Map::merge (`entry().or_insert_with(|| other.remove)`):
// a key already present from an earlier-loaded file is never
// overwritten by a later one.
func mergeSection(st story.Story, sec *story.Section) {
	existing, ok := st[sec.Config.Namespace]
	if !ok {
		st[sec.Config.Namespace] = sec
		return
	}

	for name, ch := range sec.Config.Characters {
		if _, ok := existing.Config.Characters[name]; !ok {
			if existing.Config.Characters == nil {
				existing.Config.Characters = map[string]story.CharacterData{}
			}
			existing.Config.Characters[name] = ch
		}
	}
	for name, cmd := range sec.Config.Commands {
		if _, ok := existing.Config.Commands[name]; !ok {
			if existing.Config.Commands == nil {
				existing.Config.Commands = map[string]story.Params{}
			}
			existing.Config.Commands[name] = cmd
		}
	}
	for name, val := range sec.Config.State {
		if _, ok := existing.Config.State[name]; !ok {
			if existing.Config.State == nil {
				existing.Config.State = story.State{}
			}
			existing.Config.State[name] = val
		}
	}
	for name, attr := range sec.Config.Attributes {
		if _, ok := existing.Config.Attributes[name]; !ok {
			if existing.Config.Attributes == nil {
				existing.Config.Attributes = map[string]*story.AttributeConfig{}
			}
			existing.Config.Attributes[name] = attr
		}
	}
	if existing.Config.OnPassage == nil {
		existing.Config.OnPassage = sec.Config.OnPassage
	}

	if existing.Passages == nil {
		existing.Passages = map[string]story.Passage{}
	}
	for name, passage := range sec.Passages {
		if _, ok := existing.Passages[name]; !ok {
			existing.Passages[name] = passage
		}
	}
}
