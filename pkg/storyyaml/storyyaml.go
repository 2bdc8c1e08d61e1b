// Package storyyaml loads a story.Story from a directory tree of YAML
// files. Each file holds one section: a config document, optionally
// followed by a "---"-delimited passages document. Sections are
// merged into the Story keyed by their own declared namespace (not by
// file path), first-declared-wins on every overlapping key.
package storyyaml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kataru-lang/kataru/pkg/story"
	"gopkg.in/yaml.v3"
)

// Load walks root recursively, parsing every "*.yml"/"*.yaml" file as
// one section and merging the results into a single story.Story. The
// GLOBAL namespace always exists in the result, even if no file
// declares it explicitly.
func Load(root string) (story.Story, error) {
	st := story.Story{story.GLOBAL: &story.Section{Config: story.Config{Namespace: story.GLOBAL}}}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		sec, err := loadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		mergeSection(st, sec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// loadFile parses a single section file: a config document, optionally
// followed by a "---"-delimited passages document.
func loadFile(path string) (*story.Section, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	configDoc, passagesDoc, hasPassages := splitDocuments(string(raw))

	var cfg rawConfig
	if err := yaml.Unmarshal([]byte(configDoc), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	sec := &story.Section{
		Config:   cfg.toStoryConfig(),
		Passages: map[string]story.Passage{},
	}
	if sec.Config.Namespace == "" {
		sec.Config.Namespace = story.GLOBAL
	}

	if hasPassages {
		var passages rawPassages
		if err := yaml.Unmarshal([]byte(passagesDoc), &passages); err != nil {
			return nil, fmt.Errorf("passages: %w", err)
		}
		for name, lines := range passages {
			sec.Passages[name] = story.Passage(lines)
		}
	}
	return sec, nil
}

// splitDocuments splits content at the first line containing only "---"
// (optionally with surrounding whitespace), the document boundary
// between a section's config and its passages.
func splitDocuments(content string) (configDoc, passagesDoc string, hasPassages bool) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return content, "", false
}

// rawPassages decodes the "passages" document: a mapping of passage
// name to an ordered list of lines, each discriminated by decodeLine.
type rawPassages map[string][]story.RawLine

func (p *rawPassages) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("passages must be a mapping of passage name to a list of lines, got %v", node.Tag)
	}
	out := make(rawPassages, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		name := node.Content[i].Value
		lines, err := decodeLines(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("passage %q: %w", name, err)
		}
		out[name] = lines
	}
	*p = out
	return nil
}
