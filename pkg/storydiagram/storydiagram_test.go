package storydiagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kataru-lang/kataru/pkg/storyyaml"
)

func writeStory(t *testing.T, dir string) {
	t.Helper()
	content := `
namespace: GLOBAL
---
start:
  - Alice: Hello there
  - choices:
      choices:
        Yes:
          - Alice: You said yes
        No: no_branch
      default:
no_branch:
  - you said no
  - return
`
	if err := os.WriteFile(filepath.Join(dir, "story.yml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing story.yml: %v", err)
	}
}

func TestGenerateMermaidHasChoiceEdge(t *testing.T) {
	dir := t.TempDir()
	writeStory(t, dir)
	st, err := storyyaml.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := Generate(st, "GLOBAL", FormatMermaid)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "start") || !strings.Contains(out, "no_branch") {
		t.Fatalf("expected both passage nodes, got:\n%s", out)
	}
	if !strings.Contains(out, `"No"`) {
		t.Fatalf("expected an edge labeled for the No choice, got:\n%s", out)
	}
}

func TestGenerateASCII(t *testing.T) {
	dir := t.TempDir()
	writeStory(t, dir)
	st, err := storyyaml.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := Generate(st, "GLOBAL", FormatASCII)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "start") || !strings.Contains(out, "no_branch") {
		t.Fatalf("expected both passage boxes, got:\n%s", out)
	}
}

func TestGenerateUnknownNamespace(t *testing.T) {
	dir := t.TempDir()
	writeStory(t, dir)
	st, err := storyyaml.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := Generate(st, "NOPE", FormatMermaid); err == nil {
		t.Fatal("expected an error for an unknown namespace")
	}
}
