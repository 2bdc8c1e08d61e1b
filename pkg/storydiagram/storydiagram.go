// Package storydiagram generates Mermaid flowchart and ASCII diagrams
// of a story namespace's passage graph: one node per passage, one edge
// per call or per choice arm that targets another passage by name.
// Grounded on pkg/diagram's runbook-step-tree diagrams, adapted from a
// linear step sequence to a passage graph — Kataru has no steps or
// branches-with-outcomes, only passages a choice or a call can jump
// between.
package storydiagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/kataru-lang/kataru/pkg/story"
)

// Format is the output diagram format.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatASCII   Format = "ascii"
)

// edge is one passage-to-passage transition: a call, or a choice arm
// (or its default) whose target is a named passage.
type edge struct {
	from, to, label string
}

// Generate produces a diagram string for namespace's passage graph.
func Generate(st story.Story, namespace string, format Format) (string, error) {
	sec, ok := st[namespace]
	if !ok {
		return "", fmt.Errorf("no such namespace %q", namespace)
	}

	names := make([]string, 0, len(sec.Passages))
	for name := range sec.Passages {
		names = append(names, name)
	}
	sort.Strings(names)

	var edges []edge
	for _, name := range names {
		edges = append(edges, passageEdges(name, sec.Passages[name])...)
	}

	switch format {
	case FormatMermaid:
		return generateMermaid(namespace, names, edges), nil
	case FormatASCII:
		return generateASCII(namespace, names, edges), nil
	default:
		return "", fmt.Errorf("unsupported diagram format: %s", format)
	}
}

// passageEdges collects every passage-targeting transition a
// passage's lines can take: direct calls, and any choice arm (or
// conditional arm, or default) whose target names another passage.
func passageEdges(from string, lines []story.RawLine) []edge {
	var out []edge
	for _, line := range lines {
		switch l := line.(type) {
		case story.LineCall:
			out = append(out, edge{from: from, to: l.Passage, label: "call"})
		case story.LineChoices:
			out = append(out, choiceEdges(from, l.Choices)...)
		}
	}
	return out
}

func choiceEdges(from string, rc story.RawChoices) []edge {
	var out []edge
	for _, arm := range rc.Choices {
		if arm.Choice.IsConditional {
			for _, cond := range arm.Choice.Conditional {
				if cond.Target.Kind == story.TargetPassageName {
					out = append(out, edge{from: from, to: cond.Target.PassageName, label: arm.Label})
				}
			}
			continue
		}
		if arm.Choice.Target.Kind == story.TargetPassageName {
			out = append(out, edge{from: from, to: arm.Choice.Target.PassageName, label: arm.Label})
		}
	}
	if rc.Default.Kind == story.TargetPassageName {
		out = append(out, edge{from: from, to: rc.Default.PassageName, label: "(default)"})
	}
	return out
}

// --- Mermaid flowchart ---

func generateMermaid(namespace string, names []string, edges []edge) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, name := range names {
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID(name), escMermaid(name)))
	}
	for _, e := range edges {
		b.WriteString(fmt.Sprintf("    %s -->|%q| %s\n", safeID(e.from), e.label, safeID(e.to)))
	}
	return b.String()
}

func safeID(name string) string {
	r := strings.NewReplacer("-", "_", " ", "_", ".", "_")
	return r.Replace(name)
}

func escMermaid(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return strings.ReplaceAll(s, `'`, "#apos;")
}

// --- ASCII ---

// generateASCII renders one uniformly-sized box per passage, each
// followed by its outgoing edges as labeled arrows, the box width
// computed from rune display width so wide (CJK, emoji) passage names
// still align — the same runewidth.StringWidth-based uniform sizing
// pkg/diagram's ASCII renderer uses for step boxes.
func generateASCII(namespace string, names []string, edges []edge) string {
	var b strings.Builder
	if len(names) == 0 {
		return namespace + " (no passages)\n"
	}

	byFrom := make(map[string][]edge, len(edges))
	for _, e := range edges {
		byFrom[e.from] = append(byFrom[e.from], e)
	}

	width := 0
	for _, name := range names {
		if w := runewidth.StringWidth(name) + 2; w > width {
			width = w
		}
	}

	for _, name := range names {
		b.WriteString(box(name, width))
		for _, e := range byFrom[name] {
			b.WriteString(fmt.Sprintf("    --[%s]--> %s\n", e.label, e.to))
		}
	}
	return b.String()
}

func box(name string, width int) string {
	pad := width - runewidth.StringWidth(name)
	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", width) + "┐\n")
	b.WriteString("│" + name + strings.Repeat(" ", pad) + "│\n")
	b.WriteString("└" + strings.Repeat("─", width) + "┘\n")
	return b.String()
}
