package main

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/storydiagram"
	"github.com/kataru-lang/kataru/pkg/storyyaml"
	"github.com/spf13/cobra"
)

var diagramFormat string

var diagramCmd = &cobra.Command{
	Use:   "diagram <story-dir> <namespace>",
	Short: "Print a Mermaid flowchart or ASCII diagram of a namespace's passage graph",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiagram,
}

func init() {
	diagramCmd.Flags().StringVar(&diagramFormat, "format", "mermaid", "diagram format: mermaid or ascii")
}

func runDiagram(cmd *cobra.Command, args []string) error {
	st, err := storyyaml.Load(args[0])
	if err != nil {
		return fmt.Errorf("load story: %w", err)
	}

	out, err := storydiagram.Generate(st, args[1], storydiagram.Format(diagramFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
