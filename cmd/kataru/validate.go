package main

import (
	"fmt"
	"os"

	"github.com/kataru-lang/kataru/pkg/kerr"
	"github.com/kataru-lang/kataru/pkg/storyyaml"
	"github.com/kataru-lang/kataru/pkg/validate"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <story-dir>",
	Short: "Validate a story directory without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	st, err := storyyaml.Load(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("load failed: "+err.Error()))
		return fmt.Errorf("story failed to load")
	}

	if err := validate.Story(st); err != nil {
		if pe, ok := err.(*kerr.ParseError); ok {
			fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), pe.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("✗"), err)
		}
		return fmt.Errorf("validation failed")
	}

	fmt.Println(successStyle.Render("✓") + " story is valid")
	return nil
}
