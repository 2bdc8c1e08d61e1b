package main

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/storycache"
	"github.com/kataru-lang/kataru/pkg/storyyaml"
	"github.com/kataru-lang/kataru/pkg/validate"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Pack a story directory into a binary MessagePack cache, or inspect one",
}

var cacheBuildCmd = &cobra.Command{
	Use:   "build <story-dir> <out-file>",
	Short: "Load and validate a story directory, then write it as a binary cache",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := storyyaml.Load(args[0])
		if err != nil {
			return fmt.Errorf("load story: %w", err)
		}
		if err := validate.Story(st); err != nil {
			return fmt.Errorf("validate story: %w", err)
		}
		if err := storycache.SaveStoryFile(args[1], st); err != nil {
			return fmt.Errorf("save cache: %w", err)
		}
		fmt.Println(successStyle.Render("✓") + " wrote " + args[1])
		return nil
	},
}

var cacheInspectCmd = &cobra.Command{
	Use:   "inspect <cache-file>",
	Short: "Load a binary story cache and print its namespaces and passage counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := storycache.LoadStoryFile(args[0])
		if err != nil {
			return fmt.Errorf("load cache: %w", err)
		}
		for ns, sec := range st {
			fmt.Printf("%s: %d passages\n", ns, len(sec.Passages))
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheBuildCmd)
	cacheCmd.AddCommand(cacheInspectCmd)
}
