// Command kataru is a terminal demo host for the Kataru narrative
// runtime: it loads a story directory, drives a Runner, and exposes a
// handful of developer subcommands (validate, schema, debug) around
// that same load/run core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kataru",
	Short: "Kataru interactive narrative runtime",
	Long:  "kataru — loads, validates, and runs Kataru YAML stories from the terminal.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(lintSchemaCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(versionCmd)
}

var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kataru %s (build: %s)\n", version, commit)
	},
}
