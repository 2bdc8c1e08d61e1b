// Package main provides the kataru-mcp binary — an MCP server exposing
// a Kataru story Runner to agentic hosts.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/kataru-lang/kataru/pkg/mcphost"
)

var version = "dev"

func main() {
	s := mcphost.NewServer(version)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
