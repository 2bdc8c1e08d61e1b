// Package mcphost exposes a Kataru Runner over the Model Context
// Protocol, grounded on pkg/ecosystem/mcp's NewServer/HandleX split: a
// server.go that registers tools, and a handlers.go that implements
// them. Unlike gert's tools, which are stateless (every call loads its
// own file fresh), a story's Runner is a stateful stepping machine, so
// the handlers here are methods on a *Session rather than free
// functions — one process holds exactly one Runner+Bookmark+Story
// triple, matching §5's no-shared-mutable-state rule between Runners
// by simply never constructing a second one.
package mcphost

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with the kataru_* tools registered
// against a fresh, empty Session.
func NewServer(version string) *server.MCPServer {
	sess := newSession()

	s := server.NewMCPServer(
		"kataru",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("kataru_load",
			mcp.WithDescription("Load and validate a story directory, replacing any story already loaded in this session"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the story directory")),
		),
		sess.HandleLoad,
	)

	s.AddTool(
		mcp.NewTool("kataru_next",
			mcp.WithDescription("Advance the loaded story by one line, feeding it the given input (a choice label, an answer to an input prompt, or empty for dialogue/commands)"),
			mcp.WithString("input", mcp.Description("Input for the current line, if any")),
		),
		sess.HandleNext,
	)

	s.AddTool(
		mcp.NewTool("kataru_snapshot",
			mcp.WithDescription("Save a named snapshot of the loaded story's current position and call stack"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Snapshot name")),
		),
		sess.HandleSnapshot,
	)

	s.AddTool(
		mcp.NewTool("kataru_restore",
			mcp.WithDescription("Restore the loaded story to a previously saved snapshot"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Snapshot name")),
		),
		sess.HandleRestore,
	)

	return s
}
