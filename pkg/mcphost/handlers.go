package mcphost

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/runner"
	"github.com/kataru-lang/kataru/pkg/storyyaml"
	"github.com/kataru-lang/kataru/pkg/validate"
	"github.com/kataru-lang/kataru/pkg/value"
)

// Session holds the one Runner+Bookmark+Story triple an MCP process
// serves. mu serialises tool calls against it — the Runner's own
// stepping model is single-threaded and synchronous, and an MCP
// server may dispatch a client's requests concurrently, so the lock
// is what actually gives next() its one-caller-at-a-time guarantee
// here, same as the host loop in cmd/kataru/run.go gets it for free
// from reading stdin on a single goroutine.
type Session struct {
	mu sync.Mutex
	r  *runner.Runner
}

func newSession() *Session {
	return &Session{}
}

// HandleLoad implements the kataru_load tool.
func (s *Session) HandleLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return errorResult("path argument is required"), nil
	}

	st, err := storyyaml.Load(path)
	if err != nil {
		return errorResult(fmt.Sprintf("load: %s", err)), nil
	}
	if err := validate.Story(st); err != nil {
		return errorResult(fmt.Sprintf("validate: %s", err)), nil
	}

	bm := bookmark.New()
	r, err := runner.New(bm, st)
	if err != nil {
		return errorResult(fmt.Sprintf("start: %s", err)), nil
	}

	s.mu.Lock()
	s.r = r
	s.mu.Unlock()

	return textResult(fmt.Sprintf("✓ loaded %s (%d namespaces)", path, len(st))), nil
}

// HandleNext implements the kataru_next tool.
func (s *Session) HandleNext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		return errorResult("no story loaded — call kataru_load first"), nil
	}

	args := req.GetArguments()
	input, _ := args["input"].(string)

	line, err := s.r.Next(input)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	data, err := json.MarshalIndent(lineToResponse(line), "", "  ")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

// HandleSnapshot implements the kataru_snapshot tool.
func (s *Session) HandleSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		return errorResult("no story loaded — call kataru_load first"), nil
	}
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return errorResult("name argument is required"), nil
	}

	s.r.SaveSnapshot(name)
	return textResult(fmt.Sprintf("✓ saved snapshot %q", name)), nil
}

// HandleRestore implements the kataru_restore tool.
func (s *Session) HandleRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		return errorResult("no story loaded — call kataru_load first"), nil
	}
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return errorResult("name argument is required"), nil
	}

	if err := s.r.LoadSnapshot(name); err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(fmt.Sprintf("✓ restored snapshot %q", name)), nil
}

// lineToResponse flattens a runner.Line into a JSON-friendly map the
// same way pkg/ecosystem/mcp.HandleExec builds its response map from
// an engine.Result, rather than exposing the Line variants' Go struct
// shape directly.
func lineToResponse(line runner.Line) map[string]any {
	switch l := line.(type) {
	case runner.LineDialogue:
		return map[string]any{
			"kind":  "dialogue",
			"name":  l.Dialogue.Name,
			"text":  l.Dialogue.Text,
			"spans": len(l.Dialogue.Attributes),
		}
	case runner.LineChoices:
		return map[string]any{
			"kind":    "choices",
			"labels":  l.Choices.Labels,
			"timeout": l.Choices.Timeout,
		}
	case runner.LineCommand:
		params := map[string]any{}
		for _, p := range l.Command.Params {
			params[p.Name] = valueToAny(p.Value)
		}
		return map[string]any{
			"kind":   "command",
			"name":   l.Command.Name,
			"params": params,
		}
	case runner.LineInput:
		prompts := make([]map[string]any, 0, len(l.Prompts))
		for _, p := range l.Prompts {
			prompts = append(prompts, map[string]any{"var": p.Var, "prompt": p.Prompt})
		}
		return map[string]any{"kind": "input", "prompts": prompts}
	case runner.LineInvalidChoice:
		return map[string]any{"kind": "invalid_choice"}
	case runner.LineEnd:
		return map[string]any{"kind": "end"}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

// valueToAny converts a value.Value into its nearest encoding/json
// representation, the same Kind-switch debug.go's handleWatch uses to
// build an expr-lang env from story state.
func valueToAny(v value.Value) any {
	switch v.Kind().String() {
	case "string":
		return v.AsString()
	case "number":
		return v.AsNumber()
	case "bool":
		return v.AsBool()
	default:
		return nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(msg)},
		IsError: true,
	}
}
