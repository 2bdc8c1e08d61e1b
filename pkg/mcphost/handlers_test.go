package mcphost

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
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

func TestHandleLoad_MissingPath(t *testing.T) {
	sess := newSession()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := sess.HandleLoad(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error for missing path")
	}
}

func TestHandleNext_NoStoryLoaded(t *testing.T) {
	sess := newSession()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}

	result, err := sess.HandleNext(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error when no story is loaded")
	}
}

func TestLoadThenNextThroughChoice(t *testing.T) {
	dir := t.TempDir()
	writeStory(t, dir)
	sess := newSession()

	loadReq := mcp.CallToolRequest{}
	loadReq.Params.Arguments = map[string]any{"path": dir}
	result, err := sess.HandleLoad(context.Background(), loadReq)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("load failed: %v", result.Content)
	}

	nextReq := mcp.CallToolRequest{}
	nextReq.Params.Arguments = map[string]any{"input": ""}
	result, err = sess.HandleNext(context.Background(), nextReq)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("next failed: %v", result.Content)
	}

	nextReq.Params.Arguments = map[string]any{"input": "Yes"}
	result, err = sess.HandleNext(context.Background(), nextReq)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("next on choice failed: %v", result.Content)
	}
}

func TestHandleSnapshotAndRestore_NoStoryLoaded(t *testing.T) {
	sess := newSession()

	snapReq := mcp.CallToolRequest{}
	snapReq.Params.Arguments = map[string]any{"name": "checkpoint"}
	result, err := sess.HandleSnapshot(context.Background(), snapReq)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error snapshotting with no story loaded")
	}

	result, err = sess.HandleRestore(context.Background(), snapReq)
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected error restoring with no story loaded")
	}
}

func TestSnapshotAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeStory(t, dir)
	sess := newSession()

	loadReq := mcp.CallToolRequest{}
	loadReq.Params.Arguments = map[string]any{"path": dir}
	if result, err := sess.HandleLoad(context.Background(), loadReq); err != nil || result.IsError {
		t.Fatalf("load failed: %v %v", err, result)
	}

	nextReq := mcp.CallToolRequest{}
	nextReq.Params.Arguments = map[string]any{"input": ""}
	if result, err := sess.HandleNext(context.Background(), nextReq); err != nil || result.IsError {
		t.Fatalf("first next failed: %v %v", err, result)
	}

	snapReq := mcp.CallToolRequest{}
	snapReq.Params.Arguments = map[string]any{"name": "before-choice"}
	if result, err := sess.HandleSnapshot(context.Background(), snapReq); err != nil || result.IsError {
		t.Fatalf("snapshot failed: %v %v", err, result)
	}

	choiceReq := mcp.CallToolRequest{}
	choiceReq.Params.Arguments = map[string]any{"input": "Yes"}
	if result, err := sess.HandleNext(context.Background(), choiceReq); err != nil || result.IsError {
		t.Fatalf("choice advance failed: %v %v", err, result)
	}

	restoreReq := mcp.CallToolRequest{}
	restoreReq.Params.Arguments = map[string]any{"name": "before-choice"}
	result, err := sess.HandleRestore(context.Background(), restoreReq)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("restore failed: %v", result.Content)
	}
}
