package storycache

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/story"
)

type wirePosition struct {
	Namespace string
	Passage   string
	Line      int
}

type wireBookmark struct {
	State     map[string]map[string]any
	Position  wirePosition
	Stack     []wirePosition
	Snapshots map[string][]wirePosition
}

func positionToWire(p story.Position) wirePosition {
	return wirePosition{Namespace: p.Namespace, Passage: p.Passage, Line: p.Line}
}

func wireToPosition(w wirePosition) story.Position {
	return story.Position{Namespace: w.Namespace, Passage: w.Passage, Line: w.Line}
}

func positionsToWire(ps []story.Position) []wirePosition {
	if ps == nil {
		return nil
	}
	out := make([]wirePosition, len(ps))
	for i, p := range ps {
		out[i] = positionToWire(p)
	}
	return out
}

func wireToPositions(ws []wirePosition) []story.Position {
	if ws == nil {
		return nil
	}
	out := make([]story.Position, len(ws))
	for i, w := range ws {
		out[i] = wireToPosition(w)
	}
	return out
}

func bookmarkToWire(b *bookmark.Bookmark) wireBookmark {
	state := make(map[string]map[string]any, len(b.AllState()))
	for ns, s := range b.AllState() {
		state[ns] = stateToWire(s)
	}
	snapshots := make(map[string][]wirePosition, len(b.Snapshots()))
	for name, snap := range b.Snapshots() {
		snapshots[name] = positionsToWire(snap)
	}
	return wireBookmark{
		State:     state,
		Position:  positionToWire(b.Position()),
		Stack:     positionsToWire(b.Stack()),
		Snapshots: snapshots,
	}
}

func wireToBookmark(w wireBookmark) (*bookmark.Bookmark, error) {
	state := make(map[string]story.State, len(w.State))
	for ns, ws := range w.State {
		s, err := wireToState(ws)
		if err != nil {
			return nil, fmt.Errorf("namespace %q state: %w", ns, err)
		}
		state[ns] = s
	}
	snapshots := make(map[string][]story.Position, len(w.Snapshots))
	for name, snap := range w.Snapshots {
		snapshots[name] = wireToPositions(snap)
	}
	return bookmark.Restore(state, wireToPosition(w.Position), wireToPositions(w.Stack), snapshots), nil
}
