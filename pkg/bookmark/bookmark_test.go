package bookmark

import (
	"testing"

	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

func newTestStory() story.Story {
	return story.Story{
		story.GLOBAL: {
			Config: story.Config{
				State: story.State{"score": value.Number(0)},
			},
			Passages: map[string]story.Passage{},
		},
		"hall": {
			Config: story.Config{
				Namespace: "hall",
				State:     story.State{"visited": value.Bool(false)},
				Characters: map[string]story.CharacterData{
					"Butler": {Description: "a butler"},
				},
			},
			Passages: map[string]story.Passage{
				"intro": {},
			},
		},
	}
}

func TestInitStateAndValueFallback(t *testing.T) {
	b := New()
	st := newTestStory()
	b.InitState(st)
	b.SetNamespace("hall")

	v, err := b.Value("$visited")
	if err != nil || v.AsBool() != false {
		t.Fatalf("expected local visited=false, got %v, %v", v, err)
	}
	v, err = b.Value("$score")
	if err != nil || v.AsNumber() != 0 {
		t.Fatalf("expected global fallback for score, got %v, %v", v, err)
	}
}

func TestSetStateRoutesLocalBeforeGlobal(t *testing.T) {
	b := New()
	st := newTestStory()
	b.InitState(st)
	b.SetNamespace("hall")

	if err := b.SetState(story.State{"$visited": value.Bool(true)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := b.Value("$visited")
	if !v.AsBool() {
		t.Fatalf("expected visited=true after set")
	}

	if err := b.SetState(story.State{"$score +": value.Number(5)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ = b.Value("$score")
	if v.AsNumber() != 5 {
		t.Fatalf("expected global score to accumulate via fallback routing, got %v", v)
	}
}

func TestCharacterIsLocal(t *testing.T) {
	b := New()
	st := newTestStory()
	b.InitState(st)
	b.SetNamespace("hall")
	if !b.CharacterIsLocal(st, "Butler") {
		t.Fatalf("expected Butler to be local to hall")
	}
	if b.CharacterIsLocal(st, "Nobody") {
		t.Fatalf("expected Nobody to not be local")
	}
	b.SetNamespace(story.GLOBAL)
	if b.CharacterIsLocal(st, "Butler") {
		t.Fatalf("GLOBAL namespace has no local characters")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	b := New()
	b.SetPosition(story.Position{Namespace: "hall", Passage: "intro", Line: 3})
	b.PushStack(story.Position{Namespace: story.GLOBAL, Passage: "start", Line: 1})
	b.SaveSnapshot("checkpoint")

	b.SetPosition(story.Position{Namespace: "hall", Passage: "intro", Line: 9})
	if err := b.LoadSnapshot("checkpoint"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Position() != (story.Position{Namespace: "hall", Passage: "intro", Line: 3}) {
		t.Fatalf("position not restored: %v", b.Position())
	}
	if len(b.Stack()) != 1 {
		t.Fatalf("stack not restored: %v", b.Stack())
	}

	if err := b.LoadSnapshot("checkpoint"); err == nil {
		t.Fatalf("expected snapshot to be consumed on load")
	}
}

func TestInterpolate(t *testing.T) {
	b := New()
	st := newTestStory()
	b.InitState(st)
	b.SetNamespace(story.GLOBAL)
	got := b.Interpolate("Score is ${score} and ${missing} stays.")
	if got != "Score is 0 and ${missing} stays." {
		t.Fatalf("unexpected interpolation: %q", got)
	}
}
