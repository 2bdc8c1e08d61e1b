package runner

import (
	"github.com/kataru-lang/kataru/pkg/attr"
	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/story"
)

// buildDialogue interpolates "${var}" references and extracts inline
// attribute tags from text, qualifying name the same way a command's
// character is qualified: namespace-prefixed only when locally
// declared, left bare (including the empty "no speaker yet" name)
// otherwise.
func buildDialogue(name, text string, st story.Story, bm *bookmark.Bookmark) (Dialogue, error) {
	qualified := name
	if name != "" && bm.CharacterIsLocal(st, name) {
		qualified = bm.Namespace() + ":" + name
	}
	interpolated := bm.Interpolate(text)

	var cfg map[string]*story.AttributeConfig
	if sec, ok := st[bm.Namespace()]; ok {
		cfg = sec.Config.Attributes
	}
	stripped, spans, err := attr.New(cfg).Extract(interpolated)
	if err != nil {
		return Dialogue{}, err
	}
	return Dialogue{Name: qualified, Text: stripped, Attributes: spans}, nil
}
