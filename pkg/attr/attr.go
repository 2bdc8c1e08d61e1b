// Package attr implements the inline-tag attribute extractor: it
// turns dialogue text containing tags like "<shout>hi</shout>" or a
// self-closing "<pause/>" into plain stripped text plus a list of
// attributed spans over that stripped text.
package attr

import (
	"fmt"

	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/kataru-lang/kataru/pkg/value"
)

// AttributedSpan is a range of the stripped text with one or more
// named attribute values applied. A nil Value means the attribute was
// present with no value (a bare flag).
type AttributedSpan struct {
	Start, End int
	Params     map[string]*value.Value
}

type context int

const (
	ctxText context = iota
	ctxOpen
	ctxClose
	ctxSelfClose
	ctxQuoted
	ctxEscaped
)

// Extractor extracts attributed spans using the attribute
// configuration declared by one section (tag name -> AttributeConfig).
type Extractor struct {
	config map[string]*story.AttributeConfig
}

// New builds an Extractor from a section's declared attribute config.
func New(config map[string]*story.AttributeConfig) *Extractor {
	return &Extractor{config: config}
}

type openFrame struct {
	name  string
	value *value.Value
	start int
	cfg   *story.AttributeConfig
}

// Extract parses text, returning the stripped (tag-free) text and the
// spans of attributes applied over it. Unknown tag names are passed
// through into the stripped text verbatim rather than erroring.
func (e *Extractor) Extract(text string) (string, []AttributedSpan, error) {
	runes := []rune(text)
	var stripped []rune
	var tagBuf []rune
	var stack []openFrame
	var spans []AttributedSpan
	ctx := ctxText

	pushSpan := func(name string, val *value.Value, start, end int, cfg *story.AttributeConfig) {
		if cfg != nil && cfg.IsMacro {
			if s := findMergeable(spans, start, end); s != nil {
				for k, def := range cfg.Macro {
					s.Params[k] = def
				}
				return
			}
			params := make(map[string]*value.Value, len(cfg.Macro))
			for k, def := range cfg.Macro {
				params[k] = def
			}
			spans = append(spans, AttributedSpan{Start: start, End: end, Params: params})
			return
		}
		if s := findMergeable(spans, start, end); s != nil {
			s.Params[name] = val
			return
		}
		spans = append(spans, AttributedSpan{Start: start, End: end, Params: map[string]*value.Value{name: val}})
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch ctx {
		case ctxText:
			if c == '<' {
				tagBuf = nil
				ctx = ctxOpen
			} else {
				stripped = append(stripped, c)
			}
		case ctxOpen:
			switch {
			case c == '/' && len(tagBuf) == 0:
				ctx = ctxClose
			case c == '"':
				tagBuf = append(tagBuf, c)
				ctx = ctxQuoted
			case c == '/':
				ctx = ctxSelfClose
			case c == '>':
				if err := e.closeOpenTag(tagBuf, &stripped, &stack); err != nil {
					return "", nil, err
				}
				ctx = ctxText
			default:
				tagBuf = append(tagBuf, c)
			}
		case ctxSelfClose:
			if c != '>' {
				return "", nil, fmt.Errorf("self-closing tag <%s> must immediately close with '>'", string(tagBuf))
			}
			name, val, err := parseTagBuf(tagBuf)
			if err != nil {
				return "", nil, err
			}
			end := len(stripped)
			if cfg, known := e.config[name]; known {
				pushSpan(name, val, end, end, cfg)
			} else {
				stripped = append(stripped, '<')
				stripped = append(stripped, tagBuf...)
				stripped = append(stripped, '/', '>')
			}
			ctx = ctxText
		case ctxClose:
			if c == '>' {
				name := string(tagBuf)
				if _, known := e.config[name]; !known {
					stripped = append(stripped, '<', '/')
					stripped = append(stripped, tagBuf...)
					stripped = append(stripped, '>')
					ctx = ctxText
					break
				}
				if len(stack) == 0 {
					return "", nil, fmt.Errorf("closing tag </%s> had no open tag", name)
				}
				top := stack[len(stack)-1]
				if top.name != name {
					return "", nil, fmt.Errorf("tag <%s> was closed before <%s>", top.name, name)
				}
				stack = stack[:len(stack)-1]
				pushSpan(top.name, top.value, top.start, len(stripped), top.cfg)
				ctx = ctxText
			} else {
				tagBuf = append(tagBuf, c)
			}
		case ctxQuoted:
			switch c {
			case '\\':
				ctx = ctxEscaped
			case '"':
				tagBuf = append(tagBuf, c)
				ctx = ctxOpen
			default:
				tagBuf = append(tagBuf, c)
			}
		case ctxEscaped:
			tagBuf = append(tagBuf, c)
			ctx = ctxQuoted
		}
	}

	if ctx == ctxOpen && len(tagBuf) == 0 && len(stack) == 0 {
		// A lone trailing '<' with nothing after it: treat as literal text.
		stripped = append(stripped, '<')
		ctx = ctxText
	}
	if len(stack) > 0 {
		return "", nil, fmt.Errorf("unmatched tag <%s>", stack[len(stack)-1].name)
	}
	if ctx != ctxText {
		return "", nil, fmt.Errorf("unterminated tag at end of input")
	}
	return string(stripped), spans, nil
}

func (e *Extractor) closeOpenTag(tagBuf []rune, stripped *[]rune, stack *[]openFrame) error {
	name, val, err := parseTagBuf(tagBuf)
	if err != nil {
		return err
	}
	cfg, known := e.config[name]
	if !known {
		*stripped = append(*stripped, '<')
		*stripped = append(*stripped, tagBuf...)
		*stripped = append(*stripped, '>')
		return nil
	}
	*stack = append(*stack, openFrame{name: name, value: val, start: len(*stripped), cfg: cfg})
	return nil
}

// findMergeable returns the most recently pushed span if it covers
// exactly [start,end), so an adjacent attribute tag over the same
// range merges its params into one span instead of creating a new one.
func findMergeable(spans []AttributedSpan, start, end int) *AttributedSpan {
	if len(spans) == 0 {
		return nil
	}
	last := &spans[len(spans)-1]
	if last.Start == start && last.End == end {
		return last
	}
	return nil
}

// parseTagBuf splits a tag's inner text on the first '=' into its name
// and optional value (quoted or bare).
func parseTagBuf(buf []rune) (string, *value.Value, error) {
	text := string(buf)
	for i, r := range text {
		if r == '=' {
			name := text[:i]
			raw := text[i+1:]
			if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
				v := value.String(raw[1 : len(raw)-1])
				return name, &v, nil
			}
			v, err := value.Evaluate(raw, emptyResolver{})
			if err != nil {
				v = value.String(raw)
			}
			return name, &v, nil
		}
	}
	return text, nil, nil
}

type emptyResolver struct{}

func (emptyResolver) Resolve(string) (value.Value, bool) { return value.Value{}, false }
