package storycache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/kataru-lang/kataru/pkg/bookmark"
	"github.com/kataru-lang/kataru/pkg/story"
	"github.com/vmihailenco/msgpack/v5"
)

// writeFramed MessagePack-encodes v and writes it to w as a 4-byte
// big-endian length prefix followed by the encoded bytes, so a reader
// can tell where one blob ends without relying on EOF.
func writeFramed(w io.Writer, v any) error {
	buf, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("storycache: encode: %w", err)
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(buf)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("storycache: write length prefix: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("storycache: write payload: %w", err)
	}
	return nil
}

// readFramed reads one length-prefixed MessagePack blob from r and
// decodes it into v.
func readFramed(r io.Reader, v any) error {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return fmt.Errorf("storycache: read length prefix: %w", err)
	}
	n := binary.BigEndian.Uint32(prefix[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("storycache: read payload: %w", err)
	}
	if err := msgpack.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("storycache: decode: %w", err)
	}
	return nil
}

// SaveStory writes st to w as a length-prefixed MessagePack blob.
func SaveStory(w io.Writer, st story.Story) error {
	wire, err := storyToWire(st)
	if err != nil {
		return err
	}
	return writeFramed(w, wire)
}

// LoadStory reads back a Story previously written by SaveStory.
func LoadStory(r io.Reader) (story.Story, error) {
	var wire wireStory
	if err := readFramed(r, &wire); err != nil {
		return nil, err
	}
	return wireToStory(wire)
}

// SaveBookmark writes b to w as a length-prefixed MessagePack blob,
// including state, position, call stack, and snapshots.
func SaveBookmark(w io.Writer, b *bookmark.Bookmark) error {
	return writeFramed(w, bookmarkToWire(b))
}

// LoadBookmark reads back a Bookmark previously written by SaveBookmark.
func LoadBookmark(r io.Reader) (*bookmark.Bookmark, error) {
	var wire wireBookmark
	if err := readFramed(r, &wire); err != nil {
		return nil, err
	}
	return wireToBookmark(wire)
}

// SaveStoryFile is the path-based convenience form of SaveStory,
// mirroring the original's SaveMessagePack trait.
func SaveStoryFile(path string, st story.Story) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storycache: create %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := SaveStory(bw, st); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadStoryFile is the path-based convenience form of LoadStory,
// mirroring the original's LoadMessagePack trait.
func LoadStoryFile(path string) (story.Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storycache: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadStory(bufio.NewReader(f))
}

// SaveBookmarkFile is the path-based convenience form of SaveBookmark.
func SaveBookmarkFile(path string, b *bookmark.Bookmark) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storycache: create %s: %w", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)
	if err := SaveBookmark(bw, b); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadBookmarkFile is the path-based convenience form of LoadBookmark.
func LoadBookmarkFile(path string) (*bookmark.Bookmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storycache: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadBookmark(bufio.NewReader(f))
}
