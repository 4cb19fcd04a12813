package parser

import (
	"path/filepath"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
)

// builder assembles an outline from a stream of headings and text blocks.
// Headings nest by level; blocks group into cases under the innermost
// heading.
type builder struct {
	out   *outline.Outline
	stack []stackEntry

	dst     *[]outline.Case
	pending []string
}

type stackEntry struct {
	node  *outline.Node
	level int
}

func newBuilder(title string) *builder {
	b := &builder{out: &outline.Outline{Title: title}}
	b.dst = &b.out.Cases
	return b
}

// heading opens a new section at level (1 for h1). Empty titles are ignored.
func (b *builder) heading(level int, title string, page int) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	b.flush()
	n := &outline.Node{Title: title, Page: page}

	// Pop stack until we find a parent with lower level.
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	if len(b.stack) == 0 {
		b.out.Children = append(b.out.Children, n)
	} else {
		parent := b.stack[len(b.stack)-1].node
		parent.Children = append(parent.Children, n)
	}
	b.stack = append(b.stack, stackEntry{node: n, level: level})
	b.dst = &n.Cases
}

// block adds a paragraph. It starts a new case unless it carries a field
// label or the pending case is waiting for content after a "Steps:" line.
func (b *builder) block(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(b.pending) > 0 && (outline.IsLabeled(text) || b.awaiting()) {
		b.pending = append(b.pending, text)
		return
	}
	b.flush()
	b.pending = []string{text}
}

// list adds list items. Each item is its own case, unless the pending case
// is waiting for content, in which case the whole list continues it.
func (b *builder) list(items []string) {
	if len(b.pending) > 0 && b.awaiting() {
		b.pending = append(b.pending, items...)
		return
	}
	for _, it := range items {
		b.block(it)
		b.flush()
	}
}

// cont appends text to the pending case. It is dropped when there is none.
func (b *builder) cont(text string) {
	text = strings.TrimSpace(text)
	if text == "" || len(b.pending) == 0 {
		return
	}
	b.pending = append(b.pending, text)
}

func (b *builder) awaiting() bool {
	last := b.pending[len(b.pending)-1]
	if i := strings.LastIndexByte(last, '\n'); i >= 0 {
		last = last[i+1:]
	}
	return strings.HasSuffix(strings.TrimSpace(last), ":")
}

func (b *builder) flush() {
	if len(b.pending) == 0 {
		return
	}
	*b.dst = append(*b.dst, outline.ParseCase(strings.Join(b.pending, "\n")))
	b.pending = nil
}

func (b *builder) finish() *outline.Outline {
	b.flush()
	return b.out
}

// titleFromFilename strips directories and the extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
