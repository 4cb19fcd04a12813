package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Each paragraph or
// list item starts a test case; code blocks and labeled paragraphs extend
// the one before.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	b := newBuilder(titleFromFilename(filename))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			b.heading(node.Level, inlineText(node, src), lineOf(node, src))
		case *ast.List:
			var items []string
			for it := node.FirstChild(); it != nil; it = it.NextSibling() {
				if t := blockText(it, src); t != "" {
					items = append(items, t)
				}
			}
			b.list(items)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			b.cont(rawLines(n, src))
		case *ast.ThematicBreak:
			b.flush()
		default:
			b.block(blockText(n, src))
		}
	}

	return b.finish(), nil
}

// blockText renders a block and its nested blocks as plain lines.
func blockText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return inlineText(n, src)
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		return rawLines(n, src)
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// inlineText collects the text of inline children, dropping emphasis and
// link markup. Soft and hard breaks become newlines.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func rawLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSpace(buf.String())
}

// lineOf returns the 1-based source line of a block, or 0 if unknown.
func lineOf(n ast.Node, src []byte) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
}
