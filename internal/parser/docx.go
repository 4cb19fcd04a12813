package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles open sections and list
// paragraphs become one case each.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "checkmate-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder(titleFromFilename(filename))
	var items []string
	flushList := func() {
		if len(items) > 0 {
			b.list(items)
			items = nil
		}
	}

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		style := docxStyle(para)
		if level := docxHeadingLevel(style); level > 0 {
			flushList()
			b.heading(level, text, 0)
			continue
		}
		if docxIsList(para, style) {
			items = append(items, text)
			continue
		}
		flushList()
		b.block(text)
	}
	flushList()

	return b.finish(), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel maps "Heading1" or "heading 1" style names to a level.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if len(s) == len("heading")+1 && strings.HasPrefix(s, "heading") {
		if d := s[len(s)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func docxIsList(para *docx.Paragraph, style string) bool {
	if para.Properties != nil && para.Properties.NumProperties != nil {
		return true
	}
	return strings.HasPrefix(strings.ToLower(style), "list")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.BarterRabbet:
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
