package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
)

// TextParser handles plain text files. Blank lines separate paragraphs and a
// paragraph that is a single "#"-prefixed line is a heading.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newBuilder(titleFromFilename(filename))
	var current strings.Builder
	start, lineNo := 0, 0

	flush := func() {
		if current.Len() > 0 {
			addParagraph(b, current.String(), start)
			current.Reset()
		}
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		} else {
			start = lineNo
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return b.finish(), nil
}

// addParagraph feeds one paragraph of plain text to b.
func addParagraph(b *builder, para string, page int) {
	para = strings.TrimSpace(para)
	if !strings.Contains(para, "\n") && strings.HasPrefix(para, "#") {
		level := len(para) - len(strings.TrimLeft(para, "#"))
		b.heading(level, strings.TrimLeft(para, "# "), page)
		return
	}
	b.block(para)
}

// splitParagraphs splits on blank lines.
func splitParagraphs(text string) []string {
	var out []string
	var cur []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, "\n"))
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, "\n"))
	}
	return out
}
