package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Headings open sections, <p> and <li>
// elements become cases, and <pre> extends the case before it.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	// Extract title from <title> tag if present.
	if t := findTitle(doc); t != "" {
		title = t
	}
	b := newBuilder(title)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				b.heading(level, textContent(n), 0)
				return
			}

			// Skip non-content elements.
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "ul", "ol":
				var items []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "li" {
						if t := textContent(c); t != "" {
							items = append(items, t)
						}
					}
				}
				b.list(items)
				return
			case "pre":
				b.cont(textContent(n))
				return
			case "p", "td", "blockquote", "dt", "dd":
				b.block(textContent(n))
				return
			case "hr":
				b.flush()
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return b.finish(), nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// textContent concatenates descendant text, keeping <br> as a newline.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
