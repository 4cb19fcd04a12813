// Package outline is the parser-neutral shape of an imported test plan: a
// heading tree whose nodes carry test cases.
package outline

import (
	"strings"
)

// Outline is the root of a parsed document.
type Outline struct {
	Title    string  // Document title (from metadata or filename)
	Cases    []Case  // Cases that appear before the first heading
	Children []*Node // Top-level headings
}

// Node is a heading and everything filed under it.
type Node struct {
	Title    string  // Heading text (empty for untitled containers)
	Page     int     // Source page/line (0 if N/A)
	Cases    []Case  // Test cases directly under this heading
	Children []*Node // Subheadings
}

// Case is one test case as it appears in a source document.
type Case struct {
	Title          string
	Preconditions  string
	Steps          string
	ExpectedResult string
	Priority       string
}

// Child returns the child of n titled title, adding it when absent.
func (n *Node) Child(title string) *Node {
	for _, c := range n.Children {
		if c.Title == title {
			return c
		}
	}
	c := &Node{Title: title}
	n.Children = append(n.Children, c)
	return c
}

// Ensure walks path from the top level of o, adding missing nodes, and
// returns the last one. An empty path returns nil.
func (o *Outline) Ensure(path []string) *Node {
	if len(path) == 0 {
		return nil
	}
	var cur *Node
	for _, c := range o.Children {
		if c.Title == path[0] {
			cur = c
			break
		}
	}
	if cur == nil {
		cur = &Node{Title: path[0]}
		o.Children = append(o.Children, cur)
	}
	for _, name := range path[1:] {
		cur = cur.Child(name)
	}
	return cur
}

// Add files c under path, or at the top level when path is empty.
func (o *Outline) Add(path []string, c Case) {
	if n := o.Ensure(path); n != nil {
		n.Cases = append(n.Cases, c)
		return
	}
	o.Cases = append(o.Cases, c)
}

// Count returns the number of cases in o.
func (o *Outline) Count() int {
	total := len(o.Cases)
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			total += len(n.Cases)
			walk(n.Children)
		}
	}
	walk(o.Children)
	return total
}

// Text flattens the outline to plain text, headings included. The importer
// hashes it for duplicate detection.
func (o *Outline) Text() string {
	var sb strings.Builder
	writeCases(&sb, o.Cases)
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.Title != "" {
				sb.WriteString(n.Title)
				sb.WriteString("\n")
			}
			writeCases(&sb, n.Cases)
			walk(n.Children)
		}
	}
	walk(o.Children)
	return sb.String()
}

func writeCases(sb *strings.Builder, cases []Case) {
	for _, c := range cases {
		for _, s := range []string{c.Title, c.Preconditions, c.Steps, c.ExpectedResult, c.Priority} {
			if s != "" {
				sb.WriteString(s)
				sb.WriteString("\n")
			}
		}
	}
}

// field labels recognized inside a free-text case block.
var labels = map[string]string{
	"precondition":    "pre",
	"preconditions":   "pre",
	"given":           "pre",
	"step":            "steps",
	"steps":           "steps",
	"when":            "steps",
	"expected":        "expected",
	"expected result": "expected",
	"then":            "expected",
	"priority":        "priority",
}

// ParseCase turns a block of free text into a Case. The first non-empty line
// is the title. Lines starting with a label such as "Steps:" or "Expected:"
// switch the field that following lines go to; unlabeled lines are steps.
func ParseCase(text string) Case {
	var c Case
	var pre, steps, expected []string
	field := "steps"
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if c.Title == "" {
			c.Title = line
			continue
		}
		if head, rest, ok := strings.Cut(line, ":"); ok {
			if f, known := labels[strings.ToLower(strings.TrimSpace(head))]; known {
				field = f
				line = strings.TrimSpace(rest)
				if line == "" {
					continue
				}
			}
		}
		switch field {
		case "pre":
			pre = append(pre, line)
		case "expected":
			expected = append(expected, line)
		case "priority":
			c.Priority = line
			field = "steps"
		default:
			steps = append(steps, line)
		}
	}
	c.Preconditions = strings.Join(pre, "\n")
	c.Steps = strings.Join(steps, "\n")
	c.ExpectedResult = strings.Join(expected, "\n")
	return c
}

// IsLabeled reports whether the first non-empty line of text starts with a
// field label, meaning it continues the case before it rather than starting
// a new one.
func IsLabeled(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		head, _, ok := strings.Cut(line, ":")
		if !ok {
			return false
		}
		_, known := labels[strings.ToLower(strings.TrimSpace(head))]
		return known
	}
	return false
}
