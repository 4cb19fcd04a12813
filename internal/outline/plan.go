package outline

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/checkmate/internal/section"
)

// MaxNameLen bounds section names and test titles, in characters.
const MaxNameLen = 250

// SectionDraft is a section the importer must find or create.
type SectionDraft struct {
	Path []string // Heading hierarchy, e.g. ["Checkout", "Payments", "Cards"]
	Page int
}

// TestDraft is a test case bound for the section at SectionPath. An empty
// SectionPath leaves the test unfiled.
type TestDraft struct {
	SectionPath    []string
	Title          string
	Preconditions  string
	Steps          string
	ExpectedResult string
	Priority       string
	Page           int
}

// Drafts is the flattened form of an outline, in document order. Parents
// always precede their children in Sections.
type Drafts struct {
	Sections []SectionDraft
	Tests    []TestDraft
	Dropped  int // Cases rejected by ValidateTest
}

// Plan walks o and produces the sections and tests it describes. Headings
// that repeat under the same parent collapse into one section.
func Plan(o *Outline) Drafts {
	var d Drafts
	if o == nil {
		return d
	}
	seen := make(map[string]bool)

	addTests := func(path []string, page int, cases []Case) {
		for _, c := range cases {
			td := TestDraft{
				SectionPath:    copyPath(path),
				Title:          c.Title,
				Preconditions:  strings.TrimSpace(c.Preconditions),
				Steps:          strings.TrimSpace(c.Steps),
				ExpectedResult: strings.TrimSpace(c.ExpectedResult),
				Priority:       c.Priority,
				Page:           page,
			}
			if !ValidateTest(&td) {
				d.Dropped++
				continue
			}
			d.Tests = append(d.Tests, td)
		}
	}

	var walk func(n *Node, path []string)
	walk = func(n *Node, path []string) {
		var p []string
		p = append(p, path...)
		if name := CleanName(n.Title); name != "" {
			p = append(p, name)
			key := section.JoinPath(p)
			if !seen[key] {
				seen[key] = true
				d.Sections = append(d.Sections, SectionDraft{Path: copyPath(p), Page: n.Page})
			}
		}
		addTests(p, n.Page, n.Cases)
		for _, c := range n.Children {
			walk(c, p)
		}
	}

	addTests(nil, 0, o.Cases)
	for _, n := range o.Children {
		walk(n, nil)
	}
	return d
}

// ValidateTest normalizes a draft in place and reports whether it can be
// stored. A draft needs a non-empty title; overlong titles are cut and
// unknown priorities are cleared.
func ValidateTest(td *TestDraft) bool {
	if td == nil {
		return false
	}
	td.Title = CleanName(td.Title)
	if td.Title == "" {
		return false
	}
	td.Priority = NormalizePriority(td.Priority)
	return true
}

// CleanName collapses whitespace, replaces the path separator and truncates
// to MaxNameLen characters.
func CleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, section.Separator, " / ")
	if utf8.RuneCountInString(s) > MaxNameLen {
		s = strings.TrimSpace(string([]rune(s)[:MaxNameLen]))
	}
	return s
}

var priorities = map[string]string{
	"low":      "Low",
	"p3":       "Low",
	"medium":   "Medium",
	"normal":   "Medium",
	"p2":       "Medium",
	"high":     "High",
	"p1":       "High",
	"critical": "Critical",
	"blocker":  "Critical",
	"p0":       "Critical",
}

// NormalizePriority maps common spellings onto Low, Medium, High or Critical.
// Anything else yields "".
func NormalizePriority(s string) string {
	return priorities[strings.ToLower(strings.TrimSpace(s))]
}

func copyPath(p []string) []string {
	if len(p) == 0 {
		return nil
	}
	out := make([]string, len(p))
	copy(out, p)
	return out
}
