package section

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BuildHierarchy turns flat sections into a forest of DisplaySections.
//
// Roots keep input order. A record is attached under its parent only when the
// parent id is among the known ids, so dangling parents become roots and
// cyclic chains never recurse. Records sharing an id each get their own entry
// and all of them carry the name of the last such record.
func BuildHierarchy(sections []Section) []*DisplaySection {
	roots := make([]*DisplaySection, 0)
	if len(sections) == 0 {
		return roots
	}

	names := make(map[int64]string, len(sections))
	for _, s := range sections {
		names[s.ID] = s.Name
	}

	nodes := make([]*DisplaySection, len(sections))
	byID := make(map[int64]*DisplaySection, len(sections))
	for i, s := range sections {
		n := &DisplaySection{
			SectionID:   s.ID,
			SectionName: names[s.ID],
			SubSections: []*DisplaySection{},
		}
		nodes[i] = n
		byID[s.ID] = n
	}

	for i, s := range sections {
		if s.HasParent() {
			if parent, ok := byID[*s.ParentID]; ok {
				parent.SubSections = append(parent.SubSections, nodes[i])
				continue
			}
		}
		roots = append(roots, nodes[i])
	}
	return roots
}

// Find returns the first node with the given id in pre-order, or nil.
func Find(nodes []*DisplaySection, id int64) *DisplaySection {
	var found *DisplaySection
	walk(nodes, func(n *DisplaySection) bool {
		if n.SectionID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Flatten lists every id in the forest in pre-order.
func Flatten(nodes []*DisplaySection) []int64 {
	ids := make([]int64, 0)
	walk(nodes, func(n *DisplaySection) bool {
		ids = append(ids, n.SectionID)
		return true
	})
	return ids
}

// walk visits nodes depth first. Each node is visited at most once, so a
// hand-built cyclic graph terminates. fn returning false stops the walk.
func walk(nodes []*DisplaySection, fn func(*DisplaySection) bool) {
	seen := make(map[*DisplaySection]bool)
	var visit func([]*DisplaySection) bool
	visit = func(ns []*DisplaySection) bool {
		for _, n := range ns {
			if n == nil || seen[n] {
				continue
			}
			seen[n] = true
			if !fn(n) {
				return false
			}
			if !visit(n.SubSections) {
				return false
			}
		}
		return true
	}
	visit(nodes)
}

// SortByName returns a copy of the forest with siblings ordered by name using
// locale-aware, case-insensitive collation. The input is not modified.
func SortByName(nodes []*DisplaySection) []*DisplaySection {
	c := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	seen := make(map[*DisplaySection]bool)

	var sortLevel func([]*DisplaySection) []*DisplaySection
	sortLevel = func(ns []*DisplaySection) []*DisplaySection {
		out := make([]*DisplaySection, 0, len(ns))
		for _, n := range ns {
			if n == nil || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, &DisplaySection{
				SectionID:   n.SectionID,
				SectionName: n.SectionName,
				SubSections: sortLevel(n.SubSections),
			})
		}
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].SectionName, out[j].SectionName) < 0
		})
		return out
	}
	return sortLevel(nodes)
}
