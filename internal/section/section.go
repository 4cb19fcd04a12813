// Package section implements the section hierarchy engine: building display
// trees from flat parent-pointer rows, rendering hierarchy paths, expanding
// selections to whole subtrees and reconstructing the open ancestor chain of a
// selection.
//
// Every function here is pure. Inputs are never mutated and no state survives
// between calls.
package section

import "time"

// NoParent is the sentinel parent id meaning "this section is a root".
const NoParent int64 = -1

// Separator joins names in a hierarchy path.
const Separator = " > "

// Section is a named node in a project's test-organization tree.
type Section struct {
	ID          int64     `json:"sectionId"`
	Name        string    `json:"sectionName"`
	Description *string   `json:"sectionDescription"`
	ParentID    *int64    `json:"parentId"`
	ProjectID   int64     `json:"projectId"`
	CreatedBy   *int64    `json:"createdBy"`
	UpdatedBy   *int64    `json:"updatedBy"`
	CreatedOn   time.Time `json:"createdOn"`
	UpdatedOn   time.Time `json:"updatedOn"`
}

// DisplaySection is the tree form of a Section used for rendering.
type DisplaySection struct {
	SectionID   int64             `json:"sectionId"`
	SectionName string            `json:"sectionName"`
	SubSections []*DisplaySection `json:"subSections"`
}

// WithHierarchy is a Section annotated with its " > " joined ancestor path.
type WithHierarchy struct {
	Section
	SectionHierarchy string `json:"sectionHierarchy"`
}

// HasParent reports whether the section points at a parent. nil, 0 and
// NoParent all mean root.
func (s Section) HasParent() bool {
	return hasParent(s.ParentID)
}

func hasParent(p *int64) bool {
	return p != nil && *p != 0 && *p != NoParent
}

// Lookup indexes sections by id. When ids repeat, the later record wins.
func Lookup(sections []Section) map[int64]Section {
	m := make(map[int64]Section, len(sections))
	for _, s := range sections {
		m[s.ID] = s
	}
	return m
}

// ParentRef returns a pointer suitable for Section.ParentID.
func ParentRef(id int64) *int64 {
	return &id
}
