package section

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBranch is 1 -> [2 -> [4, 5 -> [7]], 3 -> [6]].
func twoBranch() []Section {
	return []Section{
		sec(1, "root", nil),
		sec(2, "left", p(1)),
		sec(3, "right", p(1)),
		sec(4, "left a", p(2)),
		sec(5, "left b", p(2)),
		sec(6, "right a", p(3)),
		sec(7, "left b a", p(5)),
	}
}

func TestChildSections_NoChildren(t *testing.T) {
	assert.Equal(t, []int64{7}, ChildSections(7, nil))
	assert.Equal(t, []int64{7}, ChildSections(7, []*DisplaySection{}))
}

func TestChildSections_PreOrder(t *testing.T) {
	tree := BuildHierarchy(twoBranch())
	require.Len(t, tree, 1)
	assert.Equal(t, []int64{1, 2, 4, 5, 7, 3, 6}, ChildSections(1, tree[0].SubSections))
}

func TestChildSections_SmallTree(t *testing.T) {
	subs := []*DisplaySection{
		{SectionID: 2, SubSections: []*DisplaySection{{SectionID: 3}}},
		{SectionID: 4},
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ChildSections(1, subs))
}

func TestChildSections_CyclicGraphTerminates(t *testing.T) {
	a := &DisplaySection{SectionID: 2}
	b := &DisplaySection{SectionID: 3, SubSections: []*DisplaySection{a}}
	a.SubSections = []*DisplaySection{b}

	assert.Equal(t, []int64{1, 2, 3}, ChildSections(1, []*DisplaySection{a}))
}

func TestChildSetOf(t *testing.T) {
	tree := BuildHierarchy(twoBranch())
	assert.Equal(t, []int64{5, 7}, ChildSetOf(5, tree))
	assert.Equal(t, []int64{99}, ChildSetOf(99, tree))
}

func TestSelect(t *testing.T) {
	tree := BuildHierarchy(twoBranch())
	subsOf := func(id int64) []*DisplaySection { return Find(tree, id).SubSections }

	tests := []struct {
		name     string
		current  []int64
		id       int64
		modifier bool
		want     []int64
	}{
		{"plain click replaces", []int64{6}, 2, false, []int64{2, 4, 5, 7}},
		{"modified click appends", []int64{6}, 2, true, []int64{6, 2, 4, 5, 7}},
		{"modified click does not dedupe", []int64{4}, 2, true, []int64{4, 2, 4, 5, 7}},
		{"toggle removes child set", []int64{2, 4, 5, 7, 6}, 2, false, []int64{6}},
		{"toggle removes independently selected descendants", []int64{3, 2, 7}, 2, true, []int64{3}},
		{"toggle leaf", []int64{4, 6}, 4, false, []int64{6}},
		{"empty selection", nil, 3, false, []int64{3, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := append([]int64(nil), tt.current...)
			got := Select(current, tt.id, subsOf(tt.id), tt.modifier)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.current, current, "input selection must not change")
		})
	}
}

func TestInitialOpenSections(t *testing.T) {
	chain := []Section{
		sec(1, "Root", nil),
		sec(2, "Child", p(1)),
		sec(3, "Grandchild", p(2)),
	}

	tests := []struct {
		name     string
		selected []int64
		sections []Section
		want     []int64
	}{
		{"single leaf", []int64{3}, chain, []int64{3, 2, 1}},
		{"overlapping selections keep duplicates", []int64{3, 2}, chain, []int64{3, 2, 1, 2}},
		{"root only", []int64{1}, chain, []int64{1}},
		{"nothing selected", nil, chain, []int64{}},
		{"unknown id", []int64{42}, chain, []int64{42}},
		{"sentinel parent", []int64{2}, []Section{sec(1, "r", p(NoParent)), sec(2, "c", p(1))}, []int64{2, 1}},
		{"dangling parent", []int64{2}, []Section{sec(2, "c", p(9))}, []int64{2}},
		{
			"two cycle",
			[]int64{1, 2},
			[]Section{sec(1, "Section 1", p(2)), sec(2, "Section 2", p(1))},
			[]int64{1, 2, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialOpenSections(tt.selected, tt.sections))
		})
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []int64{3, 2, 1}, Dedupe([]int64{3, 2, 1, 2, 3}))
	assert.Empty(t, Dedupe(nil))
}

func TestParseSectionIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want []int64
	}{
		{"[1,2,3]", []int64{1, 2, 3}},
		{" [4] ", []int64{4}},
		{"[]", []int64{}},
		{"", []int64{}},
		{"null", []int64{}},
		{"invalid-json", []int64{}},
		{"[1,\"two\"]", []int64{}},
		{"{\"a\":1}", []int64{}},
		{"[1.5]", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseSectionIDs(tt.raw)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromQuery(t *testing.T) {
	q, err := url.ParseQuery("sectionIds=invalid-json")
	require.NoError(t, err)
	assert.Equal(t, []int64{}, FromQuery(q))

	q = url.Values{}
	q.Set(QueryParam, EncodeSectionIDs([]int64{5, 7}))
	assert.Equal(t, []int64{5, 7}, FromQuery(q))

	assert.Equal(t, []int64{}, FromQuery(url.Values{}))
	assert.Equal(t, "[]", EncodeSectionIDs(nil))
}
