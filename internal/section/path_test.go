package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	chain := []Section{
		sec(1, "Root", nil),
		sec(2, "Child", p(1)),
		sec(3, "Grandchild", p(2)),
	}

	tests := []struct {
		name     string
		id       int64
		sections []Section
		want     string
	}{
		{"root", 1, chain, "Root"},
		{"grandchild", 3, chain, "Root > Child > Grandchild"},
		{"unknown id", 42, chain, ""},
		{"empty list", 1, nil, ""},
		{"dangling parent", 2, []Section{sec(2, "Child", p(1))}, "Child"},
		{
			"two cycle",
			1,
			[]Section{sec(1, "Section 1", p(2)), sec(2, "Section 2", p(1))},
			"Section 2 > Section 1",
		},
		{
			"three cycle",
			1,
			[]Section{sec(1, "A", p(3)), sec(2, "B", p(1)), sec(3, "C", p(2))},
			"B > C > A",
		},
		{
			"self parent",
			1,
			[]Section{sec(1, "Self", p(1))},
			"Self",
		},
		{"nameless target", 2, []Section{sec(1, "Root", nil), sec(2, "", p(1))}, ""},
		{"nameless ancestor", 3, []Section{sec(1, "", nil), sec(3, "Leaf", p(1))}, " > Leaf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Path(tt.id, tt.sections))
		})
	}
}

func TestAddHierarchy(t *testing.T) {
	sections := []Section{
		sec(1, "Root", nil),
		sec(2, "Child", p(1)),
		sec(3, "Grandchild", p(2)),
	}
	before := append([]Section(nil), sections...)

	got := AddHierarchy(sections)
	require.Len(t, got, 3)
	assert.Equal(t, "Root", got[0].SectionHierarchy)
	assert.Equal(t, "Root > Child", got[1].SectionHierarchy)
	assert.Equal(t, "Root > Child > Grandchild", got[2].SectionHierarchy)
	assert.Equal(t, sections[2], got[2].Section)
	assert.Equal(t, before, sections)
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"Root", "Child", "Leaf"}, SplitPath("Root > Child >Leaf"))
	assert.Nil(t, SplitPath("   "))
	assert.Equal(t, "Root > Child", JoinPath(SplitPath("Root>Child")))
}
