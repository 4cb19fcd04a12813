package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/checkmate/internal/section"
	"github.com/dgallion1/checkmate/internal/store"
)

type tree struct {
	root, child, grandchild, sibling int64
}

// seedTree creates Root > {Child > Grandchild, Sibling} through the API.
func (e *testEnv) seedTree(t *testing.T, projectID int64) tree {
	t.Helper()
	mk := func(name string, parent *int64) int64 {
		body := map[string]any{"sectionName": name}
		if parent != nil {
			body["parentId"] = *parent
		}
		rec := e.do(t, http.MethodPost, "/api/v1/projects/"+itoa(projectID)+"/sections", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[section.Section](t, rec).ID
	}
	var tr tree
	tr.root = mk("Root", nil)
	tr.child = mk("Child", &tr.root)
	tr.grandchild = mk("Grandchild", &tr.child)
	tr.sibling = mk("Sibling", &tr.root)
	return tr
}

func treePath(projectID int64, selected string) string {
	p := "/api/v1/projects/" + itoa(projectID) + "/sections/tree"
	if selected != "" {
		p += "?" + url.Values{section.QueryParam: {selected}}.Encode()
	}
	return p
}

func TestSections_ListWithHierarchy(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)
	tr := e.seedTree(t, projectID)

	rec := e.do(t, http.MethodGet, "/api/v1/projects/"+itoa(projectID)+"/sections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]section.WithHierarchy](t, rec)
	require.Len(t, list, 4)

	paths := map[int64]string{}
	for _, s := range list {
		paths[s.ID] = s.SectionHierarchy
	}
	assert.Equal(t, "Root", paths[tr.root])
	assert.Equal(t, "Root > Child > Grandchild", paths[tr.grandchild])
	assert.Equal(t, "Root > Sibling", paths[tr.sibling])
}

func TestSections_Tree(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)
	tr := e.seedTree(t, projectID)

	rec := e.do(t, http.MethodGet, treePath(projectID, "["+itoa(tr.grandchild)+"]"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[treeResponse](t, rec)

	require.Len(t, got.Tree, 1)
	assert.Equal(t, tr.root, got.Tree[0].SectionID)
	require.Len(t, got.Tree[0].SubSections, 2)
	assert.Equal(t, []int64{tr.grandchild}, got.Selected)
	assert.Equal(t, []int64{tr.grandchild, tr.child, tr.root}, got.OpenSections)
}

func TestSections_TreeMalformedSelection(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)
	e.seedTree(t, projectID)

	for _, raw := range []string{"invalid-json", `{"a":1}`, `["x"]`} {
		rec := e.do(t, http.MethodGet, treePath(projectID, raw), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, string(mustField(t, rec.Body.Bytes(), "selected")), raw)
		assert.JSONEq(t, `[]`, string(mustField(t, rec.Body.Bytes(), "openSections")), raw)
	}
}

func TestSections_TreeEmptyProject(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)

	rec := e.do(t, http.MethodGet, treePath(projectID, ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tree":[],"selected":[],"openSections":[]}`, rec.Body.String())
}

func TestSections_TreeSortedByName(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)
	for _, name := range []string{"beta", "Alpha", "gamma"} {
		rec := e.do(t, http.MethodPost, "/api/v1/projects/"+itoa(projectID)+"/sections", map[string]string{"sectionName": name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/v1/projects/"+itoa(projectID)+"/sections/tree?sort=name", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[treeResponse](t, rec)
	var names []string
	for _, n := range got.Tree {
		names = append(names, n.SectionName)
	}
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, names)
}

func TestSections_Select(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)
	tr := e.seedTree(t, projectID)
	path := "/api/v1/projects/" + itoa(projectID) + "/sections/select"

	click := func(current []int64, id int64, modifier bool) selectResponse {
		t.Helper()
		rec := e.do(t, http.MethodPost, path, map[string]any{"selected": current, "sectionId": id, "modifier": modifier})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[selectResponse](t, rec)
	}

	got := click(nil, tr.root, false)
	assert.Equal(t, []int64{tr.root, tr.child, tr.grandchild, tr.sibling}, got.Selected)
	assert.Equal(t, section.EncodeSectionIDs(got.Selected), got.SectionIDs)

	got = click([]int64{tr.sibling}, tr.child, false)
	assert.Equal(t, []int64{tr.child, tr.grandchild}, got.Selected, "plain click replaces")

	got = click([]int64{tr.sibling}, tr.child, true)
	assert.Equal(t, []int64{tr.sibling, tr.child, tr.grandchild}, got.Selected, "modified click appends")

	got = click([]int64{tr.sibling, tr.child, tr.grandchild}, tr.child, false)
	assert.Equal(t, []int64{tr.sibling}, got.Selected, "second click removes the child set")
	assert.Equal(t, "["+itoa(tr.sibling)+"]", got.SectionIDs)

	rec := e.do(t, http.MethodPost, path, map[string]any{"sectionId": 9999})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, http.MethodPost, path, map[string]any{"sectionId": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSections_UpdateAndDelete(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)
	tr := e.seedTree(t, projectID)

	rec := e.do(t, http.MethodPut, "/api/v1/sections/"+itoa(tr.root), map[string]any{"parentId": tr.grandchild})
	assert.Equal(t, http.StatusConflict, rec.Code, "cannot move under a descendant")

	rec = e.do(t, http.MethodPut, "/api/v1/sections/"+itoa(tr.child), map[string]any{"sectionName": "Moved", "parentId": section.NoParent})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[section.Section](t, rec)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, "Moved", moved.Name)

	rec = e.do(t, http.MethodPut, "/api/v1/sections/"+itoa(tr.child), map[string]any{"sectionName": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := e.store.CreateTest(t.Context(), store.TestInput{ProjectID: projectID, SectionID: &tr.grandchild, Title: "deep"}, nil)
	require.NoError(t, err)

	rec = e.do(t, http.MethodDelete, "/api/v1/sections/"+itoa(tr.child), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{tr.child, tr.grandchild}, decode[map[string][]int64](t, rec)["removed"])

	rec = e.do(t, http.MethodGet, "/api/v1/projects/"+itoa(projectID)+"/tests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]store.TestCase](t, rec))

	rec = e.do(t, http.MethodDelete, "/api/v1/sections/"+itoa(tr.child), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSections_ParentInOtherProject(t *testing.T) {
	e := newTestEnv(t)
	first := e.seedProject(t)
	second := e.seedProject(t)
	tr := e.seedTree(t, first)

	rec := e.do(t, http.MethodPost, "/api/v1/projects/"+itoa(second)+"/sections",
		map[string]any{"sectionName": "Stray", "parentId": tr.root})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
