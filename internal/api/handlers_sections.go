package api

import (
	"context"
	"net/http"

	"github.com/dgallion1/checkmate/internal/section"
	"github.com/dgallion1/checkmate/internal/store"
)

// projectSections returns the sections of an existing project.
func (s *Server) projectSections(ctx context.Context, projectID int64) ([]section.Section, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListSections(ctx, projectID)
}

// expandSelection widens selected section ids to the union of their child
// sets.
func expandSelection(selected []int64, forest []*section.DisplaySection) []int64 {
	var ids []int64
	for _, id := range selected {
		ids = append(ids, section.ChildSetOf(id, forest)...)
	}
	return section.Dedupe(ids)
}

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sections, err := s.projectSections(r.Context(), projectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, section.AddHierarchy(sections))
}

type treeResponse struct {
	Tree         []*section.DisplaySection `json:"tree"`
	Selected     []int64                   `json:"selected"`
	OpenSections []int64                   `json:"openSections"`
}

// handleSectionTree renders the project's section forest together with the
// selection carried in ?sectionIds and the ancestors that must be open to
// show it.
func (s *Server) handleSectionTree(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sections, err := s.projectSections(r.Context(), projectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	tree := section.BuildHierarchy(sections)
	if r.URL.Query().Get("sort") == "name" {
		tree = section.SortByName(tree)
	}
	selected := section.FromQuery(r.URL.Query())

	writeJSON(w, http.StatusOK, treeResponse{
		Tree:         tree,
		Selected:     selected,
		OpenSections: section.InitialOpenSections(selected, sections),
	})
}

type selectRequest struct {
	Selected  []int64 `json:"selected"`
	SectionID int64   `json:"sectionId"`
	Modifier  bool    `json:"modifier"`
}

type selectResponse struct {
	Selected   []int64 `json:"selected"`
	SectionIDs string  `json:"sectionIds"`
}

// handleSelectSection applies one click on a tree row to the caller's
// selection and returns the new selection with its URL encoding.
func (s *Server) handleSelectSection(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.SectionID <= 0 {
		s.fail(w, r, badRequest("sectionId must be a positive integer"))
		return
	}
	if err := validIDs("selected", req.Selected); err != nil {
		s.fail(w, r, err)
		return
	}

	sections, err := s.projectSections(r.Context(), projectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	node := section.Find(section.BuildHierarchy(sections), req.SectionID)
	if node == nil {
		jsonError(w, "section not found", http.StatusNotFound)
		return
	}

	current := req.Selected
	if current == nil {
		current = []int64{}
	}
	selected := section.Select(current, req.SectionID, node.SubSections, req.Modifier)
	writeJSON(w, http.StatusOK, selectResponse{
		Selected:   selected,
		SectionIDs: section.EncodeSectionIDs(selected),
	})
}

type sectionRequest struct {
	Name        *string `json:"sectionName"`
	Description *string `json:"sectionDescription"`
	ParentID    *int64  `json:"parentId"`
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req sectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Name == nil {
		s.fail(w, r, badRequest("sectionName is required"))
		return
	}
	name, err := validName("sectionName", *req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.fail(w, r, err)
		return
	}
	sec, err := s.store.CreateSection(r.Context(), store.SectionInput{
		ProjectID:   projectID,
		Name:        name,
		Description: req.Description,
		ParentID:    req.ParentID,
	}, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sec)
}

// handleUpdateSection renames or moves a section. A parentId of 0 or -1
// moves it to the root.
func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sectionID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req sectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	up := store.SectionUpdate{Description: req.Description, ParentID: req.ParentID}
	if req.Name != nil {
		name, err := validName("sectionName", *req.Name)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		up.Name = &name
	}
	sec, err := s.store.UpdateSection(r.Context(), id, up, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "sectionID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	removed, err := s.store.DeleteSection(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("section deleted", "section_id", id, "removed", len(removed))
	writeJSON(w, http.StatusOK, map[string][]int64{"removed": removed})
}
