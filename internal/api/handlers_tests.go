package api

import (
	"net/http"

	"github.com/dgallion1/checkmate/internal/section"
	"github.com/dgallion1/checkmate/internal/store"
)

type testRequest struct {
	Title          *string         `json:"title"`
	SectionID      *int64          `json:"sectionId"`
	Priority       *store.Priority `json:"priority"`
	Preconditions  *string         `json:"preconditions"`
	Steps          *string         `json:"steps"`
	ExpectedResult *string         `json:"expectedResult"`
}

func (req testRequest) validate() error {
	if req.Priority != nil && *req.Priority != "" && !req.Priority.Valid() {
		return badRequest("priority must be one of Low, Medium, High, Critical")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// handleListTests lists a project's test cases. With ?sectionIds the list is
// narrowed to tests filed under any selected section or its descendants.
func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
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

	filter := store.TestFilter{ProjectID: projectID}
	if selected := section.FromQuery(r.URL.Query()); len(selected) > 0 {
		filter.SectionIDs = expandSelection(selected, section.BuildHierarchy(sections))
	}
	tests, err := s.store.ListTests(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (s *Server) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req testRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Title == nil {
		s.fail(w, r, badRequest("title is required"))
		return
	}
	title, err := validName("title", *req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.fail(w, r, err)
		return
	}

	in := store.TestInput{
		ProjectID:      projectID,
		SectionID:      req.SectionID,
		Title:          title,
		Preconditions:  deref(req.Preconditions),
		Steps:          deref(req.Steps),
		ExpectedResult: deref(req.ExpectedResult),
	}
	if req.Priority != nil {
		in.Priority = *req.Priority
	}
	tc, err := s.store.CreateTest(r.Context(), in, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tc)
}

func (s *Server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "testID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tc, err := s.store.GetTest(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tc)
}

func (s *Server) handleUpdateTest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "testID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req testRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	up := store.TestUpdate{
		SectionID:      req.SectionID,
		Preconditions:  req.Preconditions,
		Steps:          req.Steps,
		ExpectedResult: req.ExpectedResult,
	}
	if req.Title != nil {
		title, err := validName("title", *req.Title)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		up.Title = &title
	}
	if req.Priority != nil && *req.Priority != "" {
		up.Priority = req.Priority
	}
	tc, err := s.store.UpdateTest(r.Context(), id, up, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tc)
}

func (s *Server) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "testID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeleteTest(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
