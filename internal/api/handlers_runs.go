package api

import (
	"context"
	"net/http"

	"github.com/dgallion1/checkmate/internal/section"
	"github.com/dgallion1/checkmate/internal/store"
)

type runRequest struct {
	Name        string  `json:"runName"`
	Description *string `json:"runDescription"`
	TestIDs     []int64 `json:"testIds"`
	SectionIDs  []int64 `json:"sectionIds"`
}

type addTestsRequest struct {
	TestIDs    []int64 `json:"testIds"`
	SectionIDs []int64 `json:"sectionIds"`
}

type runTestRequest struct {
	Status  store.Status `json:"status"`
	Comment string       `json:"comment"`
}

type runResponse struct {
	Run     store.Run        `json:"run"`
	Tests   []store.RunTest  `json:"tests"`
	Summary store.RunSummary `json:"summary"`
}

// resolveTests merges explicit test ids with every test filed under the
// child sets of sectionIDs.
func (s *Server) resolveTests(ctx context.Context, projectID int64, testIDs, sectionIDs []int64) ([]int64, error) {
	if err := validIDs("testIds", testIDs); err != nil {
		return nil, err
	}
	if err := validIDs("sectionIds", sectionIDs); err != nil {
		return nil, err
	}
	ids := append([]int64(nil), testIDs...)
	if len(sectionIDs) == 0 {
		return ids, nil
	}

	sections, err := s.store.ListSections(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tests, err := s.store.ListTests(ctx, store.TestFilter{
		ProjectID:  projectID,
		SectionIDs: expandSelection(sectionIDs, section.BuildHierarchy(sections)),
	})
	if err != nil {
		return nil, err
	}
	for _, tc := range tests {
		ids = append(ids, tc.ID)
	}
	return section.Dedupe(ids), nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.fail(w, r, err)
		return
	}
	runs, err := s.store.ListRuns(r.Context(), projectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req runRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	name, err := validName("runName", req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.fail(w, r, err)
		return
	}
	testIDs, err := s.resolveTests(r.Context(), projectID, req.TestIDs, req.SectionIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	run, err := s.store.CreateRun(r.Context(), store.RunInput{
		ProjectID:   projectID,
		Name:        name,
		Description: req.Description,
		TestIDs:     testIDs,
	}, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "runID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tests, err := s.store.ListRunTests(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sum, err := s.store.Summary(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Run: run, Tests: tests, Summary: sum})
}

func (s *Server) handleAddRunTests(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "runID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req addTestsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	testIDs, err := s.resolveTests(r.Context(), run.ProjectID, req.TestIDs, req.SectionIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	added, err := s.store.AddRunTests(r.Context(), id, testIDs, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleUpdateRunTest(w http.ResponseWriter, r *http.Request) {
	runID, err := idParam(r, "runID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	testID, err := idParam(r, "testID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req runTestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if !req.Status.Valid() {
		s.fail(w, r, badRequest("status %q is not a run status", req.Status))
		return
	}
	if err := s.store.UpdateRunTest(r.Context(), runID, testID, req.Status, req.Comment, actor(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLockRun(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "runID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	run, err := s.store.LockRun(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
