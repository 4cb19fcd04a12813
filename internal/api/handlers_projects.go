package api

import (
	"net/http"

	"github.com/dgallion1/checkmate/internal/store"
)

type orgRequest struct {
	Name string `json:"orgName"`
}

func (s *Server) handleListOrgs(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.store.ListOrgs(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (s *Server) handleCreateOrg(w http.ResponseWriter, r *http.Request) {
	var req orgRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	name, err := validName("orgName", req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	org, err := s.store.CreateOrg(r.Context(), name, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

type projectRequest struct {
	Name        *string              `json:"projectName"`
	Description *string              `json:"projectDescription"`
	Status      *store.ProjectStatus `json:"status"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.GetOrg(r.Context(), orgID); err != nil {
		s.fail(w, r, err)
		return
	}
	projects, err := s.store.ListProjects(r.Context(), orgID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	orgID, err := idParam(r, "orgID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Name == nil {
		s.fail(w, r, badRequest("projectName is required"))
		return
	}
	name, err := validName("projectName", *req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.store.CreateProject(r.Context(), store.ProjectInput{
		OrgID:       orgID,
		Name:        name,
		Description: req.Description,
	}, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	up := store.ProjectUpdate{Description: req.Description, Status: req.Status}
	if req.Name != nil {
		name, err := validName("projectName", *req.Name)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		up.Name = &name
	}
	if req.Status != nil && !req.Status.Valid() {
		s.fail(w, r, badRequest("status must be Active or Archived"))
		return
	}
	p, err := s.store.UpdateProject(r.Context(), id, up, actor(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
