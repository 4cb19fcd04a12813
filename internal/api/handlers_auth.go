package api

import (
	"net/http"
)

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	writeJSON(w, http.StatusOK, u)
}

// handleCreateSession trades the caller's bearer token for a session cookie.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		jsonError(w, "sessions are not configured", http.StatusNotImplemented)
		return
	}
	u, _ := currentUser(r)
	sid, err := s.sessions.Issue(w, r, u.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("session issued", "user_id", u.ID, "session_id", sid)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions != nil {
		if err := s.sessions.Clear(w, r); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
