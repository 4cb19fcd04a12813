package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/checkmate/internal/importer"
	"github.com/dgallion1/checkmate/internal/parser"
)

func pollURL(jobID string) string {
	return fmt.Sprintf("/api/v1/import/%s/status", jobID)
}

// readUpload reads one multipart file, enforcing the extension allow-list
// and the upload size limit. The returned status is the code to answer with
// when err is not nil.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	f, err := fh.Open()
	if err != nil {
		return filename, nil, http.StatusBadRequest, errors.New("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return filename, data, http.StatusOK, nil
}

// handleImport queues a document for import into a project. The response
// carries the URL to poll for the job's progress.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, code, err := s.readUpload(files[0])
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	u, _ := currentUser(r)
	job := importer.NewJob(projectID, u.ID, filename, r.FormValue("title"), data)
	if err := s.importer.Submit(job); err != nil {
		s.log.Warn("import rejected", "job_id", job.ID, "error", err)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Info("import queued", "job_id", job.ID, "project_id", projectID, "filename", filename, "bytes", len(data))

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": pollURL(job.ID),
	})
}

// handleBatchImport queues every file of a multipart "files" field. A file
// that is rejected does not stop the others.
func (s *Server) handleBatchImport(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.GetProject(r.Context(), projectID); err != nil {
		s.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	u, _ := currentUser(r)
	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, _, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}
		job := importer.NewJob(projectID, u.ID, filename, "", data)
		if err := s.importer.Submit(job); err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}
		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   importer.StatusQueued,
			"poll_url": pollURL(job.ID),
		})
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	job := s.importer.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleImportStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":  s.importer.QueueDepth(),
		"tracked_jobs": s.importer.Tracked(),
		"durations":    s.importer.Stats(),
	})
}
