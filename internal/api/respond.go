package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/checkmate/internal/store"
)

const (
	maxJSONBody = 1 << 20
	maxNameLen  = 250
)

// errBadRequest marks a request the client must fix.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// fail maps err to a status code. Unexpected errors are logged and their
// text is not sent to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		jsonError(w, strings.TrimPrefix(err.Error(), errBadRequest.Error()+": "), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.Is(err, store.ErrConflict):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrLocked):
		jsonError(w, "run is locked", http.StatusLocked)
	default:
		s.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("invalid json: %v", err)
	}
	return nil
}

// idParam parses a positive integer path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("%s must be a positive integer", name)
	}
	return id, nil
}

// validName trims name and checks its length.
func validName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLen {
		return "", badRequest("%s must be 1-%d characters", field, maxNameLen)
	}
	return name, nil
}

func validIDs(field string, ids []int64) error {
	for _, id := range ids {
		if id <= 0 {
			return badRequest("%s must contain positive integers", field)
		}
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
