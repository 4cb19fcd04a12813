package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/checkmate/internal/auth"
	"github.com/dgallion1/checkmate/internal/config"
	"github.com/dgallion1/checkmate/internal/importer"
	"github.com/dgallion1/checkmate/internal/store"
	"github.com/dgallion1/checkmate/internal/testutil"
)

const testToken = "cm_test_token"

type testEnv struct {
	srv   *Server
	store *store.Store
	user  store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := testutil.NewTestLogger(t)

	st, err := store.Open(ctx, store.DialectSQLite, filepath.Join(t.TempDir(), "api.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))

	u, err := st.CreateUser(ctx, "Ada", "ada@example.com", auth.HashToken(testToken))
	require.NoError(t, err)

	cfg := config.Config{
		WorkerCount:    1,
		MaxQueueSize:   8,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	imp := importer.NewOrchestrator(cfg, st, log)
	imp.Start(ctx)
	t.Cleanup(func() { imp.Stop(context.Background()) })

	sess := auth.NewSessions(strings.Repeat("s", 32))
	return &testEnv{srv: NewServer(st, imp, sess, log, cfg), store: st, user: u}
}

// do sends a JSON request authenticated with the test token.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedProject creates an org and a project through the API and returns the
// project id.
func (e *testEnv) seedProject(t *testing.T) int64 {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/orgs", map[string]string{"orgName": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	org := decode[store.Organization](t, rec)

	rec = e.do(t, http.MethodPost, "/api/v1/orgs/"+itoa(org.ID)+"/projects", map[string]string{"projectName": "Web"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[store.Project](t, rec).ID
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestAuth(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orgs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orgs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api token")

	rec = e.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, e.user.ID, decode[store.User](t, rec).ID)
}

func TestAuth_SessionCookie(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, e.user.ID, decode[store.User](t, rec).ID)
}

func TestProjects_Validation(t *testing.T) {
	e := newTestEnv(t)
	projectID := e.seedProject(t)
	base := "/api/v1/projects/" + itoa(projectID)

	rec := e.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Web", decode[store.Project](t, rec).Name)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank org name", http.MethodPost, "/api/v1/orgs", map[string]string{"orgName": "   "}, http.StatusBadRequest},
		{"long project name", http.MethodPut, base, map[string]string{"projectName": strings.Repeat("x", 251)}, http.StatusBadRequest},
		{"bad status", http.MethodPut, base, map[string]string{"status": "Closed"}, http.StatusBadRequest},
		{"unknown field", http.MethodPut, base, map[string]string{"owner": "me"}, http.StatusBadRequest},
		{"non numeric id", http.MethodGet, "/api/v1/projects/abc", nil, http.StatusBadRequest},
		{"negative id", http.MethodGet, "/api/v1/projects/-4", nil, http.StatusBadRequest},
		{"missing project", http.MethodGet, "/api/v1/projects/999", nil, http.StatusNotFound},
		{"missing org", http.MethodGet, "/api/v1/orgs/999/projects", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec = e.do(t, http.MethodPut, base, map[string]string{"projectName": "  Web App ", "status": "Archived"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[store.Project](t, rec)
	assert.Equal(t, "Web App", p.Name)
	assert.Equal(t, store.ProjectArchived, p.Status)

	rec = e.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "plan.md", sanitizeFilename("../../etc/plan.md"))
	assert.Equal(t, "upload", sanitizeFilename(""))
	assert.Equal(t, "ab.csv", sanitizeFilename("a\x00b.csv"))
}
