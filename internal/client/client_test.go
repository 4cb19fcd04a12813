package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/checkmate/internal/importer"
)

func TestSectionTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/projects/3/sections/tree", r.URL.Path)
		assert.Equal(t, "[5,6]", r.URL.Query().Get("sectionIds"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"tree":[{"sectionId":5,"sectionName":"Root","subSections":[{"sectionId":6,"sectionName":"Child","subSections":[]}]}],"selected":[5,6],"openSections":[5,6,5]}`))
	}))
	defer srv.Close()

	tree, err := NewClient(srv.URL+"/", "tok").SectionTree(context.Background(), 3, []int64{5, 6})
	require.NoError(t, err)
	require.Len(t, tree.Tree, 1)
	assert.Equal(t, "Child", tree.Tree[0].SubSections[0].SectionName)
	assert.Equal(t, []int64{5, 6}, tree.Selected)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Sections(context.Background(), 1)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Contains(t, se.Error(), "missing authorization")
}

func TestImportAndWait(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/projects/9/import":
			f, fh, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			data, _ := io.ReadAll(f)
			assert.Equal(t, "plan.md", fh.Filename)
			assert.Equal(t, "# Plan", string(data))
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"job_id":"j1","status":"queued","poll_url":"/api/v1/import/j1/status"}`))
		case "/api/v1/import/j1/status":
			if polls.Add(1) < 3 {
				w.Write([]byte(`{"job_id":"j1","status":"storing"}`))
				return
			}
			w.Write([]byte(`{"job_id":"j1","status":"completed","progress":{"tests_created":4}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	ctx := context.Background()
	acc, err := c.Import(ctx, 9, "plan.md", []byte("# Plan"))
	require.NoError(t, err)
	assert.Equal(t, "j1", acc.JobID)

	snap, err := c.WaitImport(ctx, acc.JobID, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, importer.StatusCompleted, snap.Status)
	assert.Equal(t, 4, snap.Progress.TestsCreated)
	assert.Equal(t, int32(3), polls.Load())

	missing, err := c.ImportStatus(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	assert.Error(t, NewClient(srv.URL, "").Health(context.Background()))
}
