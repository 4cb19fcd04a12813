package importer

import (
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	if ContentHashHex([]byte("aaa")) == ContentHashHex([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob(1, 2, "plan.md", "", []byte("x"))
	b := NewJob(1, 2, "plan.md", "", nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if string(a.FileData()) != "x" {
		t.Errorf("unexpected file data %q", a.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusPlanning, "planning"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed, StatusPartial, StatusDupSkipped} {
		if !s.Done() {
			t.Errorf("%q should be final", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusParsing, StatusPlanning, StatusStoring} {
		if s.Done() {
			t.Errorf("%q should not be final", s)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("section 3 failed")
	job.AddError("section 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "section 3 failed" {
		t.Errorf("expected first error %q, got %q", "section 3 failed", snap.Progress.Errors[0])
	}

	// The snapshot owns its slice.
	snap.Progress.Errors[0] = "mutated"
	if job.Snapshot().Progress.Errors[0] != "section 3 failed" {
		t.Error("snapshot shares the job's error slice")
	}
}

func TestJob_Update(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	for range 3 {
		job.update(func(p *Progress) { p.TestsCreated++ })
	}
	job.update(func(p *Progress) { p.SectionsPlanned = 4 })

	snap := job.Snapshot()
	if snap.Progress.TestsCreated != 3 || snap.Progress.SectionsPlanned != 4 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(&Job{ID: "store-1", UpdatedAt: time.Now()})

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	store.Put(&Job{ID: "old", UpdatedAt: time.Now().Add(-time.Second)})
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
