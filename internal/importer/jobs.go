// Package importer turns uploaded test plans into sections and test cases.
// Jobs run on a bounded worker pool and their state is kept in memory until
// the job TTL expires.
package importer

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of an import job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusPlanning   JobStatus = "planning"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Done reports whether s is a final state.
func (s JobStatus) Done() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial, StatusDupSkipped:
		return true
	}
	return false
}

// Job tracks the state of a single document import.
type Job struct {
	mu sync.Mutex

	ID        string
	ProjectID int64
	UserID    int64

	Status   JobStatus
	Phase    string
	Filename string
	Title    string

	Progress Progress

	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	fileData []byte
	errors   []string
}

// Progress counts what a job has planned and written so far.
type Progress struct {
	SectionsPlanned  int      `json:"sections_planned"`
	SectionsCreated  int      `json:"sections_created"`
	SectionsExisting int      `json:"sections_existing"`
	TestsPlanned     int      `json:"tests_planned"`
	TestsCreated     int      `json:"tests_created"`
	TestsDropped     int      `json:"tests_dropped"`
	Errors           []string `json:"errors"`
}

// NewJob returns a queued job with a fresh id.
func NewJob(projectID, userID int64, filename, title string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs idle for longer than the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		idle := now.Sub(job.UpdatedAt)
		job.mu.Unlock()
		if idle > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// update applies fn to the progress counters under the job lock.
func (j *Job) update(fn func(p *Progress)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn(&j.Progress)
	j.UpdatedAt = time.Now()
}

func (j *Job) setHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseData drops the upload once the job no longer needs it.
func (j *Job) releaseData() {
	j.SetFileData(nil)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	ProjectID   int64     `json:"project_id"`
	UserID      int64     `json:"user_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:          j.ID,
		ProjectID:   j.ProjectID,
		UserID:      j.UserID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress:    p,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
