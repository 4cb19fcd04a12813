package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/checkmate/internal/outline"
	"github.com/dgallion1/checkmate/internal/parser"
	"github.com/dgallion1/checkmate/internal/section"
	"github.com/dgallion1/checkmate/internal/store"
)

// batchSize bounds the number of tests inserted per transaction.
const batchSize = 100

// Store is the slice of the database an import needs.
type Store interface {
	FindImport(ctx context.Context, projectID int64, contentHash string) (store.ImportRecord, error)
	RecordImport(ctx context.Context, rec store.ImportRecord) (bool, error)
	ListSections(ctx context.Context, projectID int64) ([]section.Section, error)
	CreateSection(ctx context.Context, in store.SectionInput, by *int64) (section.Section, error)
	CreateTests(ctx context.Context, ins []store.TestInput, by *int64) ([]store.TestCase, error)
}

// Worker processes a single import job.
type Worker struct {
	store   Store
	log     *slog.Logger
	opts    parser.Options
	stats   *Stats
	backoff func(attempt int) time.Duration
}

// NewWorker returns a worker. stats may be nil.
func NewWorker(st Store, log *slog.Logger, opts parser.Options, stats *Stats) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{store: st, log: log, opts: opts, stats: stats, backoff: Backoff}
}

// Run processes job synchronously and returns its final state.
func (w *Worker) Run(ctx context.Context, job *Job) JobSnapshot {
	w.Process(ctx, job)
	return job.Snapshot()
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	log := w.log.With("job_id", job.ID, "project_id", job.ProjectID, "filename", job.Filename)
	defer job.releaseData()
	defer func() {
		if w.stats != nil {
			w.stats.Record(time.Since(start))
		}
	}()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		tree.Title = job.Title
	}

	// Compute content hash from the parsed text.
	hash := ContentHashHex([]byte(tree.Text()))
	job.setHash(hash)

	// Phase 1.5: Dedup check
	prev, err := w.store.FindImport(ctx, job.ProjectID, hash)
	switch {
	case err == nil:
		log.Info("duplicate document, skipping", "existing_job_id", prev.JobID, "existing_filename", prev.Filename)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	case !errors.Is(err, store.ErrNotFound):
		log.Warn("dedup check failed, proceeding", "error", err)
	}

	// Phase 2: Plan
	job.SetStatus(StatusPlanning, "planning")
	drafts := outline.Plan(tree)
	job.update(func(p *Progress) {
		p.SectionsPlanned = len(drafts.Sections)
		p.TestsPlanned = len(drafts.Tests)
		p.TestsDropped = drafts.Dropped
	})
	log.Info("planned import", "sections", len(drafts.Sections), "tests", len(drafts.Tests), "dropped", drafts.Dropped)

	if len(drafts.Sections) == 0 && len(drafts.Tests) == 0 {
		job.AddError("no test cases found")
		job.SetStatus(StatusFailed, "planning")
		return
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	by := userRef(job.UserID)
	ids, hadErrors := w.storeSections(ctx, log, job, drafts.Sections, by)
	created, testErrors := w.storeTests(ctx, log, job, drafts.Tests, ids, by)
	hadErrors = hadErrors || testErrors

	snap := job.Snapshot()
	stored := snap.Progress.SectionsCreated + created
	log.Info("storage complete", "sections_created", snap.Progress.SectionsCreated, "tests_created", created, "errors", hadErrors)

	if !hadErrors || stored > 0 {
		if _, err := w.store.RecordImport(ctx, store.ImportRecord{
			ProjectID:   job.ProjectID,
			ContentHash: hash,
			JobID:       job.ID,
			Filename:    job.Filename,
		}); err != nil {
			log.Error("record import failed", "error", err)
			job.AddError(fmt.Sprintf("record import: %s", err))
		}
	}

	switch {
	case hadErrors && stored > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "storing")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// storeSections finds or creates every drafted section, parents first, and
// returns the section id for each hierarchy path.
func (w *Worker) storeSections(ctx context.Context, log *slog.Logger, job *Job, drafts []outline.SectionDraft, by *int64) (map[string]int64, bool) {
	var existing []section.Section
	err := w.retry(ctx, "list sections", func() error {
		var err error
		existing, err = w.store.ListSections(ctx, job.ProjectID)
		return err
	})
	if err != nil {
		log.Error("list sections failed", "error", err)
		job.AddError(fmt.Sprintf("list sections: %s", err))
		return map[string]int64{}, true
	}

	ids := make(map[string]int64, len(existing)+len(drafts))
	for _, ds := range section.AddHierarchy(existing) {
		if _, ok := ids[ds.SectionHierarchy]; !ok {
			ids[ds.SectionHierarchy] = ds.ID
		}
	}

	hadErrors := false
	for _, d := range drafts {
		key := section.JoinPath(d.Path)
		if _, ok := ids[key]; ok {
			job.update(func(p *Progress) { p.SectionsExisting++ })
			continue
		}

		var parent *int64
		if len(d.Path) > 1 {
			pid, ok := ids[section.JoinPath(d.Path[:len(d.Path)-1])]
			if !ok {
				// The parent failed earlier; its error is already recorded.
				hadErrors = true
				continue
			}
			parent = &pid
		}

		var sec section.Section
		err := w.retry(ctx, "create section", func() error {
			var err error
			sec, err = w.store.CreateSection(ctx, store.SectionInput{
				ProjectID: job.ProjectID,
				Name:      d.Path[len(d.Path)-1],
				ParentID:  parent,
			}, by)
			return err
		})
		if err != nil {
			log.Error("create section failed", "path", key, "error", err)
			job.AddError(fmt.Sprintf("section %q: %s", key, err))
			hadErrors = true
			continue
		}
		ids[key] = sec.ID
		job.update(func(p *Progress) { p.SectionsCreated++ })
	}
	return ids, hadErrors
}

// storeTests inserts the drafted tests in batches and returns how many were
// created.
func (w *Worker) storeTests(ctx context.Context, log *slog.Logger, job *Job, drafts []outline.TestDraft, ids map[string]int64, by *int64) (int, bool) {
	hadErrors := false
	ins := make([]store.TestInput, 0, len(drafts))
	for _, d := range drafts {
		in := store.TestInput{
			ProjectID:      job.ProjectID,
			Title:          d.Title,
			Priority:       store.Priority(d.Priority),
			Preconditions:  d.Preconditions,
			Steps:          d.Steps,
			ExpectedResult: d.ExpectedResult,
		}
		if len(d.SectionPath) > 0 {
			key := section.JoinPath(d.SectionPath)
			id, ok := ids[key]
			if !ok {
				job.AddError(fmt.Sprintf("test %q: section %q missing", d.Title, key))
				hadErrors = true
				continue
			}
			in.SectionID = &id
		}
		ins = append(ins, in)
	}

	created := 0
	for start := 0; start < len(ins); start += batchSize {
		batch := ins[start:min(start+batchSize, len(ins))]
		var out []store.TestCase
		err := w.retry(ctx, "create tests", func() error {
			var err error
			out, err = w.store.CreateTests(ctx, batch, by)
			return err
		})
		if err != nil {
			log.Error("create tests failed", "batch_start", start, "error", err)
			job.AddError(fmt.Sprintf("tests %d-%d: %s", start+1, start+len(batch), err))
			hadErrors = true
			continue
		}
		created += len(out)
		job.update(func(p *Progress) { p.TestsCreated += len(out) })
	}
	return created, hadErrors
}

func userRef(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
