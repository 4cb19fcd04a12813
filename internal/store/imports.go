package store

import (
	"context"
	"errors"
	"fmt"
)

// ImportRecord marks a document already imported into a project.
type ImportRecord struct {
	ProjectID   int64
	ContentHash string
	JobID       string
	Filename    string
}

// FindImport returns the job that first imported contentHash into the
// project, or ErrNotFound.
func (s *Store) FindImport(ctx context.Context, projectID int64, contentHash string) (ImportRecord, error) {
	rec := ImportRecord{ProjectID: projectID, ContentHash: contentHash}
	err := s.queryRow(ctx, s.db,
		`SELECT job_id, filename FROM imports WHERE project_id = ? AND content_hash = ?`,
		projectID, contentHash).Scan(&rec.JobID, &rec.Filename)
	if err != nil {
		return ImportRecord{}, fmt.Errorf("find import: %w", classify(err))
	}
	return rec, nil
}

// RecordImport stores the content hash of a finished import. It reports
// false when the hash was already recorded.
func (s *Store) RecordImport(ctx context.Context, rec ImportRecord) (bool, error) {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO imports(project_id, content_hash, job_id, filename, created_on) VALUES(?, ?, ?, ?, ?)`,
		rec.ProjectID, rec.ContentHash, rec.JobID, rec.Filename, ts(s.now()))
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("record import: %w", err)
	}
	return true, nil
}
