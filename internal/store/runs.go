package store

import (
	"context"
	"database/sql"
	"fmt"
)

const runColumns = `id, project_id, name, description, state, created_by, created_on, updated_on`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.ProjectID, &r.Name, &r.Description, &r.State,
		&r.CreatedBy, at(&r.CreatedOn), at(&r.UpdatedOn))
	return r, err
}

type RunInput struct {
	ProjectID   int64
	Name        string
	Description *string
	TestIDs     []int64
}

// CreateRun opens a run and adds the given tests as Untested.
func (s *Store) CreateRun(ctx context.Context, in RunInput, by *int64) (Run, error) {
	var out Run
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		id, err := s.insert(ctx, tx,
			`INSERT INTO runs(project_id, name, description, state, created_by, created_on, updated_on)
			 VALUES(?, ?, ?, ?, ?, ?, ?)`,
			in.ProjectID, in.Name, in.Description, RunActive, by, ts(now), ts(now))
		if err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		out = Run{
			ID: id, ProjectID: in.ProjectID, Name: in.Name, Description: in.Description,
			State: RunActive, CreatedBy: by, CreatedOn: now, UpdatedOn: now,
		}
		_, err = s.addRunTests(ctx, tx, out, in.TestIDs, by)
		return err
	})
	return out, err
}

func (s *Store) GetRun(ctx context.Context, id int64) (Run, error) {
	return s.getRun(ctx, s.db, id)
}

func (s *Store) getRun(ctx context.Context, q queryer, id int64) (Run, error) {
	r, err := scanRun(s.queryRow(ctx, q, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		return Run{}, fmt.Errorf("get run %d: %w", id, classify(err))
	}
	return r, nil
}

func (s *Store) ListRuns(ctx context.Context, projectID int64) ([]Run, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+runColumns+` FROM runs WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// AddRunTests adds tests to a run, skipping ones already present. It returns
// how many were added. A locked run is ErrLocked.
func (s *Store) AddRunTests(ctx context.Context, runID int64, testIDs []int64, by *int64) (int, error) {
	var added int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		run, err := s.getRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		added, err = s.addRunTests(ctx, tx, run, testIDs, by)
		return err
	})
	return added, err
}

func (s *Store) addRunTests(ctx context.Context, tx *sql.Tx, run Run, testIDs []int64, by *int64) (int, error) {
	if run.State == RunLocked {
		return 0, fmt.Errorf("add tests to run %d: %w", run.ID, ErrLocked)
	}
	if len(testIDs) == 0 {
		return 0, nil
	}

	// Only tests of the run's own project qualify.
	rows, err := s.query(ctx, tx,
		`SELECT id FROM test_cases WHERE project_id = ? AND id IN (`+placeholders(len(testIDs))+`)
		 AND id NOT IN (SELECT test_id FROM run_tests WHERE run_id = ?)`,
		append(append([]any{run.ProjectID}, int64Args(testIDs)...), run.ID)...)
	if err != nil {
		return 0, fmt.Errorf("select run tests: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	now := ts(s.now())
	for _, id := range ids {
		if _, err := s.exec(ctx, tx,
			`INSERT INTO run_tests(run_id, test_id, status, comment, updated_by, updated_on) VALUES(?, ?, ?, '', ?, ?)`,
			run.ID, id, StatusUntested, by, now); err != nil {
			return 0, fmt.Errorf("add run test %d: %w", id, classify(err))
		}
	}
	return len(ids), nil
}

// ListRunTests returns every test of a run with its current status.
func (s *Store) ListRunTests(ctx context.Context, runID int64) ([]RunTest, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT rt.run_id, rt.test_id, t.title, t.section_id, rt.status, rt.comment, rt.updated_by, rt.updated_on
		 FROM run_tests rt JOIN test_cases t ON t.id = rt.test_id
		 WHERE rt.run_id = ? ORDER BY rt.test_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run tests: %w", err)
	}
	defer rows.Close()

	out := make([]RunTest, 0)
	for rows.Next() {
		var rt RunTest
		if err := rows.Scan(&rt.RunID, &rt.TestID, &rt.Title, &rt.SectionID, &rt.Status,
			&rt.Comment, &rt.UpdatedBy, at(&rt.UpdatedOn)); err != nil {
			return nil, fmt.Errorf("scan run test: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// UpdateRunTest records a result. A locked run is ErrLocked; a test that is
// not part of the run is ErrNotFound.
func (s *Store) UpdateRunTest(ctx context.Context, runID, testID int64, status Status, comment string, by *int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		run, err := s.getRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run.State == RunLocked {
			return fmt.Errorf("update run %d: %w", runID, ErrLocked)
		}
		now := s.now()
		res, err := s.exec(ctx, tx,
			`UPDATE run_tests SET status = ?, comment = ?, updated_by = ?, updated_on = ? WHERE run_id = ? AND test_id = ?`,
			status, comment, by, ts(now), runID, testID)
		if err != nil {
			return fmt.Errorf("update run test: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("test %d in run %d: %w", testID, runID, ErrNotFound)
		}
		_, err = s.exec(ctx, tx, `UPDATE runs SET updated_on = ? WHERE id = ?`, ts(now), runID)
		return err
	})
}

// LockRun freezes a run. Locking twice is a no-op.
func (s *Store) LockRun(ctx context.Context, runID int64) (Run, error) {
	var out Run
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		run, err := s.getRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		if run.State != RunLocked {
			run.State = RunLocked
			run.UpdatedOn = s.now()
			if _, err := s.exec(ctx, tx, `UPDATE runs SET state = ?, updated_on = ? WHERE id = ?`,
				run.State, ts(run.UpdatedOn), runID); err != nil {
				return fmt.Errorf("lock run %d: %w", runID, err)
			}
		}
		out = run
		return nil
	})
	return out, err
}

// Summary counts a run's tests per status. Every status is present in
// ByStatus, zero or not.
func (s *Store) Summary(ctx context.Context, runID int64) (RunSummary, error) {
	sum := RunSummary{RunID: runID, ByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		sum.ByStatus[st] = 0
	}

	rows, err := s.query(ctx, s.db,
		`SELECT status, COUNT(*) FROM run_tests WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("run summary: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			st Status
			n  int
		)
		if err := rows.Scan(&st, &n); err != nil {
			return RunSummary{}, fmt.Errorf("scan summary: %w", err)
		}
		sum.ByStatus[st] = n
		sum.Total += n
	}
	return sum, rows.Err()
}
