package store

import (
	"context"
	"database/sql"
	"fmt"
)

const testColumns = `id, title, section_id, project_id, priority, preconditions, steps, expected_result, created_by, updated_by, created_on, updated_on`

func scanTest(row interface{ Scan(...any) error }) (TestCase, error) {
	var tc TestCase
	err := row.Scan(&tc.ID, &tc.Title, &tc.SectionID, &tc.ProjectID, &tc.Priority,
		&tc.Preconditions, &tc.Steps, &tc.ExpectedResult,
		&tc.CreatedBy, &tc.UpdatedBy, at(&tc.CreatedOn), at(&tc.UpdatedOn))
	return tc, err
}

type TestInput struct {
	ProjectID      int64
	SectionID      *int64
	Title          string
	Priority       Priority
	Preconditions  string
	Steps          string
	ExpectedResult string
}

// TestUpdate changes only the non-nil fields. A SectionID of 0 or -1
// unfiles the test.
type TestUpdate struct {
	Title          *string
	SectionID      *int64
	Priority       *Priority
	Preconditions  *string
	Steps          *string
	ExpectedResult *string
}

// TestFilter narrows ListTests. An empty SectionIDs means every test in the
// project.
type TestFilter struct {
	ProjectID  int64
	SectionIDs []int64
}

func (s *Store) CreateTest(ctx context.Context, in TestInput, by *int64) (TestCase, error) {
	var out TestCase
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		tc, err := s.createTest(ctx, tx, in, by)
		out = tc
		return err
	})
	return out, err
}

// CreateTests inserts a batch in one transaction.
func (s *Store) CreateTests(ctx context.Context, ins []TestInput, by *int64) ([]TestCase, error) {
	out := make([]TestCase, 0, len(ins))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, in := range ins {
			tc, err := s.createTest(ctx, tx, in, by)
			if err != nil {
				return err
			}
			out = append(out, tc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) createTest(ctx context.Context, q queryer, in TestInput, by *int64) (TestCase, error) {
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	sectionID := normalizeParent(in.SectionID)
	if sectionID != nil {
		if err := s.sectionInProject(ctx, q, in.ProjectID, *sectionID); err != nil {
			return TestCase{}, err
		}
	}

	now := s.now()
	id, err := s.insert(ctx, q,
		`INSERT INTO test_cases(title, section_id, project_id, priority, preconditions, steps, expected_result, created_by, updated_by, created_on, updated_on)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, sectionID, in.ProjectID, in.Priority, in.Preconditions, in.Steps, in.ExpectedResult,
		by, by, ts(now), ts(now))
	if err != nil {
		return TestCase{}, fmt.Errorf("create test: %w", err)
	}
	return TestCase{
		ID: id, Title: in.Title, SectionID: sectionID, ProjectID: in.ProjectID, Priority: in.Priority,
		Preconditions: in.Preconditions, Steps: in.Steps, ExpectedResult: in.ExpectedResult,
		CreatedBy: by, UpdatedBy: by, CreatedOn: now, UpdatedOn: now,
	}, nil
}

func (s *Store) GetTest(ctx context.Context, id int64) (TestCase, error) {
	tc, err := scanTest(s.queryRow(ctx, s.db,
		`SELECT `+testColumns+` FROM test_cases WHERE id = ?`, id))
	if err != nil {
		return TestCase{}, fmt.Errorf("get test %d: %w", id, classify(err))
	}
	return tc, nil
}

func (s *Store) ListTests(ctx context.Context, f TestFilter) ([]TestCase, error) {
	query := `SELECT ` + testColumns + ` FROM test_cases WHERE project_id = ?`
	args := []any{f.ProjectID}
	if len(f.SectionIDs) > 0 {
		query += ` AND section_id IN (` + placeholders(len(f.SectionIDs)) + `)`
		args = append(args, int64Args(f.SectionIDs)...)
	}
	query += ` ORDER BY id`

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	tests := make([]TestCase, 0)
	for rows.Next() {
		tc, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		tests = append(tests, tc)
	}
	return tests, rows.Err()
}

func (s *Store) UpdateTest(ctx context.Context, id int64, up TestUpdate, by *int64) (TestCase, error) {
	var out TestCase
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		tc, err := scanTest(s.queryRow(ctx, tx,
			`SELECT `+testColumns+` FROM test_cases WHERE id = ?`, id))
		if err != nil {
			return fmt.Errorf("get test %d: %w", id, classify(err))
		}

		if up.Title != nil {
			tc.Title = *up.Title
		}
		if up.SectionID != nil {
			sectionID := normalizeParent(up.SectionID)
			if sectionID != nil {
				if err := s.sectionInProject(ctx, tx, tc.ProjectID, *sectionID); err != nil {
					return err
				}
			}
			tc.SectionID = sectionID
		}
		if up.Priority != nil {
			tc.Priority = *up.Priority
		}
		if up.Preconditions != nil {
			tc.Preconditions = *up.Preconditions
		}
		if up.Steps != nil {
			tc.Steps = *up.Steps
		}
		if up.ExpectedResult != nil {
			tc.ExpectedResult = *up.ExpectedResult
		}
		tc.UpdatedBy = by
		tc.UpdatedOn = s.now()

		_, err = s.exec(ctx, tx,
			`UPDATE test_cases SET title = ?, section_id = ?, priority = ?, preconditions = ?, steps = ?, expected_result = ?, updated_by = ?, updated_on = ?
			 WHERE id = ?`,
			tc.Title, tc.SectionID, tc.Priority, tc.Preconditions, tc.Steps, tc.ExpectedResult,
			tc.UpdatedBy, ts(tc.UpdatedOn), id)
		if err != nil {
			return fmt.Errorf("update test %d: %w", id, classify(err))
		}
		out = tc
		return nil
	})
	return out, err
}

// DeleteTest removes a test case and its results in every run.
func (s *Store) DeleteTest(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM run_tests WHERE test_id = ?`, id); err != nil {
			return fmt.Errorf("delete test %d: %w", id, err)
		}
		res, err := s.exec(ctx, tx, `DELETE FROM test_cases WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete test %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete test %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
