package store

import (
	"context"
	"database/sql"
	"fmt"
)

const projectColumns = `id, org_id, name, description, status, created_by, updated_by, created_on, updated_on`

func scanProject(row interface{ Scan(...any) error }) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &p.Status,
		&p.CreatedBy, &p.UpdatedBy, at(&p.CreatedOn), at(&p.UpdatedOn))
	return p, err
}

type ProjectInput struct {
	OrgID       int64
	Name        string
	Description *string
}

// ProjectUpdate changes only the non-nil fields.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
}

// CreateProject adds a project to an existing organization.
func (s *Store) CreateProject(ctx context.Context, in ProjectInput, by *int64) (Project, error) {
	if _, err := s.GetOrg(ctx, in.OrgID); err != nil {
		return Project{}, err
	}

	now := s.now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO projects(org_id, name, description, status, created_by, updated_by, created_on, updated_on)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		in.OrgID, in.Name, in.Description, ProjectActive, by, by, ts(now), ts(now))
	if err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	return Project{
		ID: id, OrgID: in.OrgID, Name: in.Name, Description: in.Description,
		Status: ProjectActive, CreatedBy: by, UpdatedBy: by, CreatedOn: now, UpdatedOn: now,
	}, nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (Project, error) {
	p, err := scanProject(s.queryRow(ctx, s.db,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		return Project{}, fmt.Errorf("get project %d: %w", id, classify(err))
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, orgID int64) ([]Project, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+projectColumns+` FROM projects WHERE org_id = ? ORDER BY id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, id int64, up ProjectUpdate, by *int64) (Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.Description != nil {
		p.Description = up.Description
	}
	if up.Status != nil {
		p.Status = *up.Status
	}
	p.UpdatedBy = by
	p.UpdatedOn = s.now()

	_, err = s.exec(ctx, s.db,
		`UPDATE projects SET name = ?, description = ?, status = ?, updated_by = ?, updated_on = ? WHERE id = ?`,
		p.Name, p.Description, p.Status, p.UpdatedBy, ts(p.UpdatedOn), id)
	if err != nil {
		return Project{}, fmt.Errorf("update project %d: %w", id, classify(err))
	}
	return p, nil
}

// DeleteProject removes a project with its sections, test cases, runs and
// import records.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int64
		if err := s.queryRow(ctx, tx, `SELECT id FROM projects WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("delete project %d: %w", id, classify(err))
		}

		stmts := []string{
			`DELETE FROM run_tests WHERE run_id IN (SELECT id FROM runs WHERE project_id = ?)`,
			`DELETE FROM runs WHERE project_id = ?`,
			`DELETE FROM test_cases WHERE project_id = ?`,
			`DELETE FROM sections WHERE project_id = ?`,
			`DELETE FROM imports WHERE project_id = ?`,
			`DELETE FROM projects WHERE id = ?`,
		}
		for _, q := range stmts {
			if _, err := s.exec(ctx, tx, q, id); err != nil {
				return fmt.Errorf("delete project %d: %w", id, err)
			}
		}
		return nil
	})
}
