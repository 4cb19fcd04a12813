package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dgallion1/checkmate/internal/section"
)

const sectionColumns = `id, project_id, name, description, parent_id, created_by, updated_by, created_on, updated_on`

func scanSection(row interface{ Scan(...any) error }) (section.Section, error) {
	var sec section.Section
	err := row.Scan(&sec.ID, &sec.ProjectID, &sec.Name, &sec.Description, &sec.ParentID,
		&sec.CreatedBy, &sec.UpdatedBy, at(&sec.CreatedOn), at(&sec.UpdatedOn))
	return sec, err
}

type SectionInput struct {
	ProjectID   int64
	Name        string
	Description *string
	// ParentID nil, 0 or section.NoParent creates a root.
	ParentID *int64
}

// SectionUpdate changes only the non-nil fields. A ParentID of 0 or
// section.NoParent moves the section to the root.
type SectionUpdate struct {
	Name        *string
	Description *string
	ParentID    *int64
}

// normalizeParent stores every root sentinel as NULL.
func normalizeParent(p *int64) *int64 {
	if p == nil || *p == 0 || *p == section.NoParent {
		return nil
	}
	v := *p
	return &v
}

func (s *Store) CreateSection(ctx context.Context, in SectionInput, by *int64) (section.Section, error) {
	parent := normalizeParent(in.ParentID)
	if parent != nil {
		if err := s.sectionInProject(ctx, s.db, in.ProjectID, *parent); err != nil {
			return section.Section{}, err
		}
	}

	now := s.now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO sections(project_id, name, description, parent_id, created_by, updated_by, created_on, updated_on)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ProjectID, in.Name, in.Description, parent, by, by, ts(now), ts(now))
	if err != nil {
		return section.Section{}, fmt.Errorf("create section: %w", err)
	}
	return section.Section{
		ID: id, Name: in.Name, Description: in.Description, ParentID: parent,
		ProjectID: in.ProjectID, CreatedBy: by, UpdatedBy: by, CreatedOn: now, UpdatedOn: now,
	}, nil
}

// sectionInProject verifies the section exists inside the given project.
func (s *Store) sectionInProject(ctx context.Context, q queryer, projectID, sectionID int64) error {
	var pid int64
	err := s.queryRow(ctx, q, `SELECT project_id FROM sections WHERE id = ?`, sectionID).Scan(&pid)
	if err != nil {
		return fmt.Errorf("section %d: %w", sectionID, classify(err))
	}
	if pid != projectID {
		return fmt.Errorf("section %d belongs to another project: %w", sectionID, ErrConflict)
	}
	return nil
}

func (s *Store) GetSection(ctx context.Context, id int64) (section.Section, error) {
	sec, err := scanSection(s.queryRow(ctx, s.db,
		`SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id))
	if err != nil {
		return section.Section{}, fmt.Errorf("get section %d: %w", id, classify(err))
	}
	return sec, nil
}

// ListSections returns a project's sections as flat parent-pointer rows in
// id order.
func (s *Store) ListSections(ctx context.Context, projectID int64) ([]section.Section, error) {
	return s.listSections(ctx, s.db, projectID)
}

func (s *Store) listSections(ctx context.Context, q queryer, projectID int64) ([]section.Section, error) {
	rows, err := s.query(ctx, q,
		`SELECT `+sectionColumns+` FROM sections WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := make([]section.Section, 0)
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// UpdateSection renames or moves a section. Moving a section under itself
// or under one of its descendants is ErrConflict.
func (s *Store) UpdateSection(ctx context.Context, id int64, up SectionUpdate, by *int64) (section.Section, error) {
	var out section.Section
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		sec, err := scanSection(s.queryRow(ctx, tx,
			`SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id))
		if err != nil {
			return fmt.Errorf("get section %d: %w", id, classify(err))
		}

		if up.Name != nil {
			sec.Name = *up.Name
		}
		if up.Description != nil {
			sec.Description = up.Description
		}
		if up.ParentID != nil {
			parent := normalizeParent(up.ParentID)
			if parent != nil {
				if err := s.sectionInProject(ctx, tx, sec.ProjectID, *parent); err != nil {
					return err
				}
				all, err := s.listSections(ctx, tx, sec.ProjectID)
				if err != nil {
					return err
				}
				for _, d := range section.ChildSetOf(id, section.BuildHierarchy(all)) {
					if d == *parent {
						return fmt.Errorf("section %d cannot move under %d: %w", id, *parent, ErrConflict)
					}
				}
			}
			sec.ParentID = parent
		}
		sec.UpdatedBy = by
		sec.UpdatedOn = s.now()

		_, err = s.exec(ctx, tx,
			`UPDATE sections SET name = ?, description = ?, parent_id = ?, updated_by = ?, updated_on = ? WHERE id = ?`,
			sec.Name, sec.Description, sec.ParentID, sec.UpdatedBy, ts(sec.UpdatedOn), id)
		if err != nil {
			return fmt.Errorf("update section %d: %w", id, classify(err))
		}
		out = sec
		return nil
	})
	return out, err
}

// DeleteSection removes a section together with its whole child set and the
// test cases filed under any of them. It returns the removed section ids.
func (s *Store) DeleteSection(ctx context.Context, id int64) ([]int64, error) {
	var removed []int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var projectID int64
		if err := s.queryRow(ctx, tx, `SELECT project_id FROM sections WHERE id = ?`, id).Scan(&projectID); err != nil {
			return fmt.Errorf("delete section %d: %w", id, classify(err))
		}
		all, err := s.listSections(ctx, tx, projectID)
		if err != nil {
			return err
		}
		removed = section.Dedupe(section.ChildSetOf(id, section.BuildHierarchy(all)))

		in := placeholders(len(removed))
		args := int64Args(removed)
		stmts := []string{
			`DELETE FROM run_tests WHERE test_id IN (SELECT id FROM test_cases WHERE section_id IN (` + in + `))`,
			`DELETE FROM test_cases WHERE section_id IN (` + in + `)`,
			`DELETE FROM sections WHERE id IN (` + in + `)`,
		}
		for _, q := range stmts {
			if _, err := s.exec(ctx, tx, q, args...); err != nil {
				return fmt.Errorf("delete section %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
