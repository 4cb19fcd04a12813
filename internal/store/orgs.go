package store

import (
	"context"
	"fmt"
)

func (s *Store) CreateOrg(ctx context.Context, name string, createdBy *int64) (Organization, error) {
	now := s.now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO organizations(name, created_by, created_on) VALUES(?, ?, ?)`,
		name, createdBy, ts(now))
	if err != nil {
		return Organization{}, fmt.Errorf("create org: %w", err)
	}
	return Organization{ID: id, Name: name, CreatedBy: createdBy, CreatedOn: now}, nil
}

func (s *Store) GetOrg(ctx context.Context, id int64) (Organization, error) {
	var o Organization
	err := s.queryRow(ctx, s.db,
		`SELECT id, name, created_by, created_on FROM organizations WHERE id = ?`, id).
		Scan(&o.ID, &o.Name, &o.CreatedBy, at(&o.CreatedOn))
	if err != nil {
		return Organization{}, fmt.Errorf("get org %d: %w", id, classify(err))
	}
	return o, nil
}

func (s *Store) ListOrgs(ctx context.Context) ([]Organization, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT id, name, created_by, created_on FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list orgs: %w", err)
	}
	defer rows.Close()

	orgs := make([]Organization, 0)
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedBy, at(&o.CreatedOn)); err != nil {
			return nil, fmt.Errorf("scan org: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}
