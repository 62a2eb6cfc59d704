package mysql

import (
	"context"
	"fmt"

	"optimaflow/internal/storage"
)

func (s *Storage) GetTechnicians(ctx context.Context, groupSlug string) ([]storage.Technician, error) {
	const op = "storage.mysql.GetTechnicians"

	stmt := `SELECT t.id, t.name, t.group_id, t.active FROM technicians t`
	var args []interface{}

	if groupSlug != "" {
		stmt += `
			JOIN technician_groups g ON g.id = t.group_id
			WHERE t.active = TRUE AND g.slug = ?
			ORDER BY t.name ASC`
		args = append(args, groupSlug)
	} else {
		stmt += ` WHERE t.active = TRUE ORDER BY t.name ASC`
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var technicians []storage.Technician
	for rows.Next() {
		var t storage.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.GroupID, &t.Active); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		technicians = append(technicians, t)
	}

	return technicians, rows.Err()
}

func (s *Storage) SaveTechnician(ctx context.Context, t storage.Technician) (int64, error) {
	const op = "storage.mysql.SaveTechnician"

	if t.ID != 0 {
		_, err := s.db.ExecContext(ctx,
			`UPDATE technicians SET name = ?, group_id = ?, active = ? WHERE id = ?`,
			t.Name, t.GroupID, t.Active, t.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("%s: update id=%d: %w", op, t.ID, err)
		}
		return t.ID, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO technicians (name, group_id, active) VALUES (?, ?, ?)`,
		t.Name, t.GroupID, t.Active,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: insert: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetGroups(ctx context.Context) ([]storage.TechnicianGroup, error) {
	const op = "storage.mysql.GetGroups"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug FROM technician_groups ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var groups []storage.TechnicianGroup
	for rows.Next() {
		var g storage.TechnicianGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

func (s *Storage) SaveGroup(ctx context.Context, g storage.TechnicianGroup) (int64, error) {
	const op = "storage.mysql.SaveGroup"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO technician_groups (name, slug) VALUES (?, ?)`,
		g.Name, g.Slug,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: insert: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) UpdateGroup(ctx context.Context, g storage.TechnicianGroup) error {
	const op = "storage.mysql.UpdateGroup"

	_, err := s.db.ExecContext(ctx,
		`UPDATE technician_groups SET name = ?, slug = ? WHERE id = ?`,
		g.Name, g.Slug, g.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: update id=%d: %w", op, g.ID, err)
	}

	return nil
}
