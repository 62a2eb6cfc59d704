package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"optimaflow/internal/storage"
)

func (s *Storage) GetAttendance(ctx context.Context, groupID int64, date string) ([]storage.AttendanceRecord, error) {
	const op = "storage.mysql.GetAttendance"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, technician_id, group_id, record_date, status, note
		FROM attendance
		WHERE group_id = ? AND record_date = ?
		ORDER BY technician_id ASC`,
		groupID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var records []storage.AttendanceRecord
	for rows.Next() {
		var (
			r    storage.AttendanceRecord
			note sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.TechnicianID, &r.GroupID, &r.Date, &r.Status, &note); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		r.Note = note.String
		records = append(records, r)
	}

	return records, rows.Err()
}

// SaveAttendance replaces a group's sheet for one day: old rows go first,
// then the submitted set is inserted, all in one transaction.
func (s *Storage) SaveAttendance(ctx context.Context, req storage.SaveAttendance) error {
	const op = "storage.mysql.SaveAttendance"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM attendance WHERE group_id = ? AND record_date = ?`,
		req.GroupID, req.Date,
	)
	if err != nil {
		return fmt.Errorf("%s: delete old records group_id=%d date=%s: %w", op, req.GroupID, req.Date, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance (technician_id, group_id, record_date, status, note)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			note = VALUES(note),
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, r := range req.Records {
		_, err := stmt.ExecContext(ctx, r.TechnicianID, req.GroupID, req.Date, r.Status, r.Note)
		if err != nil {
			return fmt.Errorf("%s: insert technician_id=%d: %w", op, r.TechnicianID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

// GetAttendanceMatrix returns every record in a date range, used by the
// report export.
func (s *Storage) GetAttendanceMatrix(ctx context.Context, from, to string) ([]storage.AttendanceRecord, error) {
	const op = "storage.mysql.GetAttendanceMatrix"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, technician_id, group_id, record_date, status, note
		FROM attendance
		WHERE record_date >= ? AND record_date <= ?
		ORDER BY record_date ASC, technician_id ASC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var records []storage.AttendanceRecord
	for rows.Next() {
		var (
			r    storage.AttendanceRecord
			note sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.TechnicianID, &r.GroupID, &r.Date, &r.Status, &note); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		r.Note = note.String
		records = append(records, r)
	}

	return records, rows.Err()
}
