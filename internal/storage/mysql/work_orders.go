package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"optimaflow/internal/storage"
)

const workOrderColumns = `id, order_no, status, completion_status, has_images,
	signature_url, tracking_url, ` + "`timestamp`" + `, service_date, driver_name, qc_note,
	location_name, location_address, location_city, location_state, location_zip,
	search_response, completion_response`

func (s *Storage) ListWorkOrders(ctx context.Context, filter storage.WorkOrderFilter) ([]storage.WorkOrder, error) {
	const op = "storage.mysql.ListWorkOrders"

	stmt := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		stmt += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.From != "" {
		stmt += " AND service_date >= ?"
		args = append(args, filter.From)
	}
	if filter.To != "" {
		stmt += " AND service_date <= ?"
		args = append(args, filter.To)
	}
	if filter.Search != "" {
		stmt += " AND (order_no LIKE ? OR location_name LIKE ? OR driver_name LIKE ?)"
		like := "%" + filter.Search + "%"
		args = append(args, like, like, like)
	}

	stmt += " ORDER BY service_date DESC, order_no ASC"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var orders []storage.WorkOrder
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return orders, nil
}

func (s *Storage) GetWorkOrder(ctx context.Context, orderNo string) (*storage.WorkOrder, error) {
	const op = "storage.mysql.GetWorkOrder"

	stmt := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE order_no = ?`

	row := s.db.QueryRowContext(ctx, stmt, orderNo)
	order, err := scanWorkOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &order, nil
}

// UpsertWorkOrders writes a batch in one transaction. The conflict target is
// the unique key on order_no: the incoming row wins wholesale (last write
// wins), which is the only concurrency control the store provides.
func (s *Storage) UpsertWorkOrders(ctx context.Context, orders []storage.WorkOrder) (int, error) {
	const op = "storage.mysql.UpsertWorkOrders"

	if len(orders) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO work_orders
			(id, order_no, status, completion_status, has_images,
			 signature_url, tracking_url, `+"`timestamp`"+`, service_date, driver_name, qc_note,
			 location_name, location_address, location_city, location_state, location_zip,
			 search_response, completion_response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			completion_status = VALUES(completion_status),
			has_images = VALUES(has_images),
			signature_url = VALUES(signature_url),
			tracking_url = VALUES(tracking_url),
			`+"`timestamp`"+` = VALUES(`+"`timestamp`"+`),
			service_date = VALUES(service_date),
			driver_name = VALUES(driver_name),
			location_name = VALUES(location_name),
			location_address = VALUES(location_address),
			location_city = VALUES(location_city),
			location_state = VALUES(location_state),
			location_zip = VALUES(location_zip),
			search_response = VALUES(search_response),
			completion_response = VALUES(completion_response),
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	saved := 0
	for _, o := range orders {
		loc := o.Location
		if loc == nil {
			loc = &storage.Location{}
		}

		_, err := stmt.ExecContext(ctx,
			o.ID, o.OrderNo, o.Status, nullString(o.CompletionStatus), o.HasImages,
			o.SignatureURL, o.TrackingURL, nullString(o.Timestamp), nullString(o.ServiceDate),
			nullString(o.DriverName), nullString(o.QcNote),
			loc.Name, nullString(loc.Address), nullString(loc.City), nullString(loc.State), nullString(loc.Zip),
			nullBytes(o.SearchResponse), nullBytes(o.CompletionResponse),
		)
		if err != nil {
			return saved, fmt.Errorf("%s: upsert order_no=%s: %w", op, o.OrderNo, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return saved, nil
}

func (s *Storage) UpdateWorkOrderStatus(ctx context.Context, orderNo, status, note string) error {
	const op = "storage.mysql.UpdateWorkOrderStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE work_orders SET status = ?, qc_note = ?, updated_at = CURRENT_TIMESTAMP WHERE order_no = ?`,
		status, note, orderNo,
	)
	if err != nil {
		return fmt.Errorf("%s: order_no=%s: %w", op, orderNo, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: order_no=%s: %w", op, orderNo, storage.ErrOrderNotFound)
	}

	return nil
}

func (s *Storage) DeleteWorkOrder(ctx context.Context, orderNo string) error {
	const op = "storage.mysql.DeleteWorkOrder"

	res, err := s.db.ExecContext(ctx, `DELETE FROM work_orders WHERE order_no = ?`, orderNo)
	if err != nil {
		return fmt.Errorf("%s: order_no=%s: %w", op, orderNo, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: order_no=%s: %w", op, orderNo, storage.ErrOrderNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkOrder(row rowScanner) (storage.WorkOrder, error) {
	var (
		order                                       storage.WorkOrder
		completionStatus, ts, serviceDate           sql.NullString
		driverName, qcNote                          sql.NullString
		signatureURL, trackingURL                   sql.NullString
		locName, locAddress, locCity, locState, zip sql.NullString
		searchResp, completionResp                  []byte
	)

	err := row.Scan(
		&order.ID, &order.OrderNo, &order.Status, &completionStatus, &order.HasImages,
		&signatureURL, &trackingURL, &ts, &serviceDate, &driverName, &qcNote,
		&locName, &locAddress, &locCity, &locState, &zip,
		&searchResp, &completionResp,
	)
	if err != nil {
		return storage.WorkOrder{}, err
	}

	order.CompletionStatus = completionStatus.String
	order.Timestamp = ts.String
	order.ServiceDate = serviceDate.String
	order.DriverName = driverName.String
	order.QcNote = qcNote.String
	if signatureURL.Valid {
		order.SignatureURL = &signatureURL.String
	}
	if trackingURL.Valid {
		order.TrackingURL = &trackingURL.String
	}
	order.Location = &storage.Location{
		Name:    locName.String,
		Address: locAddress.String,
		City:    locCity.String,
		State:   locState.String,
		Zip:     zip.String,
	}
	order.SearchResponse = searchResp
	order.CompletionResponse = completionResp

	return order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
