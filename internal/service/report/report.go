package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"optimaflow/internal/storage"
)

type ReportStorage interface {
	ListWorkOrders(ctx context.Context, filter storage.WorkOrderFilter) ([]storage.WorkOrder, error)
	GetAttendanceMatrix(ctx context.Context, from, to string) ([]storage.AttendanceRecord, error)
	GetTechnicians(ctx context.Context, groupSlug string) ([]storage.Technician, error)
}

type Service struct {
	storage ReportStorage
}

func New(storage ReportStorage) *Service {
	return &Service{storage: storage}
}

// Generate builds the QC + attendance workbook for a date range and returns
// the serialized file.
func (s *Service) Generate(ctx context.Context, from, to string) ([]byte, error) {
	const op = "service.report.Generate"

	orders, err := s.storage.ListWorkOrders(ctx, storage.WorkOrderFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("%s: fetch orders: %w", op, err)
	}

	records, err := s.storage.GetAttendanceMatrix(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch attendance: %w", op, err)
	}

	technicians, err := s.storage.GetTechnicians(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%s: fetch technicians: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	if err := writeQCSheet(f, headerStyle, orders); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := writeAttendanceSheet(f, headerStyle, records, technicians); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write workbook: %w", op, err)
	}

	return buf.Bytes(), nil
}

func writeQCSheet(f *excelize.File, headerStyle int, orders []storage.WorkOrder) error {
	sheet := "QC Summary"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order No", "Service Date", "QC Status", "Completion Status",
		"Images", "Driver", "Location", "City", "QC Note"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	for rowIdx, o := range orders {
		row := rowIdx + 2
		locName, locCity := "", ""
		if o.Location != nil {
			locName, locCity = o.Location.Name, o.Location.City
		}

		images := "no"
		if o.HasImages {
			images = "yes"
		}

		values := []any{o.OrderNo, o.ServiceDate, o.Status, o.CompletionStatus,
			images, o.DriverName, locName, locCity, o.QcNote}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return nil
}

func writeAttendanceSheet(f *excelize.File, headerStyle int, records []storage.AttendanceRecord, technicians []storage.Technician) error {
	sheet := "Attendance"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	// One row per date, one column per technician.
	f.SetCellValue(sheet, "A1", "Date")
	techCol := make(map[int64]int, len(technicians))
	for i, t := range technicians {
		col := i + 2
		techCol[t.ID] = col
		cell, _ := excelize.CoordinatesToCellName(col, 1)
		f.SetCellValue(sheet, cell, t.Name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(technicians)+1, 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	dateRow := make(map[string]int)
	nextRow := 2
	for _, r := range records {
		row, ok := dateRow[r.Date]
		if !ok {
			row = nextRow
			nextRow++
			dateRow[r.Date] = row
			cell, _ := excelize.CoordinatesToCellName(1, row)
			f.SetCellValue(sheet, cell, r.Date)
		}

		col, ok := techCol[r.TechnicianID]
		if !ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(col, row)
		f.SetCellValue(sheet, cell, r.Status)
	}

	return nil
}
