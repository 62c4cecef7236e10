package spreadsheet

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// XLSXWorkbook is a Workbook backed by an .xlsx file.
type XLSXWorkbook struct {
	file *excelize.File
}

// OpenXLSX opens an .xlsx workbook. The caller must Close it.
func OpenXLSX(path string) (*XLSXWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return &XLSXWorkbook{file: f}, nil
}

// Close releases the workbook.
func (w *XLSXWorkbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the sheet names in workbook order.
func (w *XLSXWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Sheet returns the named sheet with its header row read.
func (w *XLSXWorkbook) Sheet(name string) (Sheet, error) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w %q", ErrNoSuchSheet, name)
	}

	s := &xlsxSheet{file: w.file, name: name}
	rows, err := w.file.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", name, err)
	}
	defer rows.Close()
	if rows.Next() {
		header, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("reading header of sheet %s: %w", name, err)
		}
		s.columns = header
	}
	return s, rows.Error()
}

type xlsxSheet struct {
	file    *excelize.File
	name    string
	columns []string
}

func (s *xlsxSheet) Name() string      { return s.name }
func (s *xlsxSheet) Columns() []string { return s.columns }

func (s *xlsxSheet) Rows() (RowIterator, error) {
	rows, err := s.file.Rows(s.name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", s.name, err)
	}
	it := &xlsxRows{sheet: s, rows: rows, index: ColumnIndex(s.columns)}
	// Skip the header.
	if rows.Next() {
		it.position = 1
	}
	return it, nil
}

type xlsxRows struct {
	sheet    *xlsxSheet
	rows     *excelize.Rows
	index    map[string]int
	position int
}

func (it *xlsxRows) Next() (*Row, error) {
	if !it.rows.Next() {
		if err := it.rows.Error(); err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", it.sheet.name, err)
		}
		return nil, EOF
	}
	it.position++

	raw, err := it.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading row %d of sheet %s: %w", it.position, it.sheet.name, err)
	}
	values := make([]any, len(raw))
	for i, cell := range raw {
		v, err := it.typedValue(i, cell)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return NewRow(it.sheet.columns, it.index, values, it.position), nil
}

// typedValue converts a raw cell string to the type recorded in the sheet.
func (it *xlsxRows) typedValue(col int, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	axis, err := excelize.CoordinatesToCellName(col+1, it.position)
	if err != nil {
		return nil, err
	}
	kind, err := it.sheet.file.GetCellType(it.sheet.name, axis)
	if err != nil {
		return nil, fmt.Errorf("reading cell %s of sheet %s: %w", axis, it.sheet.name, err)
	}

	switch kind {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE" || raw == "true", nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
				return int64(n), nil
			}
			return n, nil
		}
	}
	return raw, nil
}

func (it *xlsxRows) Close() error {
	return it.rows.Close()
}
