// Package spreadsheet reads workbooks row by row for the importer.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"regexp"
)

// ErrNoSuchColumn indicates a row was indexed by an unknown column name.
var ErrNoSuchColumn = errors.New("no such column")

// ErrNoSuchSheet indicates a workbook has no sheet with the requested name.
var ErrNoSuchSheet = errors.New("no such sheet")

// ErrIndexOutOfRange indicates a row was indexed by an invalid position.
var ErrIndexOutOfRange = errors.New("index out of range")

// EOF is returned by RowIterator.Next when a sheet has no more rows.
var EOF = io.EOF

// Workbook is a collection of named sheets.
type Workbook interface {
	SheetNames() []string
	Sheet(name string) (Sheet, error)
}

// Sheet is a table whose first row holds the column names.
type Sheet interface {
	Name() string
	Columns() []string
	// Rows returns a one-pass iterator over the data rows. The header row
	// is already consumed.
	Rows() (RowIterator, error)
}

// RowIterator yields rows until it returns EOF.
type RowIterator interface {
	Next() (*Row, error)
	Close() error
}

// Path addresses a column of a sheet, written @Sheet[Column].
type Path struct {
	Sheet  string
	Column string
}

var pathPattern = regexp.MustCompile(`^@([^\[\]]+)\[([^\[\]]+)\]$`)

// ParsePath parses the @Sheet[Column] form.
func ParsePath(s string) (Path, error) {
	m := pathPattern.FindStringSubmatch(s)
	if m == nil {
		return Path{}, fmt.Errorf("invalid spreadsheet path [%s]", s)
	}
	return Path{Sheet: m[1], Column: m[2]}, nil
}

func (p Path) String() string {
	return fmt.Sprintf("@%s[%s]", p.Sheet, p.Column)
}

// Row is one data row of a sheet. Cell values are string, int64, float64,
// bool or nil for empty cells.
type Row struct {
	columns  []string
	index    map[string]int
	values   []any
	position int
}

// NewRow builds a row over the given header. position is the 1-based row
// number within the sheet, counting the header.
func NewRow(columns []string, index map[string]int, values []any, position int) *Row {
	if index == nil {
		index = ColumnIndex(columns)
	}
	return &Row{columns: columns, index: index, values: values, position: position}
}

// ColumnIndex maps each column name to its position. When a name repeats,
// the last occurrence wins.
func ColumnIndex(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return index
}

// Columns returns the header of the row's sheet.
func (r *Row) Columns() []string { return r.columns }

// Len returns the number of columns.
func (r *Row) Len() int { return len(r.columns) }

// Position returns the row number within the sheet (the header is row 1).
func (r *Row) Position() int { return r.position }

// Value returns the cell in the named column.
func (r *Row) Value(column string) (any, error) {
	i, ok := r.index[column]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoSuchColumn, column)
	}
	return r.valueAt(i), nil
}

// At returns the cell at position i. Negative positions count from the end.
func (r *Row) At(i int) (any, error) {
	n := len(r.columns)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: index %d in a row of length %d", ErrIndexOutOfRange, i, n)
	}
	return r.valueAt(i), nil
}

// valueAt returns nil for cells past the end of the stored data.
func (r *Row) valueAt(i int) any {
	if i >= len(r.values) {
		return nil
	}
	return r.values[i]
}
