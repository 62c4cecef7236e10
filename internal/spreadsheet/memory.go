package spreadsheet

import "fmt"

// MemoryWorkbook is a Workbook held in memory. Sheets keep insertion order.
type MemoryWorkbook struct {
	order  []string
	sheets map[string]*MemorySheet
}

// NewMemoryWorkbook creates an empty workbook.
func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{sheets: make(map[string]*MemorySheet)}
}

// AddSheet adds a sheet with the given header and data rows.
func (w *MemoryWorkbook) AddSheet(name string, columns []string, rows ...[]any) *MemorySheet {
	s := &MemorySheet{name: name, columns: columns, data: rows}
	if _, exists := w.sheets[name]; !exists {
		w.order = append(w.order, name)
	}
	w.sheets[name] = s
	return s
}

// SheetNames returns the sheet names in insertion order.
func (w *MemoryWorkbook) SheetNames() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Sheet returns the named sheet.
func (w *MemoryWorkbook) Sheet(name string) (Sheet, error) {
	s, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoSuchSheet, name)
	}
	return s, nil
}

// MemorySheet is a Sheet held in memory.
type MemorySheet struct {
	name    string
	columns []string
	data    [][]any
}

func (s *MemorySheet) Name() string      { return s.name }
func (s *MemorySheet) Columns() []string { return s.columns }

// Rows returns an iterator over the sheet's data rows.
func (s *MemorySheet) Rows() (RowIterator, error) {
	return &memoryRows{sheet: s, index: ColumnIndex(s.columns)}, nil
}

type memoryRows struct {
	sheet *MemorySheet
	index map[string]int
	next  int
}

func (it *memoryRows) Next() (*Row, error) {
	if it.next >= len(it.sheet.data) {
		return nil, EOF
	}
	values := it.sheet.data[it.next]
	it.next++
	return NewRow(it.sheet.columns, it.index, values, it.next+1), nil
}

func (it *memoryRows) Close() error { return nil }
