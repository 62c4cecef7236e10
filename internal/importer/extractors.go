package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matsen/papercat/internal/pdf"
	"github.com/matsen/papercat/internal/spreadsheet"
)

// RowSet holds the current row of each active sheet. A sheet whose rows
// have run out is absent. A sheet missing from the workbook maps to nil.
type RowSet map[string]*spreadsheet.Row

// Extractor produces one field value from the current rows and document.
type Extractor interface {
	Extract(rows RowSet, doc *pdf.Document) (any, error)
}

// Constant always returns Value.
type Constant struct {
	Value any
}

func (c Constant) Extract(RowSet, *pdf.Document) (any, error) {
	return c.Value, nil
}

// DocumentField names a field of the extracted document.
type DocumentField string

const (
	DocumentTitle    DocumentField = "title"
	DocumentAbstract DocumentField = "abstract"
)

func (f DocumentField) Extract(_ RowSet, doc *pdf.Document) (any, error) {
	if doc == nil {
		return "", nil
	}
	switch f {
	case DocumentTitle:
		return doc.Title, nil
	case DocumentAbstract:
		return doc.Abstract, nil
	default:
		return nil, extractionErrorf("Document has no field %q", string(f))
	}
}

// Cell reads a column of the current row of one sheet. It returns Default
// when the sheet has run out or the cell is empty, and an error when the
// workbook has no such sheet.
type Cell struct {
	Path    spreadsheet.Path
	Default any
}

func (c Cell) Extract(rows RowSet, _ *pdf.Document) (any, error) {
	row, ok := rows[c.Path.Sheet]
	if !ok {
		return c.Default, nil
	}
	if row == nil {
		return nil, &ExtractionError{
			Reason: fmt.Sprintf("Workbook has no sheet named %s", c.Path.Sheet),
			Err:    spreadsheet.ErrNoSuchSheet,
		}
	}
	v, err := row.Value(c.Path.Column)
	if err != nil {
		return nil, &ExtractionError{
			Reason: fmt.Sprintf("Sheet %s has no column named %s", c.Path.Sheet, c.Path.Column),
			Err:    err,
		}
	}
	if v == nil {
		return c.Default, nil
	}
	return v, nil
}

// Bool coerces the value of Source to a boolean. Numbers are true when
// non-zero. Strings must be one of y, yes, true, t, n, no, false, f or
// empty, in any case.
type Bool struct {
	Source Extractor
}

func (b Bool) Extract(rows RowSet, doc *pdf.Document) (any, error) {
	v, err := b.Source.Extract(rows, doc)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "y", "yes", "true", "t":
			return true, nil
		case "", "n", "no", "false", "f":
			return false, nil
		default:
			return nil, extractionErrorf("Cannot convert value \"%s\" to a boolean", truncate(strings.TrimSpace(x)))
		}
	default:
		return nil, extractionErrorf("Cannot convert value of type %T to a boolean", v)
	}
}

// Int coerces the value of Source to an int. Floats are accepted only
// when they have no fractional part and fit in an int64.
type Int struct {
	Source Extractor
}

func (n Int) Extract(rows RowSet, doc *pdf.Document) (any, error) {
	v, err := n.Source.Extract(rows, doc)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil, &ExtractionError{
				Reason: fmt.Sprintf("Cannot convert \"%s\" to an integer", truncate(x)),
				Err:    err,
			}
		}
		return i, nil
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return nil, extractionErrorf("Cannot convert floating-point number to integer - it would lose precision")
		}
		return int(x), nil
	default:
		return nil, extractionErrorf("Cannot convert value of type %T to an integer", v)
	}
}

// NamedTable is a store table of named entities.
type NamedTable[T any] interface {
	WithName(name string) (T, bool)
	Add(item T) (T, error)
}

// Lookup resolves the name produced by Source in Table, creating the
// entity with New when it does not exist yet. An empty name yields nil.
// The result is a *T.
type Lookup[T any] struct {
	Table  NamedTable[T]
	Source Extractor
	New    func(name string) T
}

func (l Lookup[T]) Extract(rows RowSet, doc *pdf.Document) (any, error) {
	v, err := l.Source.Extract(rows, doc)
	if err != nil {
		return nil, err
	}
	name, err := text(v)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return (*T)(nil), nil
	}

	if item, ok := l.Table.WithName(name); ok {
		return &item, nil
	}
	item, err := l.Table.Add(l.New(name))
	if err != nil {
		return nil, &ExtractionError{Reason: fmt.Sprintf("Cannot create \"%s\": %v", truncate(name), err), Err: err}
	}
	return &item, nil
}

// text converts a cell or constant value to a string.
func text(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", extractionErrorf("Cannot convert value of type %T to text", v)
	}
}

// truncate shortens long values quoted in error messages.
func truncate(s string) string {
	r := []rune(s)
	if len(r) > 20 {
		return string(r[:17]) + "..."
	}
	return s
}
