package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Criteria maps column names to constraints. A plain value means equality,
// nil means IS NULL, a slice means set membership, and a Constraint is
// rendered by itself.
type Criteria map[string]any

// Constraint renders a SQL condition on a single column.
type Constraint interface {
	toSQL(column string) (string, []any)
}

type comparison struct {
	op    string
	value any
}

func (c comparison) toSQL(column string) (string, []any) {
	return fmt.Sprintf("%s %s ?", column, c.op), []any{sqlValue(c.value)}
}

// GreaterThan matches column > v.
func GreaterThan(v any) Constraint { return comparison{">", v} }

// GreaterEqual matches column >= v.
func GreaterEqual(v any) Constraint { return comparison{">=", v} }

// LessThan matches column < v.
func LessThan(v any) Constraint { return comparison{"<", v} }

// LessEqual matches column <= v.
func LessEqual(v any) Constraint { return comparison{"<=", v} }

type rangeConstraint struct {
	low, high Constraint
}

func (r rangeConstraint) toSQL(column string) (string, []any) {
	lowSQL, lowArgs := r.low.toSQL(column)
	highSQL, highArgs := r.high.toSQL(column)
	return fmt.Sprintf("(%s) AND (%s)", lowSQL, highSQL), append(lowArgs, highArgs...)
}

// InRange matches low <= column < high, with either end optionally flipped
// to exclusive/inclusive.
func InRange(low, high any, lowExclusive, highExclusive bool) Constraint {
	r := rangeConstraint{low: GreaterEqual(low), high: LessThan(high)}
	if lowExclusive {
		r.low = GreaterThan(low)
	}
	if !highExclusive {
		r.high = LessEqual(high)
	}
	return r
}

// Between is InRange with the usual half-open interval [low, high).
func Between(low, high any) Constraint {
	return InRange(low, high, false, true)
}

type nullConstraint bool

func (n nullConstraint) toSQL(column string) (string, []any) {
	if n {
		return column + " IS NULL", nil
	}
	return column + " IS NOT NULL", nil
}

var (
	// IsNull matches rows where the column is NULL.
	IsNull Constraint = nullConstraint(true)

	// NotNull matches rows where the column is not NULL.
	NotNull Constraint = nullConstraint(false)
)

type inConstraint []any

func (in inConstraint) toSQL(column string) (string, []any) {
	if len(in) == 0 {
		return "0 = 1", nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(in)), ", ")
	args := make([]any, len(in))
	for i, v := range in {
		args[i] = sqlValue(v)
	}
	return fmt.Sprintf("%s IN (%s)", column, placeholders), args
}

// In matches rows whose column equals any of the values.
func In(values ...any) Constraint { return inConstraint(values) }

// buildWhere renders criteria as a WHERE clause. Keys must be in columns.
// Conditions are emitted in sorted column order so statements are stable.
func buildWhere(criteria Criteria, columns []string) (string, []any, error) {
	if len(criteria) == 0 {
		return "", nil, nil
	}

	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		if !known[k] {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conds []string
	var args []any
	for _, k := range keys {
		c, err := toConstraint(criteria[k])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", k, err)
		}
		s, a := c.toSQL(k)
		conds = append(conds, "("+s+")")
		args = append(args, a...)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func toConstraint(v any) (Constraint, error) {
	switch x := v.(type) {
	case nil:
		return IsNull, nil
	case Constraint:
		return x, nil
	case []any:
		return In(x...), nil
	case []int64:
		return In(toAnySlice(x)...), nil
	case []int:
		return In(toAnySlice(x)...), nil
	case []string:
		return In(toAnySlice(x)...), nil
	case string, int, int64, float64, bool, time.Time:
		return comparison{"=", x}, nil
	default:
		return nil, fmt.Errorf("%w: value of type %T", ErrInvalidCriteria, v)
	}
}

func toAnySlice[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// sqlValue converts Go values to what the store writes: times become unix
// seconds and booleans 0/1.
func sqlValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Unix()
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return v
	}
}
