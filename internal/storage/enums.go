package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/matsen/papercat/internal/article"
)

// enumSpec describes how an enumerated entity maps onto its table.
// columns[0] is the id column and columns[1] the unique name column.
type enumSpec[T any] struct {
	typeName string
	table    string
	columns  []string
	scan     func(s scanner) (T, error)
	values   func(item T) []any // values for columns[1:]
	id       func(item T) int64
	name     func(item T) string
}

var articleTypeSpec = enumSpec[article.ArticleType]{
	typeName: "ArticleType",
	table:    "article_types",
	columns:  []string{"id", "name"},
	scan: func(s scanner) (article.ArticleType, error) {
		var t article.ArticleType
		err := s.Scan(&t.ID, &t.Name)
		return t, err
	},
	values: func(t article.ArticleType) []any { return []any{t.Name} },
	id:     func(t article.ArticleType) int64 { return t.ID },
	name:   func(t article.ArticleType) string { return t.Name },
}

var categorySpec = enumSpec[article.Category]{
	typeName: "Category",
	table:    "categories",
	columns:  []string{"id", "name"},
	scan: func(s scanner) (article.Category, error) {
		var c article.Category
		err := s.Scan(&c.ID, &c.Name)
		return c, err
	},
	values: func(c article.Category) []any { return []any{c.Name} },
	id:     func(c article.Category) int64 { return c.ID },
	name:   func(c article.Category) string { return c.Name },
}

var venueSpec = enumSpec[article.Venue]{
	typeName: "Venue",
	table:    "venues",
	columns:  []string{"id", "name", "abbreviation"},
	scan: func(s scanner) (article.Venue, error) {
		var v article.Venue
		err := s.Scan(&v.ID, &v.Name, &v.Abbreviation)
		return v, err
	},
	values: func(v article.Venue) []any { return []any{v.Name, v.Abbreviation} },
	id:     func(v article.Venue) int64 { return v.ID },
	name:   func(v article.Venue) string { return v.Name },
}

// EnumTable is a small lookup table whose rows are cached in memory.
// Lookups never touch the database; writes go through to it and refresh
// the cache.
type EnumTable[T any] struct {
	d         *DB
	spec      enumSpec[T]
	all       []T
	byID      map[int64]int
	byName    map[string]int
	countRefs func(id int64) (int, error)
}

func newEnumTable[T any](d *DB, spec enumSpec[T]) (*EnumTable[T], error) {
	t := &EnumTable[T]{d: d, spec: spec}

	rows, err := d.db.Query(`SELECT ` + strings.Join(spec.columns, ", ") +
		` FROM ` + spec.table + ` ORDER BY ` + spec.columns[0])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := spec.scan(rows)
		if err != nil {
			return nil, err
		}
		t.all = append(t.all, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	t.reindex()
	return t, nil
}

func (t *EnumTable[T]) reindex() {
	t.byID = make(map[int64]int, len(t.all))
	t.byName = make(map[string]int, len(t.all))
	for i, item := range t.all {
		t.byID[t.spec.id(item)] = i
		t.byName[t.spec.name(item)] = i
	}
}

// All returns every item in id order.
func (t *EnumTable[T]) All() []T {
	out := make([]T, len(t.all))
	copy(out, t.all)
	return out
}

// Len returns the number of items.
func (t *EnumTable[T]) Len() int {
	return len(t.all)
}

// WithID returns the item with the given id.
func (t *EnumTable[T]) WithID(id int64) (T, bool) {
	i, ok := t.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.all[i], true
}

// WithName returns the item with the given name.
func (t *EnumTable[T]) WithName(name string) (T, bool) {
	i, ok := t.byName[name]
	if !ok {
		var zero T
		return zero, false
	}
	return t.all[i], true
}

// find returns the first cached item satisfying match.
func (t *EnumTable[T]) find(match func(T) bool) (T, bool) {
	for _, item := range t.all {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// CountReferencesTo returns how many articles reference item.
func (t *EnumTable[T]) CountReferencesTo(item T) (int, error) {
	return t.countRefs(t.spec.id(item))
}

// Add inserts a new item and returns it with its assigned id.
func (t *EnumTable[T]) Add(item T) (T, error) {
	var zero T
	name := t.spec.name(item)
	if id := t.spec.id(item); id != 0 {
		return zero, fmt.Errorf("adding %s with id %d: %w", t.spec.typeName, id, ErrHasID)
	}
	if _, exists := t.byName[name]; exists {
		return zero, fmt.Errorf("adding %s %q: %w", t.spec.typeName, name, ErrDuplicateName)
	}

	var id int64
	err := t.d.withTx(func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(tx, t.spec.table); err != nil {
			return err
		}
		args := append([]any{id}, t.spec.values(item)...)
		_, err = tx.Exec(`INSERT INTO `+t.spec.table+` (`+strings.Join(t.spec.columns, ", ")+
			`) VALUES (`+placeholders(len(t.spec.columns))+`)`, args...)
		return err
	})
	if err != nil {
		return zero, fmt.Errorf("adding %s %q: %w", t.spec.typeName, name, err)
	}

	added, err := t.fetch(id)
	if err != nil {
		return zero, err
	}
	t.all = append(t.all, added)
	t.reindex()
	return added, nil
}

// Update writes item's non-id columns.
func (t *EnumTable[T]) Update(item T) error {
	id := t.spec.id(item)
	if id == 0 {
		return fmt.Errorf("updating %s: %w", t.spec.typeName, ErrNoID)
	}
	i, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("updating %s with id %d: %w", t.spec.typeName, id, ErrNotFound)
	}

	var sets []string
	for _, c := range t.spec.columns[1:] {
		sets = append(sets, c+" = ?")
	}
	args := append(t.spec.values(item), id)
	_, err := t.d.db.Exec(`UPDATE `+t.spec.table+` SET `+strings.Join(sets, ", ")+
		` WHERE `+t.spec.columns[0]+` = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating %s with id %d: %w", t.spec.typeName, id, err)
	}

	updated, err := t.fetch(id)
	if err != nil {
		return err
	}
	t.all[i] = updated
	t.reindex()
	return nil
}

// Delete removes item. The stored name must match item's name and no
// article may still reference it.
func (t *EnumTable[T]) Delete(item T) error {
	id := t.spec.id(item)
	name := t.spec.name(item)
	if id == 0 {
		return fmt.Errorf("deleting %s: %w", t.spec.typeName, ErrNoID)
	}
	i, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("deleting %s %q: %w", t.spec.typeName, name, ErrNotFound)
	}
	if stored := t.spec.name(t.all[i]); stored != name {
		return fmt.Errorf("deleting %s with id %d: stored name %q, got %q: %w",
			t.spec.typeName, id, stored, name, ErrNameMismatch)
	}

	refs, err := t.countRefs(id)
	if err != nil {
		return fmt.Errorf("counting references to %s %q: %w", t.spec.typeName, name, err)
	}
	if refs > 0 {
		return fmt.Errorf("deleting %s %q: %w", t.spec.typeName, name, ErrReferenced)
	}

	if _, err := t.d.db.Exec(`DELETE FROM `+t.spec.table+` WHERE `+t.spec.columns[0]+` = ?`, id); err != nil {
		return fmt.Errorf("deleting %s %q: %w", t.spec.typeName, name, err)
	}
	t.all = append(t.all[:i], t.all[i+1:]...)
	t.reindex()
	return nil
}

func (t *EnumTable[T]) fetch(id int64) (T, error) {
	row := t.d.db.QueryRow(`SELECT `+strings.Join(t.spec.columns, ", ")+
		` FROM `+t.spec.table+` WHERE `+t.spec.columns[0]+` = ?`, id)
	item, err := t.spec.scan(row)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("reading %s with id %d: %w", t.spec.typeName, id, err)
	}
	return item, nil
}

// VenueTable adds abbreviation lookup to the venue table.
type VenueTable struct {
	*EnumTable[article.Venue]
}

// WithAbbreviation returns the venue with the given abbreviation.
func (t *VenueTable) WithAbbreviation(abbreviation string) (article.Venue, bool) {
	return t.find(func(v article.Venue) bool { return v.Abbreviation == abbreviation })
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
