// Package storage provides the SQLite-backed article catalog.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matsen/papercat/internal/article"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection and exposes one table per entity.
type DB struct {
	db  *sql.DB
	now func() time.Time

	ArticleTypes *EnumTable[article.ArticleType]
	Categories   *EnumTable[article.Category]
	Venues       *VenueTable
	Articles     *ArticleTable
}

// DefaultArticleTypes are seeded into every new store.
var DefaultArticleTypes = []string{
	"Poster", "Oral", "Spotlight",
	"Long Academic", "Long Industry",
	"Short Academic", "Short Industry",
	"Journal",
}

// DefaultVenues are seeded into every new store.
var DefaultVenues = []article.Venue{
	{Name: "Association for Computational Linguistics", Abbreviation: "ACL"},
	{Name: "ACM International Conference on Information and Knowledge Management", Abbreviation: "CIKM"},
	{Name: "International Conference on Learning Representations", Abbreviation: "ICLR"},
	{Name: "International Conference on Machine Learning", Abbreviation: "ICML"},
	{Name: "ACM SIGKDD Conference On Knowledge Discovery and Data Mining", Abbreviation: "KDD"},
	{Name: "Conference of the North American Chapter of the Association for Computational Linguistics", Abbreviation: "NAACL"},
	{Name: "Neural Information Processing Systems", Abbreviation: "NIPS"},
	{Name: "International ACM SIGIR Conference on Research and Development in Information Retrieval", Abbreviation: "SIGIR"},
}

// OpenDB opens or creates a SQLite database at the given path.
// The schema is created if needed; no rows are seeded.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	d := &DB{db: db, now: time.Now}
	if err := d.loadTables(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// CreateDB creates a new store at path, replacing any file already there,
// and seeds the default article types and venues.
func CreateDB(path string) (*DB, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing existing database: %w", err)
	}

	d, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	for _, name := range DefaultArticleTypes {
		if _, err := d.ArticleTypes.Add(article.ArticleType{Name: name}); err != nil {
			d.Close()
			return nil, fmt.Errorf("seeding article type %s: %w", name, err)
		}
	}
	for _, v := range DefaultVenues {
		if _, err := d.Venues.Add(v); err != nil {
			d.Close()
			return nil, fmt.Errorf("seeding venue %s: %w", v.Abbreviation, err)
		}
	}
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// SetClock replaces the time source used for article timestamps.
func (d *DB) SetClock(now func() time.Time) {
	d.now = now
}

func (d *DB) loadTables() error {
	var err error
	if d.ArticleTypes, err = newEnumTable(d, articleTypeSpec); err != nil {
		return fmt.Errorf("loading article types: %w", err)
	}
	if d.Categories, err = newEnumTable(d, categorySpec); err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	venues, err := newEnumTable(d, venueSpec)
	if err != nil {
		return fmt.Errorf("loading venues: %w", err)
	}
	d.Venues = &VenueTable{EnumTable: venues}
	d.Articles = &ArticleTable{d: d}

	d.ArticleTypes.countRefs = d.Articles.countColumn("article_type_id")
	d.Categories.countRefs = d.Articles.countColumn("category_id")
	d.Venues.countRefs = d.Articles.countColumn("venue_id")
	return nil
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Next identity to hand out, per table
		CREATE TABLE IF NOT EXISTS id_sequence (
			table_name TEXT PRIMARY KEY,
			id INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS article_types (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS venues (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			abbreviation TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			normalized_title TEXT NOT NULL,
			abstract TEXT,
			content TEXT,
			year INTEGER NOT NULL,
			priority INTEGER,
			downloaded_as TEXT,
			pdf_file TEXT,
			summary TEXT,
			is_read INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			last_updated_at INTEGER NOT NULL,
			last_indexed_at INTEGER,
			article_type_id INTEGER REFERENCES article_types(id),
			category_id INTEGER REFERENCES categories(id),
			venue_id INTEGER NOT NULL REFERENCES venues(id)
		);

		-- Deduplication key used by the importer
		CREATE INDEX IF NOT EXISTS idx_articles_dedup
			ON articles(normalized_title, year, venue_id);
	`

	_, err := db.Exec(schema)
	return err
}

// nextID hands out the next identity for table inside tx. The sequence row
// stores the next unused id.
func nextID(tx *sql.Tx, table string) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM id_sequence WHERE table_name = ?`, table).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = 1
		_, err = tx.Exec(`INSERT INTO id_sequence (table_name, id) VALUES (?, ?)`, table, id+1)
	case err == nil:
		_, err = tx.Exec(`UPDATE id_sequence SET id = id + 1 WHERE table_name = ?`, table)
	}
	if err != nil {
		return 0, fmt.Errorf("allocating id for %s: %w", table, err)
	}
	return id, nil
}

// withTx runs fn in a transaction, committing on success.
func (d *DB) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
