package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/papercat/internal/article"
)

// setupTestDB creates a seeded store in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := CreateDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("CreateDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clock := time.Unix(1544000000, 0)
	db.SetClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})
	return db
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}
	if n := db.Venues.Len(); n != 0 {
		t.Errorf("OpenDB() seeded %d venues, want 0", n)
	}
	if n, err := db.Articles.Count(nil); err != nil || n != 0 {
		t.Errorf("Articles.Count() = %d, %v; want 0, nil", n, err)
	}
}

func TestCreateDB_Seeds(t *testing.T) {
	db := setupTestDB(t)

	if got := db.ArticleTypes.Len(); got != len(DefaultArticleTypes) {
		t.Errorf("article types = %d, want %d", got, len(DefaultArticleTypes))
	}
	if got := db.Venues.Len(); got != len(DefaultVenues) {
		t.Errorf("venues = %d, want %d", got, len(DefaultVenues))
	}

	nips, ok := db.Venues.WithAbbreviation("NIPS")
	if !ok {
		t.Fatal("WithAbbreviation(NIPS) not found")
	}
	if nips.Name != "Neural Information Processing Systems" {
		t.Errorf("NIPS name = %q", nips.Name)
	}

	// ids are handed out in insertion order from the sequence table
	poster, _ := db.ArticleTypes.WithName("Poster")
	journal, _ := db.ArticleTypes.WithName("Journal")
	if poster.ID != 1 || journal.ID != 8 {
		t.Errorf("ids = %d, %d; want 1, 8", poster.ID, journal.ID)
	}
}

func TestCreateDB_ReplacesExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := CreateDB(dbPath)
	if err != nil {
		t.Fatalf("CreateDB() error = %v", err)
	}
	if _, err := db.Categories.Add(article.Category{Name: "RL"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	db.Close()

	db, err = CreateDB(dbPath)
	if err != nil {
		t.Fatalf("second CreateDB() error = %v", err)
	}
	defer db.Close()

	if _, ok := db.Categories.WithName("RL"); ok {
		t.Error("CreateDB() kept rows from the replaced database")
	}
}

func TestOpenDB_ReloadsCaches(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := CreateDB(dbPath)
	if err != nil {
		t.Fatalf("CreateDB() error = %v", err)
	}
	added, err := db.Categories.Add(article.Category{Name: "Deep Learning"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	db.Close()

	db, err = OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	got, ok := db.Categories.WithID(added.ID)
	if !ok || got.Name != "Deep Learning" {
		t.Errorf("WithID(%d) = %+v, %v", added.ID, got, ok)
	}

	// the sequence continues rather than restarting
	next, err := db.Categories.Add(article.Category{Name: "Theory"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if next.ID != added.ID+1 {
		t.Errorf("next id = %d, want %d", next.ID, added.ID+1)
	}
}
