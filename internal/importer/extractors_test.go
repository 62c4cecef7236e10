package importer

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/papercat/internal/article"
	"github.com/matsen/papercat/internal/pdf"
	"github.com/matsen/papercat/internal/spreadsheet"
	"github.com/matsen/papercat/internal/storage"
)

func testRows(values ...any) RowSet {
	columns := []string{"TITLE", "VALUE"}
	return RowSet{"Papers": spreadsheet.NewRow(columns, nil, values, 2)}
}

func TestConstantAndDocumentField(t *testing.T) {
	doc := &pdf.Document{Title: "Cows Are Cool", Abstract: "Moo.", Body: "Full text"}

	if v, _ := (Constant{Value: 7}).Extract(nil, doc); v != 7 {
		t.Errorf("Constant = %v, want 7", v)
	}
	if v, _ := DocumentTitle.Extract(nil, doc); v != "Cows Are Cool" {
		t.Errorf("DocumentTitle = %v", v)
	}
	if v, _ := DocumentAbstract.Extract(nil, doc); v != "Moo." {
		t.Errorf("DocumentAbstract = %v", v)
	}
	if v, _ := DocumentTitle.Extract(nil, nil); v != "" {
		t.Errorf("DocumentTitle on nil document = %v, want empty", v)
	}
	if _, err := DocumentField("body").Extract(nil, doc); err == nil {
		t.Error("expected error for unsupported document field")
	}
}

func TestCell(t *testing.T) {
	rows := testRows("Cows Are Cool")
	path := spreadsheet.Path{Sheet: "Papers", Column: "TITLE"}

	if v, err := (Cell{Path: path, Default: "x"}).Extract(rows, nil); err != nil || v != "Cows Are Cool" {
		t.Errorf("Cell = %v, %v", v, err)
	}

	// Empty cell and exhausted sheet both give the default.
	empty := spreadsheet.Path{Sheet: "Papers", Column: "VALUE"}
	if v, _ := (Cell{Path: empty, Default: 0}).Extract(rows, nil); v != 0 {
		t.Errorf("empty cell = %v, want default", v)
	}
	gone := spreadsheet.Path{Sheet: "Summaries", Column: "TITLE"}
	if v, _ := (Cell{Path: gone, Default: "none"}).Extract(rows, nil); v != "none" {
		t.Errorf("exhausted sheet = %v, want default", v)
	}

	missing := spreadsheet.Path{Sheet: "Papers", Column: "NOPE"}
	_, err := (Cell{Path: missing}).Extract(rows, nil)
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if !errors.Is(err, spreadsheet.ErrNoSuchColumn) {
		t.Errorf("error should wrap ErrNoSuchColumn: %v", err)
	}

	// A sheet the workbook lacks is present in the row set as nil.
	rows["Summaries"] = nil
	_, err = (Cell{Path: gone, Default: "none"}).Extract(rows, nil)
	if !errors.As(err, &ee) || ee.Reason != "Workbook has no sheet named Summaries" {
		t.Errorf("missing sheet error = %v", err)
	}
	if !errors.Is(err, spreadsheet.ErrNoSuchSheet) {
		t.Errorf("error should wrap ErrNoSuchSheet: %v", err)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		value   any
		want    bool
		wantErr bool
	}{
		{"y", true, false},
		{"YES", true, false},
		{"True", true, false},
		{"t", true, false},
		{" yes ", true, false},
		{"", false, false},
		{"n", false, false},
		{"No", false, false},
		{"FALSE", false, false},
		{"f", false, false},
		{int64(1), true, false},
		{int64(0), false, false},
		{2.5, true, false},
		{0.0, false, false},
		{true, true, false},
		{nil, false, false},
		{"maybe", false, true},
		{[]string{"y"}, false, true},
	}

	for _, tt := range tests {
		got, err := Bool{Source: Constant{Value: tt.value}}.Extract(nil, nil)
		if (err != nil) != tt.wantErr {
			t.Errorf("Bool(%#v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			var ee *ExtractionError
			if !errors.As(err, &ee) {
				t.Errorf("Bool(%#v) error = %T, want *ExtractionError", tt.value, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("Bool(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestBool_TruncatesLongValues(t *testing.T) {
	_, err := Bool{Source: Constant{Value: "this is definitely not a boolean"}}.Extract(nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	want := `Cannot convert value "this is definitel..." to a boolean`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		value   any
		want    int
		wantErr string
	}{
		{"100", 100, ""},
		{" 42 ", 42, ""},
		{int64(7), 7, ""},
		{3, 3, ""},
		{1.0, 1, ""},
		{1.5, 0, "lose precision"},
		{float64(1 << 53), 1 << 53, ""},
		{1e20, 0, "lose precision"},
		{-1e20, 0, "lose precision"},
		{math.Inf(1), 0, "lose precision"},
		{math.NaN(), 0, "lose precision"},
		{"abc", 0, `Cannot convert "abc" to an integer`},
		{"12345678901234567890x", 0, `Cannot convert "12345678901234567..." to an integer`},
		{true, 0, "Cannot convert value of type bool to an integer"},
		{nil, 0, "Cannot convert value of type <nil> to an integer"},
	}

	for _, tt := range tests {
		got, err := Int{Source: Constant{Value: tt.value}}.Extract(nil, nil)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Int(%#v) error = %v, want %q", tt.value, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Int(%#v) unexpected error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Int(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short"); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate(strings.Repeat("a", 20)); got != strings.Repeat("a", 20) {
		t.Errorf("20 characters should not be truncated, got %q", got)
	}
	if got := truncate(strings.Repeat("é", 25)); got != strings.Repeat("é", 17)+"..." {
		t.Errorf("truncate(multibyte) = %q", got)
	}
}

func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.CreateDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("CreateDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLookup_Autocreate(t *testing.T) {
	db := setupTestDB(t)
	lookup := Lookup[article.Category]{
		Table:  db.Categories,
		Source: Constant{Value: "Deep Learning"},
		New:    func(name string) article.Category { return article.Category{Name: name} },
	}

	first, err := lookup.Extract(nil, nil)
	if err != nil {
		t.Fatalf("first Extract failed: %v", err)
	}
	second, err := lookup.Extract(nil, nil)
	if err != nil {
		t.Fatalf("second Extract failed: %v", err)
	}

	a, b := first.(*article.Category), second.(*article.Category)
	if a.ID == 0 || a.ID != b.ID {
		t.Errorf("ids = %d, %d, want the same non-zero id", a.ID, b.ID)
	}
	if db.Categories.Len() != 1 {
		t.Errorf("Categories.Len() = %d, want 1", db.Categories.Len())
	}
}

func TestLookup_Existing(t *testing.T) {
	db := setupTestDB(t)
	lookup := Lookup[article.ArticleType]{
		Table:  db.ArticleTypes,
		Source: Constant{Value: "Oral"},
		New:    func(name string) article.ArticleType { return article.ArticleType{Name: name} },
	}
	before := db.ArticleTypes.Len()

	v, err := lookup.Extract(nil, nil)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	seeded, _ := db.ArticleTypes.WithName("Oral")
	if got := v.(*article.ArticleType); got.ID != seeded.ID {
		t.Errorf("ID = %d, want seeded %d", got.ID, seeded.ID)
	}
	if db.ArticleTypes.Len() != before {
		t.Error("lookup of an existing name should not add a row")
	}
}

func TestLookup_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	for _, value := range []any{nil, "", "   "} {
		lookup := Lookup[article.Category]{
			Table:  db.Categories,
			Source: Constant{Value: value},
			New:    func(name string) article.Category { return article.Category{Name: name} },
		}
		v, err := lookup.Extract(nil, nil)
		if err != nil {
			t.Fatalf("Extract(%#v) failed: %v", value, err)
		}
		if v.(*article.Category) != nil {
			t.Errorf("Extract(%#v) = %v, want nil", value, v)
		}
	}
	if db.Categories.Len() != 0 {
		t.Errorf("empty names should not create categories")
	}
}

type failingTable struct{}

func (failingTable) WithName(string) (article.Category, bool) { return article.Category{}, false }
func (failingTable) Add(article.Category) (article.Category, error) {
	return article.Category{}, errors.New("database is locked")
}

func TestLookup_StoreError(t *testing.T) {
	lookup := Lookup[article.Category]{
		Table:  failingTable{},
		Source: Constant{Value: "Robotics"},
		New:    func(name string) article.Category { return article.Category{Name: name} },
	}
	_, err := lookup.Extract(nil, nil)
	var ee *ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if !strings.Contains(ee.Reason, "database is locked") {
		t.Errorf("Reason = %q", ee.Reason)
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"abc", "abc"},
		{int64(1234), "1234"},
		{2.5, "2.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		got, err := text(tt.value)
		if err != nil || got != tt.want {
			t.Errorf("text(%#v) = %q, %v, want %q", tt.value, got, err, tt.want)
		}
	}
	if _, err := text(struct{}{}); err == nil {
		t.Error("expected error for struct value")
	}
}
