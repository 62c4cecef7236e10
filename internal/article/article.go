// Package article defines the core domain types for cataloged articles.
package article

import (
	"fmt"
	"time"
)

// ArticleType is a named kind of article (Poster, Oral, Journal, ...).
type ArticleType struct {
	ID   int64  `json:"id"` // 0 until assigned by the store
	Name string `json:"name"`
}

// Category is a named subject area (Deep Learning, Architecture, ...).
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Venue is a conference or journal. Abbreviation is unique and is what
// import configurations refer to.
type Venue struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Article represents a cataloged paper.
type Article struct {
	// Identity (assigned by the store, never by the importer)
	ID int64 `json:"id"`

	// Bibliographic
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Content  string `json:"content,omitempty"` // Full text extracted from the PDF
	Year     int    `json:"year"`

	// References to enumerated entities. ArticleType and Category are optional.
	ArticleType *ArticleType `json:"article_type,omitempty"`
	Category    *Category    `json:"category,omitempty"`
	Venue       *Venue       `json:"venue"`

	// Files
	DownloadedAs string `json:"downloaded_as,omitempty"` // PDF filename stem
	PDFFile      string `json:"pdf_file,omitempty"`

	// Workflow
	Priority int    `json:"priority"`
	Summary  string `json:"summary,omitempty"`
	IsRead   bool   `json:"is_read"`

	// Timestamps
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	LastIndexedAt *time.Time `json:"last_indexed_at,omitempty"`
}

func (a *Article) String() string {
	venue := ""
	if a.Venue != nil {
		venue = a.Venue.Abbreviation
	}
	return fmt.Sprintf("Article(%s, %s %d)", a.Title, venue, a.Year)
}

// NormalizedTitle returns the deduplication key for the article's title.
func (a *Article) NormalizedTitle() string {
	return NormalizeTitle(a.Title)
}

// Merge copies the mutable fields of src onto a. Identity, year, venue and
// creation time are kept. Empty strings and nil references in src do not
// clear values already present on a.
func (a *Article) Merge(src *Article) {
	mergeString(&a.Title, src.Title)
	mergeString(&a.Abstract, src.Abstract)
	mergeString(&a.Content, src.Content)
	mergeString(&a.DownloadedAs, src.DownloadedAs)
	mergeString(&a.PDFFile, src.PDFFile)
	mergeString(&a.Summary, src.Summary)
	if src.ArticleType != nil {
		a.ArticleType = src.ArticleType
	}
	if src.Category != nil {
		a.Category = src.Category
	}
	a.Priority = src.Priority
	a.IsRead = src.IsRead
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
