package importer

import (
	"strings"

	"github.com/matsen/papercat/internal/article"
	"github.com/matsen/papercat/internal/logger"
)

// Builder accumulates the fields of one article. Setters return the
// builder for chaining.
type Builder struct {
	log *logger.Logger

	title        string
	abstract     string
	content      string
	year         int
	priority     int
	downloadedAs string
	pdfFile      string
	articleType  *article.ArticleType
	category     *article.Category
	venue        *article.Venue
	summary      string
	isRead       bool

	sheet string
	row   int
}

// NewBuilder returns an empty builder that reports missing fields to log.
func NewBuilder(log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{log: log}
}

// SetSource records the spreadsheet position used in error messages.
func (b *Builder) SetSource(sheet string, row int) *Builder {
	b.sheet, b.row = sheet, row
	return b
}

func (b *Builder) SetTitle(v string) *Builder                     { b.title = v; return b }
func (b *Builder) SetAbstract(v string) *Builder                  { b.abstract = v; return b }
func (b *Builder) SetContent(v string) *Builder                   { b.content = v; return b }
func (b *Builder) SetYear(v int) *Builder                         { b.year = v; return b }
func (b *Builder) SetPriority(v int) *Builder                     { b.priority = v; return b }
func (b *Builder) SetDownloadedAs(v string) *Builder              { b.downloadedAs = v; return b }
func (b *Builder) SetPDFFile(v string) *Builder                   { b.pdfFile = v; return b }
func (b *Builder) SetArticleType(v *article.ArticleType) *Builder { b.articleType = v; return b }
func (b *Builder) SetCategory(v *article.Category) *Builder       { b.category = v; return b }
func (b *Builder) SetVenue(v *article.Venue) *Builder             { b.venue = v; return b }
func (b *Builder) SetSummary(v string) *Builder                   { b.summary = v; return b }
func (b *Builder) SetIsRead(v bool) *Builder                      { b.isRead = v; return b }

// Title returns the title bound so far.
func (b *Builder) Title() string { return b.title }

// Build returns the article, or nil after logging an error when title,
// year or venue is missing.
func (b *Builder) Build() *article.Article {
	var missing []string
	if b.title == "" {
		missing = append(missing, "title")
	}
	if b.year == 0 {
		missing = append(missing, "year")
	}
	if b.venue == nil {
		missing = append(missing, "venue")
	}
	if len(missing) > 0 {
		b.log.Error("Could not create article because required fields are missing",
			"sheet", b.sheet, "row", b.row, "missing", strings.Join(missing, ", "))
		return nil
	}

	return &article.Article{
		Title:        b.title,
		Abstract:     b.abstract,
		Content:      b.content,
		Year:         b.year,
		Priority:     b.priority,
		DownloadedAs: b.downloadedAs,
		PDFFile:      b.pdfFile,
		ArticleType:  b.articleType,
		Category:     b.category,
		Venue:        b.venue,
		Summary:      b.summary,
		IsRead:       b.isRead,
	}
}
