package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/papercat/internal/article"
)

// articleColumns lists the articles table columns in SELECT/INSERT order.
var articleColumns = []string{
	"id", "title", "normalized_title", "abstract", "content",
	"year", "priority", "downloaded_as", "pdf_file",
	"summary", "is_read",
	"created_at", "last_updated_at", "last_indexed_at",
	"article_type_id", "category_id", "venue_id",
}

var selectArticleFields = strings.Join(articleColumns, ", ")

// referenceColumns maps entity-valued criteria keys to their id columns.
var referenceColumns = map[string]string{
	"article_type": "article_type_id",
	"category":     "category_id",
	"venue":        "venue_id",
}

// ArticleTable reads and writes articles.
type ArticleTable struct {
	d *DB
}

// Retrieve returns the articles matching criteria, in id order.
//
// Besides plain columns, criteria may use "article_type", "category" and
// "venue" with an entity value (or slice of them) in place of the matching
// _id column.
func (t *ArticleTable) Retrieve(criteria Criteria) ([]article.Article, error) {
	where, args, err := t.where(criteria)
	if err != nil {
		return nil, err
	}

	rows, err := t.d.db.Query(`SELECT `+selectArticleFields+` FROM articles`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("retrieving articles: %w", err)
	}
	defer rows.Close()

	var articles []article.Article
	for rows.Next() {
		a, err := t.scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// Count returns the number of articles matching criteria.
func (t *ArticleTable) Count(criteria Criteria) (int, error) {
	where, args, err := t.where(criteria)
	if err != nil {
		return 0, err
	}
	var count int
	if err := t.d.db.QueryRow(`SELECT COUNT(*) FROM articles`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return count, nil
}

// WithID retrieves an article by its id. Returns nil if there is none.
func (t *ArticleTable) WithID(id int64) (*article.Article, error) {
	row := t.d.db.QueryRow(`SELECT `+selectArticleFields+` FROM articles WHERE id = ?`, id)
	a, err := t.scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Add inserts a new article and returns it as stored, with its id and
// timestamps assigned.
func (t *ArticleTable) Add(a *article.Article) (*article.Article, error) {
	if a.ID != 0 {
		return nil, fmt.Errorf("adding article %q with id %d: %w", a.Title, a.ID, ErrHasID)
	}

	now := t.d.now()
	values := *a
	if values.CreatedAt.IsZero() {
		values.CreatedAt = now
	}
	values.LastUpdatedAt = now

	var id int64
	err := t.d.withTx(func(tx *sql.Tx) error {
		var err error
		if id, err = nextID(tx, "articles"); err != nil {
			return err
		}
		values.ID = id
		_, err = tx.Exec(`INSERT INTO articles (`+selectArticleFields+`) VALUES (`+
			placeholders(len(articleColumns))+`)`, articleArgs(&values)...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("adding article %q: %w", a.Title, err)
	}
	return t.WithID(id)
}

// Update rewrites an existing article and refreshes its last-updated time.
func (t *ArticleTable) Update(a *article.Article) error {
	if a.ID == 0 {
		return fmt.Errorf("updating article %q: %w", a.Title, ErrNoID)
	}

	values := *a
	values.LastUpdatedAt = t.d.now()
	args := articleArgs(&values)

	var sets []string
	for _, c := range articleColumns[1:] {
		sets = append(sets, c+" = ?")
	}
	res, err := t.d.db.Exec(`UPDATE articles SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		append(args[1:], a.ID)...)
	if err != nil {
		return fmt.Errorf("updating article %d: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating article %d: %w", a.ID, ErrNotFound)
	}
	a.LastUpdatedAt = time.Unix(values.LastUpdatedAt.Unix(), 0)
	return nil
}

// Delete removes the article with the given id.
func (t *ArticleTable) Delete(id int64) error {
	if _, err := t.d.db.Exec(`DELETE FROM articles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting article %d: %w", id, err)
	}
	return nil
}

// NeedReindexing returns the ids of articles that were never indexed or were
// updated after they were last indexed.
func (t *ArticleTable) NeedReindexing() ([]int64, error) {
	rows, err := t.d.db.Query(`SELECT id FROM articles
		WHERE last_indexed_at IS NULL OR last_indexed_at < last_updated_at
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing articles to reindex: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkIndexed records that the article was indexed at the given time.
func (t *ArticleTable) MarkIndexed(id int64, at time.Time) error {
	res, err := t.d.db.Exec(`UPDATE articles SET last_indexed_at = ? WHERE id = ?`, at.Unix(), id)
	if err != nil {
		return fmt.Errorf("marking article %d indexed: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("marking article %d indexed: %w", id, ErrNotFound)
	}
	return nil
}

// countColumn returns a reference counter for an enumerated id column.
func (t *ArticleTable) countColumn(column string) func(id int64) (int, error) {
	return func(id int64) (int, error) {
		return t.Count(Criteria{column: id})
	}
}

func (t *ArticleTable) where(criteria Criteria) (string, []any, error) {
	normalized, err := normalizeArticleCriteria(criteria)
	if err != nil {
		return "", nil, err
	}
	return buildWhere(normalized, articleColumns)
}

// normalizeArticleCriteria rewrites entity-valued keys into id columns.
func normalizeArticleCriteria(criteria Criteria) (Criteria, error) {
	out := make(Criteria, len(criteria))
	for name, value := range criteria {
		column, isRef := referenceColumns[name]
		if !isRef {
			out[name] = value
			continue
		}
		if _, dup := criteria[column]; dup {
			return nil, fmt.Errorf("%w: cannot specify %q and %q together", ErrInvalidCriteria, name, column)
		}
		ids, err := referenceIDs(name, value)
		if err != nil {
			return nil, err
		}
		out[column] = ids
	}
	return out, nil
}

func referenceIDs(name string, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case article.Venue:
		return v.ID, nil
	case *article.Venue:
		return v.ID, nil
	case []article.Venue:
		return collectIDs(v, func(x article.Venue) int64 { return x.ID }), nil
	case article.Category:
		return v.ID, nil
	case *article.Category:
		return v.ID, nil
	case []article.Category:
		return collectIDs(v, func(x article.Category) int64 { return x.ID }), nil
	case article.ArticleType:
		return v.ID, nil
	case *article.ArticleType:
		return v.ID, nil
	case []article.ArticleType:
		return collectIDs(v, func(x article.ArticleType) int64 { return x.ID }), nil
	default:
		return nil, fmt.Errorf("%w: %q must be an entity or a slice of entities, got %T",
			ErrInvalidCriteria, name, value)
	}
}

func collectIDs[T any](items []T, id func(T) int64) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = id(item)
	}
	return ids
}

func articleArgs(a *article.Article) []any {
	var typeID, categoryID, venueID int64
	if a.ArticleType != nil {
		typeID = a.ArticleType.ID
	}
	if a.Category != nil {
		categoryID = a.Category.ID
	}
	if a.Venue != nil {
		venueID = a.Venue.ID
	}
	var indexedAt sql.NullInt64
	if a.LastIndexedAt != nil {
		indexedAt = sql.NullInt64{Int64: a.LastIndexedAt.Unix(), Valid: true}
	}

	return []any{
		a.ID, a.Title, article.NormalizeTitle(a.Title),
		nullableStringValue(a.Abstract), nullableStringValue(a.Content),
		a.Year, a.Priority,
		nullableStringValue(a.DownloadedAs), nullableStringValue(a.PDFFile),
		nullableStringValue(a.Summary), sqlValue(a.IsRead),
		a.CreatedAt.Unix(), a.LastUpdatedAt.Unix(), indexedAt,
		nullableID(typeID), nullableID(categoryID), venueID,
	}
}

func (t *ArticleTable) scanArticle(s scanner) (*article.Article, error) {
	var a article.Article
	var normalizedTitle string
	var abstract, content, downloadedAs, pdfFile, summary sql.NullString
	var priority, indexedAt, typeID, categoryID sql.NullInt64
	var isRead int
	var createdAt, updatedAt, venueID int64

	err := s.Scan(
		&a.ID, &a.Title, &normalizedTitle, &abstract, &content,
		&a.Year, &priority, &downloadedAs, &pdfFile,
		&summary, &isRead,
		&createdAt, &updatedAt, &indexedAt,
		&typeID, &categoryID, &venueID,
	)
	if err != nil {
		return nil, err
	}

	a.Abstract = abstract.String
	a.Content = content.String
	a.DownloadedAs = downloadedAs.String
	a.PDFFile = pdfFile.String
	a.Summary = summary.String
	a.Priority = int(priority.Int64)
	a.IsRead = isRead != 0
	a.CreatedAt = time.Unix(createdAt, 0)
	a.LastUpdatedAt = time.Unix(updatedAt, 0)
	if indexedAt.Valid {
		ts := time.Unix(indexedAt.Int64, 0)
		a.LastIndexedAt = &ts
	}

	if typeID.Valid {
		if at, ok := t.d.ArticleTypes.WithID(typeID.Int64); ok {
			a.ArticleType = &at
		}
	}
	if categoryID.Valid {
		if c, ok := t.d.Categories.WithID(categoryID.Int64); ok {
			a.Category = &c
		}
	}
	v, ok := t.d.Venues.WithID(venueID)
	if !ok {
		return nil, fmt.Errorf("article %d references unknown venue %d", a.ID, venueID)
	}
	a.Venue = &v

	return &a, nil
}
