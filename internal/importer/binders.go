package importer

import (
	"errors"
	"fmt"

	"github.com/matsen/papercat/internal/article"
	"github.com/matsen/papercat/internal/logger"
	"github.com/matsen/papercat/internal/pdf"
)

// Binder applies one field value to a builder.
type Binder interface {
	Bind(rows RowSet, doc *pdf.Document, b *Builder) error
}

// PropertyBinder runs an extractor and hands the result to a builder
// setter. Extraction errors are scoped to the property.
type PropertyBinder struct {
	Property  string
	Extractor Extractor
	set       func(b *Builder, v any) error
}

func (p PropertyBinder) Bind(rows RowSet, doc *pdf.Document, b *Builder) error {
	v, err := p.Extractor.Extract(rows, doc)
	if err == nil {
		err = p.set(b, v)
	}
	if err == nil {
		return nil
	}

	var ee *ExtractionError
	if errors.As(err, &ee) {
		return &ExtractionError{Property: p.Property, Reason: ee.Reason, Err: ee.Err}
	}
	return &ExtractionError{Property: p.Property, Reason: err.Error(), Err: err}
}

func textBinder(property string, e Extractor, set func(*Builder, string) *Builder) PropertyBinder {
	return PropertyBinder{Property: property, Extractor: e, set: func(b *Builder, v any) error {
		s, err := text(v)
		if err != nil {
			return err
		}
		set(b, s)
		return nil
	}}
}

// TitleBinder sets the title from the text produced by e.
func TitleBinder(e Extractor) PropertyBinder {
	return textBinder("title", e, (*Builder).SetTitle)
}

// AbstractBinder sets the abstract from the text produced by e.
func AbstractBinder(e Extractor) PropertyBinder {
	return textBinder("abstract", e, (*Builder).SetAbstract)
}

// SummaryBinder sets the summary from the text produced by e.
func SummaryBinder(e Extractor) PropertyBinder {
	return textBinder("summary", e, (*Builder).SetSummary)
}

// PriorityBinder coerces the value of e to an integer.
func PriorityBinder(e Extractor) PropertyBinder {
	return PropertyBinder{Property: "priority", Extractor: Int{Source: e}, set: func(b *Builder, v any) error {
		b.SetPriority(v.(int))
		return nil
	}}
}

// IsReadBinder coerces the value of e to a boolean.
func IsReadBinder(e Extractor) PropertyBinder {
	return PropertyBinder{Property: "is_read", Extractor: Bool{Source: e}, set: func(b *Builder, v any) error {
		b.SetIsRead(v.(bool))
		return nil
	}}
}

// ArticleTypeBinder resolves the name produced by e in table.
func ArticleTypeBinder(table NamedTable[article.ArticleType], e Extractor) PropertyBinder {
	lookup := Lookup[article.ArticleType]{Table: table, Source: e, New: func(name string) article.ArticleType {
		return article.ArticleType{Name: name}
	}}
	return PropertyBinder{Property: "article_type", Extractor: lookup, set: func(b *Builder, v any) error {
		t, ok := v.(*article.ArticleType)
		if !ok {
			return fmt.Errorf("unexpected %T for article type", v)
		}
		b.SetArticleType(t)
		return nil
	}}
}

// CategoryBinder resolves the name produced by e in table.
func CategoryBinder(table NamedTable[article.Category], e Extractor) PropertyBinder {
	lookup := Lookup[article.Category]{Table: table, Source: e, New: func(name string) article.Category {
		return article.Category{Name: name}
	}}
	return PropertyBinder{Property: "category", Extractor: lookup, set: func(b *Builder, v any) error {
		c, ok := v.(*article.Category)
		if !ok {
			return fmt.Errorf("unexpected %T for category", v)
		}
		b.SetCategory(c)
		return nil
	}}
}

// AbstractTableBinder sets the abstract from a table keyed by normalized
// title. It must run after the title is bound. A missing entry is logged
// and leaves the abstract empty.
type AbstractTableBinder struct {
	Abstracts map[string]string
	Log       *logger.Logger
}

func (a AbstractTableBinder) Bind(_ RowSet, _ *pdf.Document, b *Builder) error {
	body, ok := a.Abstracts[article.NormalizeTitle(b.Title())]
	if !ok {
		if a.Log != nil {
			a.Log.Warn("Could not find abstract for document", "title", b.Title())
		}
		return nil
	}
	b.SetAbstract(body)
	return nil
}
