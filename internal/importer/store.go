package importer

import (
	"github.com/matsen/papercat/internal/article"
	"github.com/matsen/papercat/internal/storage"
)

// ArticleStore is the article table as the importer uses it.
type ArticleStore interface {
	Retrieve(criteria storage.Criteria) ([]article.Article, error)
	Add(a *article.Article) (*article.Article, error)
	Update(a *article.Article) error
}

// VenueLookup resolves configured venue abbreviations.
type VenueLookup interface {
	WithAbbreviation(abbreviation string) (article.Venue, bool)
}

// Store groups the tables an import reads and writes.
type Store struct {
	ArticleTypes NamedTable[article.ArticleType]
	Categories   NamedTable[article.Category]
	Venues       VenueLookup
	Articles     ArticleStore
}

// StoreFor returns the tables of db.
func StoreFor(db *storage.DB) Store {
	return Store{
		ArticleTypes: db.ArticleTypes,
		Categories:   db.Categories,
		Venues:       db.Venues,
		Articles:     db.Articles,
	}
}
