package importer

import (
	"sort"

	"github.com/matsen/papercat/internal/abstracts"
	"github.com/matsen/papercat/internal/pdf"
)

// Names of the built-in document extractors.
const (
	DefaultPDFExtractor = "default_pdf"
	NativePDFExtractor  = "native_pdf"
)

// ExtractorFactory creates a document extractor for one import group.
type ExtractorFactory func() pdf.Extractor

// Registry maps configuration names to abstract-file grammars and document
// extractors.
type Registry struct {
	readers    map[string]abstracts.Grammar
	extractors map[string]ExtractorFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		readers:    make(map[string]abstracts.Grammar),
		extractors: make(map[string]ExtractorFactory),
	}
}

// DefaultRegistry registers the nips and numbered abstract grammars, the
// pdftotext extractor (configured by opts) and the native extractor.
func DefaultRegistry(opts ...pdf.PdftotextOption) *Registry {
	r := NewRegistry()
	r.RegisterReader(abstracts.NIPS)
	r.RegisterReader(abstracts.Numbered)
	r.RegisterExtractor(DefaultPDFExtractor, func() pdf.Extractor {
		return pdf.NewPdftotextExtractor(opts...)
	})
	r.RegisterExtractor(NativePDFExtractor, func() pdf.Extractor {
		return pdf.NativeExtractor{}
	})
	return r
}

// RegisterReader adds or replaces an abstract-file grammar.
func (r *Registry) RegisterReader(g abstracts.Grammar) {
	r.readers[g.Name] = g
}

// RegisterExtractor adds or replaces a document extractor.
func (r *Registry) RegisterExtractor(name string, f ExtractorFactory) {
	r.extractors[name] = f
}

// HasAbstractReader reports whether an abstract-file grammar is registered
// under name.
func (r *Registry) HasAbstractReader(name string) bool {
	_, ok := r.readers[name]
	return ok
}

// HasExtractor reports whether a document extractor is registered under name.
func (r *Registry) HasExtractor(name string) bool {
	_, ok := r.extractors[name]
	return ok
}

// Reader returns the grammar registered under name.
func (r *Registry) Reader(name string) (abstracts.Grammar, bool) {
	g, ok := r.readers[name]
	return g, ok
}

// Extractor creates the extractor registered under name.
func (r *Registry) Extractor(name string) (pdf.Extractor, bool) {
	f, ok := r.extractors[name]
	if !ok {
		return nil, false
	}
	return f(), true
}

// ExtractorNames returns the registered extractor names in sorted order.
func (r *Registry) ExtractorNames() []string {
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
