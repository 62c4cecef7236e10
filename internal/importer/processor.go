package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matsen/papercat/internal/article"
	"github.com/matsen/papercat/internal/config"
	"github.com/matsen/papercat/internal/logger"
	"github.com/matsen/papercat/internal/pdf"
	"github.com/matsen/papercat/internal/spreadsheet"
	"github.com/matsen/papercat/internal/storage"
)

// GroupResult counts the outcome of processing one document group.
type GroupResult struct {
	Group     string `json:"group"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Failed    int    `json:"failed"`
	Ambiguous int    `json:"ambiguous"`
	Error     string `json:"error,omitempty"`
}

// Imported is the number of rows written to the store.
func (r GroupResult) Imported() int { return r.Inserted + r.Updated }

// ProcessorConfig holds what a Processor needs for one group.
type ProcessorConfig struct {
	Group config.DocumentGroup
	Venue *article.Venue
	Year  int
	Store Store
	// Extractor reads PDFs. Nil means PDFs are located but not read.
	Extractor pdf.Extractor
	// Abstracts maps normalized titles to abstract bodies. It is used when
	// the group's abstract comes from a file.
	Abstracts map[string]string
	Logger    *logger.Logger
}

// Processor imports the rows of one document group.
type Processor struct {
	cfg          ProcessorConfig
	log          *logger.Logger
	downloadedAs Cell
	binders      []Binder
	sheets       []string
}

type saveOutcome int

const (
	inserted saveOutcome = iota
	updated
	ambiguous
)

// NewProcessor builds the binders for cfg.Group.
func NewProcessor(cfg ProcessorConfig) (*Processor, error) {
	g := cfg.Group
	p := &Processor{cfg: cfg, log: cfg.Logger}
	if p.log == nil {
		p.log = logger.Nop()
	}
	p.log = p.log.With("group", g.Name)

	if g.DownloadedAs.Kind != config.SourceSpreadsheet {
		return nil, fmt.Errorf("%s: DownloadedAs must come from a spreadsheet", g.Name)
	}
	sheets := map[string]bool{g.DownloadedAs.Path.Sheet: true}
	p.downloadedAs = Cell{Path: g.DownloadedAs.Path}

	// source returns the extractor for an optional spreadsheet or constant
	// field.
	source := func(s config.Source, def any) Extractor {
		switch s.Kind {
		case config.SourceSpreadsheet:
			sheets[s.Path.Sheet] = true
			return Cell{Path: s.Path, Default: def}
		case config.SourceConstant:
			return Constant{Value: s.Constant}
		default:
			return Constant{Value: def}
		}
	}

	var title Binder
	switch g.Title.Kind {
	case config.SourceSpreadsheet:
		title = TitleBinder(source(g.Title, ""))
	case config.SourceExtracted:
		title = TitleBinder(DocumentTitle)
	default:
		return nil, fmt.Errorf("%s: invalid title source %s", g.Name, g.Title)
	}

	var abstract Binder
	switch g.Abstract.Kind {
	case config.SourceNone:
		abstract = AbstractBinder(Constant{Value: ""})
	case config.SourceSpreadsheet:
		abstract = AbstractBinder(source(g.Abstract, ""))
	case config.SourceExtracted:
		abstract = AbstractBinder(DocumentAbstract)
	case config.SourceFile:
		abstract = AbstractTableBinder{Abstracts: cfg.Abstracts, Log: p.log}
	default:
		return nil, fmt.Errorf("%s: invalid abstract source %s", g.Name, g.Abstract)
	}

	var summary Binder
	switch g.SummaryText.Kind {
	case config.SourceNone:
		summary = SummaryBinder(Constant{Value: ""})
	case config.SourceSpreadsheet:
		summary = SummaryBinder(source(g.SummaryText, ""))
	default:
		return nil, fmt.Errorf("%s: invalid summary source %s", g.Name, g.SummaryText)
	}

	// Title first: the abstract table binder looks up the bound title.
	p.binders = []Binder{
		title,
		abstract,
		PriorityBinder(source(g.Priority, 0)),
		ArticleTypeBinder(cfg.Store.ArticleTypes, source(g.ArticleType, nil)),
		CategoryBinder(cfg.Store.Categories, source(g.Category, nil)),
		summary,
		IsReadBinder(source(g.IsRead, false)),
	}

	for name := range sheets {
		p.sheets = append(p.sheets, name)
	}
	sort.Strings(p.sheets)
	return p, nil
}

// Sheets returns the names of the sheets the group reads.
func (p *Processor) Sheets() []string { return p.sheets }

// Process imports every row of the group's sheets. Row-level problems,
// including a sheet missing from the workbook, are logged and counted.
// Errors reading sheets or writing the store abort the group.
func (p *Processor) Process(ctx context.Context, wb spreadsheet.Workbook) (GroupResult, error) {
	result := GroupResult{Group: p.cfg.Group.Name}

	cursors := make(map[string]spreadsheet.RowIterator, len(p.sheets))
	defer func() {
		for _, it := range cursors {
			it.Close()
		}
	}()
	var missing []string
	for _, name := range p.sheets {
		sheet, err := wb.Sheet(name)
		if errors.Is(err, spreadsheet.ErrNoSuchSheet) {
			p.log.Error("Workbook has no sheet used by document group", "sheet", name)
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return result, err
		}
		it, err := sheet.Rows()
		if err != nil {
			return result, err
		}
		cursors[name] = it
	}

	for index := 2; ; index++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rows, err := nextRows(cursors)
		if err != nil {
			return result, err
		}
		if len(rows) == 0 {
			break
		}
		for _, name := range missing {
			rows[name] = nil
		}

		a := p.buildArticle(ctx, rows, index)
		if a == nil {
			result.Failed++
			continue
		}

		outcome, err := p.save(a)
		if err != nil {
			return result, fmt.Errorf("saving %s from row %d: %w", a, index, err)
		}
		switch outcome {
		case inserted:
			result.Inserted++
		case updated:
			result.Updated++
		case ambiguous:
			result.Ambiguous++
		}
	}
	return result, nil
}

// nextRows advances every cursor. Exhausted cursors are closed and dropped.
func nextRows(cursors map[string]spreadsheet.RowIterator) (RowSet, error) {
	rows := make(RowSet, len(cursors))
	for name, it := range cursors {
		row, err := it.Next()
		if errors.Is(err, spreadsheet.EOF) {
			it.Close()
			delete(cursors, name)
			continue
		}
		if err != nil {
			return nil, err
		}
		rows[name] = row
	}
	return rows, nil
}

// buildArticle returns nil when the row cannot produce an article.
func (p *Processor) buildArticle(ctx context.Context, rows RowSet, index int) *article.Article {
	sheet := p.downloadedAs.Path.Sheet
	rowLog := p.log.With("sheet", sheet, "row", index)

	names := make([]string, 0, len(rows))
	for name := range rows {
		names = append(names, name)
	}
	sort.Strings(names)
	rowLog.Debug("Processing row", "sheets", strings.Join(names, ", "))

	doc := &pdf.Document{}
	var pdfPath string
	downloadedAs, err := p.downloadedAsValue(rows)
	switch {
	case err != nil:
		rowLog.Error("Could not construct article", "error", err.Error())
		return nil
	case downloadedAs == "":
		rowLog.Debug("Row has no downloaded_as value")
	default:
		pdfPath = p.findPDF(downloadedAs)
		if pdfPath == "" {
			rowLog.Error("Could not find PDF file for article", "file", pdfName(downloadedAs))
		} else {
			doc = p.fetchDocument(ctx, rowLog, pdfPath)
		}
	}

	b := NewBuilder(rowLog).
		SetSource(sheet, index).
		SetYear(p.cfg.Year).
		SetVenue(p.cfg.Venue).
		SetDownloadedAs(downloadedAs).
		SetPDFFile(pdfPath).
		SetContent(doc.Body)

	for _, binder := range p.binders {
		if err := binder.Bind(rows, doc, b); err != nil {
			rowLog.Error("Could not construct article", "error", err.Error())
			return nil
		}
	}
	return b.Build()
}

func (p *Processor) downloadedAsValue(rows RowSet) (string, error) {
	v, err := p.downloadedAs.Extract(rows, nil)
	if err != nil {
		return "", &ExtractionError{Property: "downloaded_as", Reason: err.Error(), Err: err}
	}
	s, err := text(v)
	if err != nil {
		return "", &ExtractionError{Property: "downloaded_as", Reason: err.Error(), Err: err}
	}
	return strings.TrimSpace(s), nil
}

func pdfName(downloadedAs string) string {
	if strings.HasSuffix(downloadedAs, ".pdf") {
		return downloadedAs
	}
	return downloadedAs + ".pdf"
}

// findPDF returns the first content directory match, or "".
func (p *Processor) findPDF(downloadedAs string) string {
	name := pdfName(downloadedAs)
	for _, dir := range p.cfg.Group.ContentDirs {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// fetchDocument falls back to an empty document on any failure.
func (p *Processor) fetchDocument(ctx context.Context, log *logger.Logger, path string) *pdf.Document {
	if p.cfg.Extractor == nil {
		log.Debug("Document not loaded because no extractor is configured", "path", path)
		return &pdf.Document{}
	}
	log.Debug("Loading document", "path", path)
	doc, err := p.cfg.Extractor.Extract(ctx, path)
	if err != nil {
		log.Error("Could not extract document", "path", path, "error", err.Error())
		return &pdf.Document{}
	}
	return &doc
}

// save inserts a, or merges it into the one stored article with the same
// normalized title, year and venue.
func (p *Processor) save(a *article.Article) (saveOutcome, error) {
	nt := a.NormalizedTitle()
	p.log.Debug("Saving article", "normalized_title", nt)

	existing, err := p.cfg.Store.Articles.Retrieve(storage.Criteria{
		"normalized_title": nt,
		"year":             a.Year,
		"venue":            a.Venue,
	})
	if err != nil {
		return 0, err
	}

	switch len(existing) {
	case 0:
		p.log.Debug("Writing new article")
		if _, err := p.cfg.Store.Articles.Add(a); err != nil {
			return 0, err
		}
		return inserted, nil
	case 1:
		p.log.Debug("Updating existing article", "id", existing[0].ID)
		target := existing[0]
		target.Merge(a)
		if err := p.cfg.Store.Articles.Update(&target); err != nil {
			return 0, err
		}
		return updated, nil
	default:
		p.log.Error("Found several articles with the same normalized title; the article was not updated. Please investigate.",
			"count", len(existing), "venue", a.Venue.Abbreviation, "year", a.Year, "normalized_title", nt)
		return ambiguous, nil
	}
}
