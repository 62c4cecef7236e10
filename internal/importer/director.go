package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/matsen/papercat/internal/abstracts"
	"github.com/matsen/papercat/internal/article"
	"github.com/matsen/papercat/internal/config"
	"github.com/matsen/papercat/internal/logger"
	"github.com/matsen/papercat/internal/spreadsheet"
)

// Summary totals an import run.
type Summary struct {
	Groups    []GroupResult `json:"groups"`
	Imported  int           `json:"imported"`
	Inserted  int           `json:"inserted"`
	Updated   int           `json:"updated"`
	Failed    int           `json:"failed"`
	Ambiguous int           `json:"ambiguous"`
}

func (s *Summary) add(r GroupResult) {
	s.Groups = append(s.Groups, r)
	s.Imported += r.Imported()
	s.Inserted += r.Inserted
	s.Updated += r.Updated
	s.Failed += r.Failed
	s.Ambiguous += r.Ambiguous
}

// Director runs every document group of a configuration.
type Director struct {
	cfg      *config.Configuration
	store    Store
	registry *Registry
	log      *logger.Logger
	venue    article.Venue
}

// NewDirector resolves the configured venue. It fails with ErrUnknownVenue
// before anything is imported.
func NewDirector(cfg *config.Configuration, store Store, registry *Registry, log *logger.Logger) (*Director, error) {
	if log == nil {
		log = logger.Nop()
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	venue, ok := store.Venues.WithAbbreviation(cfg.Venue)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownVenue, cfg.Venue)
	}
	return &Director{cfg: cfg, store: store, registry: registry, log: log, venue: venue}, nil
}

// Venue returns the resolved venue.
func (d *Director) Venue() article.Venue { return d.venue }

// Run imports each group in order. A group that fails is reported in the
// summary and in the returned error; later groups still run.
func (d *Director) Run(ctx context.Context, wb spreadsheet.Workbook) (Summary, error) {
	var summary Summary
	var errs []error
	for _, g := range d.cfg.Groups {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		d.log.Info("Importing document group", "group", g.Name)

		result, err := d.runGroup(ctx, g, wb)
		if err != nil {
			err = fmt.Errorf("document group %s: %w", g.Name, err)
			result.Error = err.Error()
			d.log.Error("Document group failed", "group", g.Name, "error", err.Error())
			errs = append(errs, err)
		}
		d.log.Info("Loaded articles", "group", g.Name, "imported", result.Imported(),
			"failed", result.Failed, "ambiguous", result.Ambiguous)
		summary.add(result)
	}

	d.log.Info("Imported articles", "imported", summary.Imported, "groups", len(d.cfg.Groups),
		"failed", summary.Failed, "ambiguous", summary.Ambiguous)
	return summary, errors.Join(errs...)
}

func (d *Director) runGroup(ctx context.Context, g config.DocumentGroup, wb spreadsheet.Workbook) (GroupResult, error) {
	result := GroupResult{Group: g.Name}

	var table map[string]string
	if g.Abstract.Kind == config.SourceFile {
		var err error
		if table, err = d.loadAbstracts(g.AbstractsReader, g.AbstractsFile); err != nil {
			return result, err
		}
	}

	pc := ProcessorConfig{
		Group:     g,
		Venue:     &d.venue,
		Year:      d.cfg.Year,
		Store:     d.store,
		Abstracts: table,
		Logger:    d.log,
	}
	if g.Extractor != "" {
		e, ok := d.registry.Extractor(g.Extractor)
		if !ok {
			return result, fmt.Errorf("unknown document extractor %q", g.Extractor)
		}
		pc.Extractor = e
	}

	p, err := NewProcessor(pc)
	if err != nil {
		return result, err
	}
	return p.Process(ctx, wb)
}

// loadAbstracts reads an abstracts file into a table of bodies keyed by
// normalized title.
func (d *Director) loadAbstracts(reader, file string) (map[string]string, error) {
	g, ok := d.registry.Reader(reader)
	if !ok {
		return nil, fmt.Errorf("unknown abstracts file reader %q", reader)
	}
	records, err := abstracts.LoadTable(abstracts.ReadFile(file, g))
	if err != nil {
		return nil, err
	}
	table := make(map[string]string, len(records))
	for key, a := range records {
		table[key] = a.Body
	}
	d.log.Info("Loaded abstracts", "file", file, "reader", reader, "count", len(table))
	return table, nil
}
