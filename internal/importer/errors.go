// Package importer loads articles from spreadsheets, PDFs and abstract
// files into the store.
package importer

import (
	"errors"
	"fmt"
)

// ErrUnknownVenue is returned when the configured venue abbreviation is not
// in the store.
var ErrUnknownVenue = errors.New("unknown venue")

// ExtractionError reports a field value that could not be produced. It is
// scoped to one row.
type ExtractionError struct {
	Property string // set once a binder has scoped the error
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("Failed to extract value for %s: %s", e.Property, e.Reason)
	}
	return e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func extractionErrorf(format string, args ...any) *ExtractionError {
	return &ExtractionError{Reason: fmt.Sprintf(format, args...)}
}
