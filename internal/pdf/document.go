// Package pdf extracts text documents from PDF files.
package pdf

import (
	"context"
	"fmt"
	"strings"
)

// Document is the text pulled out of one PDF. Extractors fill only the
// fields they can recover.
type Document struct {
	Title    string
	Authors  []string
	Abstract string
	Body     string
}

// IsEmpty reports whether no field was recovered.
func (d Document) IsEmpty() bool {
	return d.Title == "" && len(d.Authors) == 0 && d.Abstract == "" && d.Body == ""
}

// Extractor turns a PDF file into a Document.
type Extractor interface {
	Extract(ctx context.Context, path string) (Document, error)
}

// ExtractionError is returned when an external extraction tool fails.
type ExtractionError struct {
	Path     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extracting text from %s failed", e.Path)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }
