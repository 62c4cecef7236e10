package config

import (
	"fmt"

	"github.com/matsen/papercat/internal/spreadsheet"
)

// SourceKind says where a field's value comes from.
type SourceKind int

const (
	// SourceNone means the field was not configured.
	SourceNone SourceKind = iota
	// SourceConstant is a literal value from the configuration.
	SourceConstant
	// SourceSpreadsheet is a cell of the current row.
	SourceSpreadsheet
	// SourceExtracted is a field of the document extracted from the PDF.
	SourceExtracted
	// SourceFile is the abstracts side-channel file.
	SourceFile
)

const (
	extractedToken = "extracted"
	fileToken      = "file"
)

// Source is the configured origin of one article field.
type Source struct {
	Kind     SourceKind
	Constant string
	Path     spreadsheet.Path
}

// IsSet reports whether the field was configured.
func (s Source) IsSet() bool { return s.Kind != SourceNone }

func (s Source) String() string {
	switch s.Kind {
	case SourceConstant:
		return fmt.Sprintf("%q", s.Constant)
	case SourceSpreadsheet:
		return s.Path.String()
	case SourceExtracted:
		return extractedToken
	case SourceFile:
		return fileToken
	default:
		return "none"
	}
}
