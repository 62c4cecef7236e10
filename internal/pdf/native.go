package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeExtractor reads PDFs in-process. It fills the body and takes the
// first substantial line of the first page as the title.
type NativeExtractor struct {
	// MaxPages limits how many pages are read. Zero reads all of them.
	MaxPages int
}

// Extract reads the text of path. A malformed file that makes the PDF
// library panic yields an ExtractionError.
func (e NativeExtractor) Extract(ctx context.Context, path string) (doc Document, err error) {
	defer recoverExtraction(path, &doc, &err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return Document{}, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	maxPages := e.MaxPages
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var body strings.Builder
	for i := 1; i <= maxPages; i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		if i == 1 {
			doc.Title = guessTitle(text)
		}
		body.WriteString(text)
		body.WriteString("\n")
	}

	doc.Body = body.String()
	return doc, nil
}

// recoverExtraction converts a panic raised while reading path into an
// ExtractionError.
func recoverExtraction(path string, doc *Document, err *error) {
	if r := recover(); r != nil {
		*doc = Document{}
		*err = &ExtractionError{Path: path, Err: fmt.Errorf("malformed PDF: %v", r)}
	}
}

// guessTitle returns the first line long enough to be a title.
func guessTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line looks like a running header rather than a title.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	prefixes := []string{
		"arxiv:",
		"preprint",
		"accepted",
		"published",
		"proceedings",
		"conference",
		"workshop",
		"copyright",
		"http",
		"doi:",
	}
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
