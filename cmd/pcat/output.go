package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/papercat/internal/article"
)

// ListTitleMaxLen is the title width in human list output.
const ListTitleMaxLen = 60

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ArticleSummary is an article as shown by list: no full text.
type ArticleSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Venue       string `json:"venue"`
	ArticleType string `json:"article_type,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    int    `json:"priority"`
	IsRead      bool   `json:"is_read"`
	PDFFile     string `json:"pdf_file,omitempty"`
}

func summarize(a article.Article) ArticleSummary {
	s := ArticleSummary{
		ID:       a.ID,
		Title:    a.Title,
		Year:     a.Year,
		Priority: a.Priority,
		IsRead:   a.IsRead,
		PDFFile:  a.PDFFile,
	}
	if a.Venue != nil {
		s.Venue = a.Venue.Abbreviation
	}
	if a.ArticleType != nil {
		s.ArticleType = a.ArticleType.Name
	}
	if a.Category != nil {
		s.Category = a.Category.Name
	}
	return s
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
