package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestPDF writes a one-page PDF showing the given lines.
func writeTestPDF(t *testing.T, lines ...string) string {
	t.Helper()

	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 72 720 Td 14 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", line)
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing pdf: %v", err)
	}
	return path
}

func TestNativeExtractor(t *testing.T) {
	path := writeTestPDF(t, "arXiv:1801.00001", "Cows Are Cool And So Are Goats", "Body text")

	doc, err := NativeExtractor{}.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(doc.Body, "Body text") {
		t.Errorf("Body = %q, missing text", doc.Body)
	}
	if doc.Abstract != "" {
		t.Errorf("Abstract = %q, want empty", doc.Abstract)
	}
}

func TestNativeExtractor_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NativeExtractor{}.Extract(context.Background(), path)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if extractErr.Path != path {
		t.Errorf("Path = %q, want %q", extractErr.Path, path)
	}
}

func TestNativeExtractor_Truncated(t *testing.T) {
	full, err := os.ReadFile(writeTestPDF(t, "Cows Are Cool And So Are Goats"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "truncated.pdf")
	if err := os.WriteFile(path, full[:len(full)/2], 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := NativeExtractor{}.Extract(context.Background(), path)
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if !doc.IsEmpty() {
		t.Errorf("doc = %+v, want empty", doc)
	}
}

func TestRecoverExtraction(t *testing.T) {
	read := func() (doc Document, err error) {
		defer recoverExtraction("bad.pdf", &doc, &err)
		doc.Body = "partial"
		panic("unexpected EOF in stream")
	}

	doc, err := read()
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if extractErr.Path != "bad.pdf" || !strings.Contains(err.Error(), "unexpected EOF in stream") {
		t.Errorf("error = %v", err)
	}
	if doc.Body != "" {
		t.Errorf("Body = %q, want empty", doc.Body)
	}

	ok := func() (doc Document, err error) {
		defer recoverExtraction("good.pdf", &doc, &err)
		return Document{Body: "text"}, nil
	}
	if doc, err := ok(); err != nil || doc.Body != "text" {
		t.Errorf("without a panic got %+v, %v", doc, err)
	}
}

func TestGuessTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first long line", "Short\nCows Are Cool And So Are Goats\nMore", "Cows Are Cool And So Are Goats"},
		{"skips header", "arXiv:1801.00001v2 [cs.LG] 1 Jan 2018\nA Long Enough Title For Papers", "A Long Enough Title For Papers"},
		{"nothing long", "a\nb\nc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guessTitle(tt.text); got != tt.want {
				t.Errorf("guessTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocument_IsEmpty(t *testing.T) {
	if !(Document{}).IsEmpty() {
		t.Error("zero Document should be empty")
	}
	if (Document{Body: "x"}).IsEmpty() {
		t.Error("Document with body should not be empty")
	}
}
