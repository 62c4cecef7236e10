package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeTool writes a shell script standing in for pdftotext.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "pdftotext")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing fake tool: %v", err)
	}
	return path
}

func TestPdftotextExtractor_Body(t *testing.T) {
	// Echo the arguments so the invocation can be checked.
	tool := fakeTool(t, `echo "args: $@"`+"\n"+`echo "Cows are cool."`+"\n")
	e := NewPdftotextExtractor(WithPdftotextPath(tool))

	doc, err := e.Extract(context.Background(), "/papers/cows.pdf")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(doc.Body, "args: -nopgbrk /papers/cows.pdf -") {
		t.Errorf("Body = %q, missing expected arguments", doc.Body)
	}
	if !strings.Contains(doc.Body, "Cows are cool.") {
		t.Errorf("Body = %q, missing text", doc.Body)
	}
	if doc.Title != "" || doc.Abstract != "" || len(doc.Authors) != 0 {
		t.Errorf("only the body should be filled, got %+v", doc)
	}
}

func TestPdftotextExtractor_Failure(t *testing.T) {
	tool := fakeTool(t, "echo 'Syntax Error: broken xref' >&2\nexit 3\n")
	e := NewPdftotextExtractor(WithPdftotextPath(tool))

	_, err := e.Extract(context.Background(), "/papers/broken.pdf")
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if extractErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", extractErr.ExitCode)
	}
	if !strings.Contains(extractErr.Stderr, "broken xref") {
		t.Errorf("Stderr = %q", extractErr.Stderr)
	}
	if !strings.Contains(err.Error(), "/papers/broken.pdf") {
		t.Errorf("Error() = %q, want path", err.Error())
	}
}

func TestPdftotextExtractor_MissingTool(t *testing.T) {
	e := NewPdftotextExtractor(WithPdftotextPath(filepath.Join(t.TempDir(), "nope")))

	_, err := e.Extract(context.Background(), "/papers/cows.pdf")
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
}

func TestPdftotextExtractor_Timeout(t *testing.T) {
	tool := fakeTool(t, "exec sleep 5\n")
	e := NewPdftotextExtractor(WithPdftotextPath(tool), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := e.Extract(context.Background(), "/papers/slow.pdf")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 4*time.Second {
		t.Error("extraction was not cut short")
	}
}

func TestPdftotextExtractor_CancelledContext(t *testing.T) {
	tool := fakeTool(t, "echo ok\n")
	e := NewPdftotextExtractor(WithPdftotextPath(tool), WithRate(0.001))

	// The first call takes the only token.
	if _, err := e.Extract(context.Background(), "/papers/a.pdf"); err != nil {
		t.Fatalf("first Extract failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Extract(ctx, "/papers/b.pdf"); err == nil {
		t.Error("expected error from cancelled context while rate limited")
	}
}
