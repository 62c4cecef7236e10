package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultPdftotextPath is looked up on PATH when no path is configured.
	DefaultPdftotextPath = "pdftotext"

	// DefaultTimeout bounds a single pdftotext run.
	DefaultTimeout = 60 * time.Second
)

// PdftotextExtractor runs `pdftotext -nopgbrk <file> -` and fills only the
// document body.
type PdftotextExtractor struct {
	path    string
	timeout time.Duration
	limiter *rate.Limiter
}

// PdftotextOption configures a PdftotextExtractor.
type PdftotextOption func(*PdftotextExtractor)

// WithPdftotextPath sets the pdftotext binary.
func WithPdftotextPath(path string) PdftotextOption {
	return func(e *PdftotextExtractor) {
		if path != "" {
			e.path = path
		}
	}
}

// WithTimeout bounds each run. Zero keeps the default.
func WithTimeout(d time.Duration) PdftotextOption {
	return func(e *PdftotextExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRate limits runs to perSecond per second. Zero means unlimited.
func WithRate(perSecond float64) PdftotextOption {
	return func(e *PdftotextExtractor) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewPdftotextExtractor creates an extractor with the given options.
func NewPdftotextExtractor(opts ...PdftotextOption) *PdftotextExtractor {
	e := &PdftotextExtractor{
		path:    DefaultPdftotextPath,
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the pdftotext binary that is run.
func (e *PdftotextExtractor) Path() string { return e.path }

// Timeout returns the bound on a single run.
func (e *PdftotextExtractor) Timeout() time.Duration { return e.timeout }

// Extract runs pdftotext on path.
func (e *PdftotextExtractor) Extract(ctx context.Context, path string) (Document, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return Document{}, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.path, "-nopgbrk", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		extractErr := &ExtractionError{Path: path, Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			extractErr.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			extractErr.Err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return Document{}, extractErr
	}

	return Document{Body: stdout.String()}, nil
}
