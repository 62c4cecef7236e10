// Package abstracts reads side-channel files of conference abstracts.
//
// A file is a sequence of records. Each record starts with a title line
// recognized by a Grammar, followed by indented (or blank) lines. The
// first line after the title usually lists the authors and is not part
// of the body.
package abstracts

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/papercat/internal/article"
)

// Abstract is one record of an abstracts file.
type Abstract struct {
	Start   int // line holding the title
	Title   string
	Authors []string
	Body    string
}

// FormatError reports a malformed abstracts file.
type FormatError struct {
	File    string
	Line    int
	Details string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Error on line %d of %s: %s", e.Line, e.File, e.Details)
}

const maxLineSize = 1 << 20

// ReadFile returns the abstracts in filename. The file is opened when
// iteration starts and the sequence can be consumed once per call.
func ReadFile(filename string, g Grammar) iter.Seq2[Abstract, error] {
	return func(yield func(Abstract, error) bool) {
		f, err := os.Open(filename)
		if err != nil {
			yield(Abstract{}, fmt.Errorf("opening abstracts file: %w", err))
			return
		}
		defer f.Close()
		Read(filename, f, g)(yield)
	}
}

// Read returns the abstracts in r. name identifies r in errors.
func Read(name string, r io.Reader, g Grammar) iter.Seq2[Abstract, error] {
	return func(yield func(Abstract, error) bool) {
		p := &parser{name: name, grammar: g, scanner: bufio.NewScanner(r)}
		p.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		title, start, err := p.firstTitle()
		for title != "" && err == nil {
			next, nextStart, body, bodyErr := p.body()
			if bodyErr != nil {
				err = bodyErr
				break
			}
			if !yield(Abstract{Start: start, Title: title, Body: body}, nil) {
				return
			}
			title, start = next, nextStart
		}
		if err != nil {
			yield(Abstract{}, err)
		}
	}
}

type parser struct {
	name    string
	grammar Grammar
	scanner *bufio.Scanner
	line    int
}

// next returns the next line without its terminator. ok is false at EOF.
func (p *parser) next() (text string, ok bool, err error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", false, fmt.Errorf("reading %s: %w", p.name, err)
		}
		return "", false, nil
	}
	p.line++
	text = p.scanner.Text()
	if p.line == 1 {
		text = strings.TrimPrefix(text, "\ufeff")
	}
	return text, true, nil
}

// firstTitle skips leading blank lines. It returns an empty title for a
// file with no records.
func (p *parser) firstTitle() (string, int, error) {
	for {
		text, ok, err := p.next()
		if err != nil || !ok {
			return "", p.line, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		title, err := p.title(text)
		return title, p.line, err
	}
}

// body reads continuation lines up to the next title or EOF.
func (p *parser) body() (next string, nextStart int, body string, err error) {
	var lines []string
	for {
		text, ok, err := p.next()
		if err != nil {
			return "", 0, "", err
		}
		if !ok {
			return "", 0, joinBody(lines), nil
		}
		if !continuation(text) {
			body = joinBody(lines)
			next, err = p.title(text)
			return next, p.line, body, err
		}
		lines = append(lines, text)
	}
}

// continuation reports whether text belongs to the current record. Blank
// lines count as continuation.
func continuation(text string) bool {
	if text == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text)
	return unicode.IsSpace(r)
}

// joinBody drops the line following the title.
func joinBody(lines []string) string {
	if len(lines) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[1:], "\n"))
}

func (p *parser) title(text string) (string, error) {
	title, ok := p.grammar.Title(text)
	if !ok || title == "" {
		return "", &FormatError{File: p.name, Line: p.line, Details: "Abstract title is missing"}
	}
	return title, nil
}

// LoadTable reads every abstract and indexes it by normalized title. A
// later record replaces an earlier one with the same title.
func LoadTable(seq iter.Seq2[Abstract, error]) (map[string]Abstract, error) {
	table := make(map[string]Abstract)
	for a, err := range seq {
		if err != nil {
			return nil, err
		}
		table[article.NormalizeTitle(a.Title)] = a
	}
	return table, nil
}
