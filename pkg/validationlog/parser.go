// Package validationlog reads the editorial validation log written by the catalog's
// export tool.
//
// The log is a flat sequence of blocks. A block starts at any non-empty line that is not
// indented (the header) and continues with indented lines:
//
//	2024-01-01 12:00:00 - WARNING - record failed validation
//		[12]
//		[34]
//		rule text
//		problem text
//
// The header yields the timestamp (text before the first " - ") and the level (first run
// of upper-case letters). The indented lines hold the record type, the record id, the rule
// and the problem. When the header itself ends with the bracketed record type, the block
// has only three indented lines.
package validationlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/models"
)

const (
	headerSeparator = " - "

	// maxLineLength bounds a single log line. Problem texts quote whole field values.
	maxLineLength = 4 * 1024 * 1024
)

var (
	levelPattern  = regexp.MustCompile(`[A-Z]+`)
	numberPattern = regexp.MustCompile(`^\[?(\d+)\]$`)
)

// BlockError reports a block that violates the log grammar.
type BlockError struct {
	Line   int
	Reason string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s at line %d: %s", apperrors.ErrMalformedLogBlock, e.Line, e.Reason)
}

func (e *BlockError) Unwrap() error {
	return apperrors.ErrMalformedLogBlock
}

// Parser produces the entries of a log in one pass. It cannot be restarted.
type Parser struct {
	scanner *bufio.Scanner
	line    int
	entry   models.ValidationLogEntry
	err     error
	done    bool
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &Parser{scanner: scanner}
}

// Next advances to the next entry. It returns false at the end of the log or on the first
// error; Err distinguishes the two.
func (p *Parser) Next() bool {
	if p.done {
		return false
	}
	for {
		line, ok := p.readLine()
		if !ok {
			p.done = true
			return false
		}
		if strings.TrimSpace(line) == "" || isIndented(line) {
			continue
		}
		entry, err := p.parseBlock(line)
		if err != nil {
			p.err = err
			p.done = true
			return false
		}
		p.entry = entry
		return true
	}
}

// Entry returns the entry produced by the last successful Next.
func (p *Parser) Entry() models.ValidationLogEntry {
	return p.entry
}

// Err returns the first error met, or nil at a clean end of log.
func (p *Parser) Err() error {
	return p.err
}

func (p *Parser) parseBlock(header string) (models.ValidationLogEntry, error) {
	headerLine := p.line
	entry := models.ValidationLogEntry{
		Time:  strings.TrimSpace(strings.SplitN(header, headerSeparator, 2)[0]),
		Level: levelPattern.FindString(header),
	}
	if entry.Level == "" {
		return entry, &BlockError{Line: headerLine, Reason: "header has no level"}
	}

	headerType, hasHeaderType := trailingNumber(header)
	want := 4
	if hasHeaderType {
		want = 3
	}

	body := make([]string, 0, want)
	for len(body) < want {
		line, ok := p.readLine()
		if !ok {
			if p.err != nil {
				return entry, p.err
			}
			return entry, &BlockError{
				Line:   headerLine,
				Reason: fmt.Sprintf("truncated block: %d of %d indented lines", len(body), want),
			}
		}
		if !isIndented(line) {
			return entry, &BlockError{Line: p.line, Reason: "expected an indented line"}
		}
		body = append(body, strings.TrimSpace(line))
	}

	if hasHeaderType {
		entry.RecordType = headerType
	} else {
		n, ok := trailingNumber(body[0])
		if !ok {
			return entry, &BlockError{Line: headerLine + 1, Reason: "record type is not a bracketed number"}
		}
		entry.RecordType = n
		body = body[1:]
	}

	n, ok := trailingNumber(body[0])
	if !ok {
		return entry, &BlockError{Line: p.line - 2, Reason: "record id is not a bracketed number"}
	}
	entry.RecordID = n
	entry.Rule = body[1]
	entry.Problem = body[2]
	return entry, nil
}

func (p *Parser) readLine() (string, bool) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil && p.err == nil {
			p.err = fmt.Errorf("read validation log: %w", err)
		}
		return "", false
	}
	p.line++
	return strings.TrimRight(p.scanner.Text(), "\r"), true
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, "\t") || strings.HasPrefix(line, " ")
}

// trailingNumber parses the last whitespace-separated token of a line as "[n]" or "n]".
func trailingNumber(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false
	}
	m := numberPattern.FindStringSubmatch(fields[len(fields)-1])
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Summarize drains the parser into a summary of logged record ids per record type.
func Summarize(p *Parser) (*models.ValidationSummary, error) {
	summary := models.NewValidationSummary()
	for p.Next() {
		summary.Add(p.Entry())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}

// IsMalformed reports whether err is a grammar violation rather than an I/O failure.
func IsMalformed(err error) bool {
	var blockErr *BlockError
	return errors.As(err, &blockErr)
}
