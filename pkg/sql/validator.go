package sql

import (
	"errors"
	"strings"
)

// ErrMultipleStatements indicates a generated query holds more than one statement.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed")

// ValidationResult contains the normalized SQL and any validation error.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateAndNormalize strips a trailing semicolon and rejects any other semicolon
// outside a quoted string or identifier.
func ValidateAndNormalize(query string) ValidationResult {
	query = strings.TrimSpace(query)
	query = strings.TrimSpace(strings.TrimSuffix(query, ";"))
	if query == "" {
		return ValidationResult{}
	}
	if hasSemicolonOutsideQuotes(query) {
		return ValidationResult{Error: ErrMultipleStatements}
	}
	return ValidationResult{NormalizedSQL: query}
}

// hasSemicolonOutsideQuotes scans single-quoted literals and double-quoted identifiers.
// A doubled quote inside either closes and immediately reopens it, which keeps the state right.
func hasSemicolonOutsideQuotes(query string) bool {
	var quote rune
	for _, c := range query {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			return true
		}
	}
	return false
}
