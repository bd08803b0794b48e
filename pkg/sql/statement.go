// Package sql builds the parameterized statements the engine sends to the warehouse.
//
// Identifiers (table and column names) only ever come from the join-graph registry and
// the live schema, and are quoted. Values (language, vocabulary terms, review status) are
// always bound as $n parameters.
package sql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Statement is a complete SQL text with its bound values.
type Statement struct {
	SQL  string
	Args []any
}

func (s Statement) String() string {
	return s.SQL
}

var placeholderRegex = regexp.MustCompile(`\$(\d+)`)

// Validate checks that the statement is a single statement and that every bound value
// is referenced by a placeholder and every placeholder has a value.
func (s Statement) Validate() error {
	result := ValidateAndNormalize(s.SQL)
	if result.Error != nil {
		return result.Error
	}

	maxIndex := 0
	for _, m := range placeholderRegex.FindAllStringSubmatch(result.NormalizedSQL, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid placeholder $%s", m[1])
		}
		maxIndex = max(maxIndex, n)
	}
	if maxIndex != len(s.Args) {
		return fmt.Errorf("statement references %d parameters but binds %d", maxIndex, len(s.Args))
	}
	return nil
}

// Args accumulates bound values and hands out their placeholders in order.
type Args struct {
	values []any
}

// Bind appends v and returns its placeholder.
func (a *Args) Bind(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// BindList binds every value and returns the comma-separated placeholders.
func (a *Args) BindList(values []string) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = a.Bind(v)
	}
	return strings.Join(placeholders, ", ")
}

// Values returns the bound values in placeholder order.
func (a *Args) Values() []any {
	return a.values
}

// QuoteIdentifier quotes a single identifier, doubling embedded quotes.
func QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Column returns the qualified, quoted reference alias."column".
func Column(alias, column string) string {
	return alias + "." + QuoteIdentifier(column)
}
