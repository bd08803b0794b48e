package schema

import "strings"

const (
	// IdentifierColumn is the universal record identifier column of every entity table.
	IdentifierColumn = "H-ID"
	// TypeIDColumn carries the record-type id of every entity table.
	TypeIDColumn = "type_id"
	// ForeignKeySuffix marks a column holding cross-entity references.
	ForeignKeySuffix = " H-ID"
	// KeywordSuffix disambiguates field names that collide with a query-language keyword.
	KeywordSuffix = "_COLUMN"

	termIDMarker    = "TRM-ID"
	pluralURLLabel  = "URL(s)"
	singleURLLabel  = "URL"
	layoutHeaderTag = "Header"
	separatorType   = "separator"
)

// NormalizeFieldName maps a declared display name to the column name the warehouse uses
// for it. The same rules run for every field of every entity, so a declared field and the
// live column materialized from it always share one name:
//   - hyphens become spaces
//   - the plural URL label becomes its singular form
//   - foreign keys get the reference suffix
//   - names colliding with a keyword get the disambiguation suffix
func NormalizeFieldName(displayName string, isForeignKey bool) string {
	name := strings.ReplaceAll(displayName, "-", " ")
	if name == pluralURLLabel {
		name = singleURLLabel
	}
	if isForeignKey {
		name += ForeignKeySuffix
	}
	if IsKeyword(name) {
		name += KeywordSuffix
	}
	return name
}

// IsIdentifierColumn reports whether a column is an identifier that never takes part
// in a completeness report.
func IsIdentifierColumn(column string) bool {
	return column == IdentifierColumn ||
		column == TypeIDColumn ||
		strings.Contains(column, termIDMarker)
}

// isLayoutHeader reports whether a declared field is a layout header rather than an attribute.
func isLayoutHeader(detailName, detailType string) bool {
	return strings.Contains(detailName, layoutHeaderTag) || strings.EqualFold(detailType, separatorType)
}
