package datasource

import "strings"

// Tables of the export describing the catalog itself rather than records.
const (
	RecordTypeTable      = "rty"
	RecordTypeIDColumn   = "rty_ID"
	RecordTypeNameColumn = "rty_Name"
)

// BaseTables lists the catalog tables present in every export. They hold no records and
// are never audited.
var BaseTables = []string{"rtg", "rst", "rty", "dty", "trm"}

// IsBaseTable reports whether a table is one of BaseTables.
func IsBaseTable(table string) bool {
	for _, t := range BaseTables {
		if strings.EqualFold(t, table) {
			return true
		}
	}
	return false
}

// TableMetadata represents a discovered warehouse table.
type TableMetadata struct {
	TableName string
}

// ColumnMetadata represents a discovered live column.
type ColumnMetadata struct {
	ColumnName      string
	DataType        string
	IsArray         bool
	OrdinalPosition int
}
