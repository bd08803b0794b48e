package datasource

import (
	"context"

	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

// Warehouse is a read-mostly handle on the materialized warehouse.
// Each implementation owns its connection and must be closed when done.
type Warehouse interface {
	// Ping verifies the warehouse is reachable.
	Ping(ctx context.Context) error

	// TableExists reports whether an entity table is materialized.
	TableExists(ctx context.Context, table string) (bool, error)

	// DiscoverTables returns every user table of the warehouse.
	DiscoverTables(ctx context.Context) ([]TableMetadata, error)

	// DiscoverColumns returns the live columns of a table in ordinal order.
	DiscoverColumns(ctx context.Context, table string) ([]ColumnMetadata, error)

	// QueryCounts runs a statement returning exactly one row of integer columns.
	QueryCounts(ctx context.Context, stmt auditsql.Statement) ([]int64, error)

	// QueryStrings runs a statement returning one text column and collects it.
	QueryStrings(ctx context.Context, stmt auditsql.Statement) ([]string, error)

	// RecordTypes returns the record-type id of every entity, keyed by lower-cased name,
	// read from the export's record-type table.
	RecordTypes(ctx context.Context) (map[string]int, error)

	// Dialect returns the SQL dialect of the warehouse.
	Dialect() auditsql.Dialect

	// Close releases the connection.
	Close() error
}
