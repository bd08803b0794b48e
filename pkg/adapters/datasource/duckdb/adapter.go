// Package duckdb implements the warehouse adapter of the embedded analytical file.
package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // registers the "duckdb" database/sql driver
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/logging"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

// Adapter provides DuckDB warehouse access through database/sql.
type Adapter struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

// NewAdapter opens the warehouse file and verifies it is readable.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("duckdb", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	a := &Adapter{config: cfg, db: db, logger: logger.Named("duckdb")}
	if err := a.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Ping verifies the warehouse file is open and answers queries.
func (a *Adapter) Ping(ctx context.Context) error {
	var one int
	if err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping duckdb %s: %w", a.config.Path, err)
	}
	return nil
}

// TableExists reports whether a table of that name is materialized (case-insensitively).
func (a *Adapter) TableExists(ctx context.Context, table string) (bool, error) {
	const query = `SELECT COUNT(*) FROM information_schema.tables WHERE lower(table_name) = lower($1)`
	var n int64
	if err := a.db.QueryRowContext(ctx, query, table).Scan(&n); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return n > 0, nil
}

// DiscoverTables returns every table of the warehouse, sorted by name.
func (a *Adapter) DiscoverTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	const query = `SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE' ORDER BY table_name`
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableMetadata
	for rows.Next() {
		var t datasource.TableMetadata
		if err := rows.Scan(&t.TableName); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// DiscoverColumns returns the live columns of a table. List-typed columns report a
// data type ending in "[]".
func (a *Adapter) DiscoverColumns(ctx context.Context, table string) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT column_name, data_type, ordinal_position
		FROM information_schema.columns
		WHERE lower(table_name) = lower($1)
		ORDER BY ordinal_position`

	rows, err := a.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		if err := rows.Scan(&c.ColumnName, &c.DataType, &c.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.IsArray = strings.HasSuffix(c.DataType, "[]")
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// QueryCounts runs a statement returning one row of integer columns.
func (a *Adapter) QueryCounts(ctx context.Context, stmt auditsql.Statement) ([]int64, error) {
	if err := stmt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid count query: %w", err)
	}
	a.logger.Debug("Running count query", zap.String("sql", logging.SanitizeQuery(stmt.SQL)), zap.Int("args", len(stmt.Args)))

	rows, err := a.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("count query columns: %w", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("count query: %w", err)
		}
		return nil, errors.New("count query returned no row")
	}

	values := make([]sql.NullInt64, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan counts: %w", err)
	}

	counts := make([]int64, len(values))
	for i, v := range values {
		counts[i] = v.Int64
	}
	return counts, rows.Err()
}

// QueryStrings runs a statement returning one text column. NULL values are skipped.
func (a *Adapter) QueryStrings(ctx context.Context, stmt auditsql.Statement) ([]string, error) {
	if err := stmt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid string query: %w", err)
	}
	rows, err := a.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("string query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	return values, rows.Err()
}

// RecordTypes reads the record-type ids of the export's record-type table.
func (a *Adapter) RecordTypes(ctx context.Context) (map[string]int, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		auditsql.QuoteIdentifier(datasource.RecordTypeIDColumn),
		auditsql.QuoteIdentifier(datasource.RecordTypeNameColumn),
		auditsql.QuoteIdentifier(datasource.RecordTypeTable))

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query record types: %w", err)
	}
	defer rows.Close()

	types := make(map[string]int)
	for rows.Next() {
		var id int64
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan record type: %w", err)
		}
		if name.Valid {
			types[strings.ToLower(strings.TrimSpace(name.String))] = int(id)
		}
	}
	return types, rows.Err()
}

// Dialect returns the DuckDB dialect.
func (a *Adapter) Dialect() auditsql.Dialect {
	return auditsql.DuckDB
}

// Close releases the warehouse file handle.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ensure Adapter implements Warehouse at compile time.
var _ datasource.Warehouse = (*Adapter)(nil)
