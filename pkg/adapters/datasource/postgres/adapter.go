// Package postgres implements the warehouse adapter of a PostgreSQL mirror of the export.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/config"
	"github.com/lostma-project/lostma-audit/pkg/logging"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

// Adapter provides PostgreSQL warehouse access.
type Adapter struct {
	config *Config
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// buildConnectionString builds a PostgreSQL URL with proper escaping.
// All user-provided fields are URL-escaped so passwords with @, /, # or ? survive.
func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	host := config.WarehouseHost(cfg.Host)

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		sslMode,
	)
}

// NewAdapter creates a pool against the mirror and verifies connectivity.
func NewAdapter(ctx context.Context, cfg *Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	connStr := buildConnectionString(cfg)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres %s: %s", logging.SanitizeConnectionString(connStr), logging.SanitizeError(err))
	}

	a := &Adapter{config: cfg, pool: pool, logger: logger.Named("postgres")}
	if err := a.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

// Ping verifies the server is reachable with valid credentials.
func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %s", logging.SanitizeError(err))
	}
	return nil
}

// TableExists reports whether the table exists in the configured schema.
func (a *Adapter) TableExists(ctx context.Context, table string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2)`
	var exists bool
	if err := a.pool.QueryRow(ctx, query, a.config.Schema, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return exists, nil
}

// DiscoverTables returns every base table of the configured schema.
func (a *Adapter) DiscoverTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := a.pool.Query(ctx, query, a.config.Schema)
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

// DiscoverColumns returns the live columns of a table. Array columns report their
// element type followed by "[]", e.g. "text[]".
func (a *Adapter) DiscoverColumns(ctx context.Context, table string) ([]datasource.ColumnMetadata, error) {
	const query = `
		SELECT a.attname, format_type(a.atttypid, a.atttypmod), a.attnum
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relname = $2 AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`

	rows, err := a.pool.Query(ctx, query, a.config.Schema, table)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnMetadata
	for rows.Next() {
		var c datasource.ColumnMetadata
		var position int16
		if err := rows.Scan(&c.ColumnName, &c.DataType, &position); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.OrdinalPosition = int(position)
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

	rows, err := a.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("count query: %w", err)
	}
	counts, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) ([]int64, error) {
		values := make([]*int64, len(row.FieldDescriptions()))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		out := make([]int64, len(values))
		for i, v := range values {
			if v != nil {
				out[i] = *v
			}
		}
		return out, nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New("count query returned no row")
	}
	if err != nil {
		return nil, fmt.Errorf("scan counts: %w", err)
	}
	return counts, nil
}

// QueryStrings runs a statement returning one text column. NULL values are skipped.
func (a *Adapter) QueryStrings(ctx context.Context, stmt auditsql.Statement) ([]string, error) {
	if err := stmt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid string query: %w", err)
	}
	rows, err := a.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("string query: %w", err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[*string])
	if err != nil {
		return nil, fmt.Errorf("scan values: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// RecordTypes reads the record-type ids of the export's record-type table.
func (a *Adapter) RecordTypes(ctx context.Context) (map[string]int, error) {
	query := fmt.Sprintf("SELECT %s::bigint, %s::text FROM %s",
		auditsql.QuoteIdentifier(datasource.RecordTypeIDColumn),
		auditsql.QuoteIdentifier(datasource.RecordTypeNameColumn),
		pgx.Identifier{a.config.Schema, datasource.RecordTypeTable}.Sanitize())

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query record types: %w", err)
	}
	defer rows.Close()

	types := make(map[string]int)
	for rows.Next() {
		var id int64
		var name *string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan record type: %w", err)
		}
		if name != nil {
			types[strings.ToLower(strings.TrimSpace(*name))] = int(id)
		}
	}
	return types, rows.Err()
}

// Dialect returns the PostgreSQL dialect.
func (a *Adapter) Dialect() auditsql.Dialect {
	return auditsql.Postgres
}

// Close releases the pool.
func (a *Adapter) Close() error {
	a.pool.Close()
	return nil
}

// Ensure Adapter implements Warehouse at compile time.
var _ datasource.Warehouse = (*Adapter)(nil)
