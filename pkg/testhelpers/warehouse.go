package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

// FakeWarehouse is an in-memory datasource.Warehouse for unit tests. Count and string
// statements are answered by the configured responders and recorded in order.
type FakeWarehouse struct {
	mu sync.Mutex

	// Columns holds the live columns of each table, keyed by storage name.
	Columns map[string][]datasource.ColumnMetadata
	// RecordTypeIDs is returned by RecordTypes.
	RecordTypeIDs map[string]int
	// OnCount answers QueryCounts. Nil answers every statement with zeros.
	OnCount func(stmt auditsql.Statement) ([]int64, error)
	// OnStrings answers QueryStrings. Nil answers with no rows.
	OnStrings func(stmt auditsql.Statement) ([]string, error)
	// SQLDialect defaults to DuckDB.
	SQLDialect auditsql.Dialect

	Statements []auditsql.Statement
	Closed     bool
	CloseCalls int
}

// Column is a shorthand for a live scalar (or array when the type ends in "[]") column.
func Column(name, dataType string, position int) datasource.ColumnMetadata {
	return datasource.ColumnMetadata{
		ColumnName:      name,
		DataType:        dataType,
		IsArray:         strings.HasSuffix(dataType, "[]"),
		OrdinalPosition: position,
	}
}

func (f *FakeWarehouse) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Closed {
		return fmt.Errorf("warehouse closed")
	}
	return nil
}

func (f *FakeWarehouse) TableExists(_ context.Context, table string) (bool, error) {
	_, ok := f.lookup(table)
	return ok, nil
}

func (f *FakeWarehouse) DiscoverTables(context.Context) ([]datasource.TableMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tables := make([]datasource.TableMetadata, 0, len(f.Columns))
	for name := range f.Columns {
		tables = append(tables, datasource.TableMetadata{TableName: name})
	}
	return tables, nil
}

func (f *FakeWarehouse) DiscoverColumns(_ context.Context, table string) ([]datasource.ColumnMetadata, error) {
	cols, _ := f.lookup(table)
	return cols, nil
}

func (f *FakeWarehouse) QueryCounts(_ context.Context, stmt auditsql.Statement) ([]int64, error) {
	f.mu.Lock()
	f.Statements = append(f.Statements, stmt)
	respond := f.OnCount
	f.mu.Unlock()

	if err := stmt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid statement: %w", err)
	}
	if respond == nil {
		return make([]int64, strings.Count(stmt.SQL, "COUNT(")), nil
	}
	return respond(stmt)
}

func (f *FakeWarehouse) QueryStrings(_ context.Context, stmt auditsql.Statement) ([]string, error) {
	f.mu.Lock()
	f.Statements = append(f.Statements, stmt)
	respond := f.OnStrings
	f.mu.Unlock()

	if respond == nil {
		return nil, nil
	}
	return respond(stmt)
}

func (f *FakeWarehouse) RecordTypes(context.Context) (map[string]int, error) {
	return f.RecordTypeIDs, nil
}

func (f *FakeWarehouse) Dialect() auditsql.Dialect {
	if f.SQLDialect == nil {
		return auditsql.DuckDB
	}
	return f.SQLDialect
}

func (f *FakeWarehouse) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	f.CloseCalls++
	return nil
}

// Executed returns a copy of the statements run so far.
func (f *FakeWarehouse) Executed() []auditsql.Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]auditsql.Statement(nil), f.Statements...)
}

func (f *FakeWarehouse) lookup(table string) ([]datasource.ColumnMetadata, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, cols := range f.Columns {
		if strings.EqualFold(name, table) {
			return cols, true
		}
	}
	return nil, false
}

var _ datasource.Warehouse = (*FakeWarehouse)(nil)
