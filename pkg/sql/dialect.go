package sql

import "fmt"

// Dialect holds the syntax differences between the supported warehouse engines.
type Dialect interface {
	Name() string
	// ArrayLength returns an expression for the number of elements of an array.
	ArrayLength(expr string) string
	// ArrayContains returns a predicate testing whether the array holds the value.
	ArrayContains(arrayExpr, valueExpr string) string
	// ArrayElements returns a FROM item exposing each element of the array as alias(v).
	ArrayElements(arrayExpr, alias string) string
}

type duckDBDialect struct{}

func (duckDBDialect) Name() string { return "duckdb" }

func (duckDBDialect) ArrayLength(expr string) string {
	return fmt.Sprintf("len(%s)", expr)
}

func (duckDBDialect) ArrayContains(arrayExpr, valueExpr string) string {
	return fmt.Sprintf("list_contains(%s, %s)", arrayExpr, valueExpr)
}

func (duckDBDialect) ArrayElements(arrayExpr, alias string) string {
	return fmt.Sprintf("unnest(%s) AS %s(v)", arrayExpr, alias)
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) ArrayLength(expr string) string {
	return fmt.Sprintf("cardinality(%s)", expr)
}

func (postgresDialect) ArrayContains(arrayExpr, valueExpr string) string {
	return fmt.Sprintf("%s = ANY(%s)", valueExpr, arrayExpr)
}

func (postgresDialect) ArrayElements(arrayExpr, alias string) string {
	return fmt.Sprintf("unnest(%s) AS %s(v)", arrayExpr, alias)
}

var (
	// DuckDB is the dialect of the embedded analytical warehouse file.
	DuckDB Dialect = duckDBDialect{}
	// Postgres is the dialect of a PostgreSQL mirror of the warehouse.
	Postgres Dialect = postgresDialect{}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "duckdb":
		return DuckDB, nil
	case "postgres":
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", name)
	}
}
