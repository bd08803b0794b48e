//go:build integration

package duckdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostma-project/lostma-audit/pkg/joingraph"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

// fixtureStatements builds a tiny corpus: one Latin text, two witnesses whose page
// arrays both reference part 100, and one rty record-type table.
var fixtureStatements = []string{
	`CREATE TABLE TextTable ("H-ID" INTEGER, type_id INTEGER, language_COLUMN VARCHAR, review_status VARCHAR, "in_stemma H-ID" INTEGER[])`,
	`CREATE TABLE Witness ("H-ID" INTEGER, type_id INTEGER, "is_manifestation_of H-ID" INTEGER, "observed_on_pages H-ID" INTEGER[], review_status VARCHAR)`,
	`CREATE TABLE Part ("H-ID" INTEGER, type_id INTEGER, folio VARCHAR, hands VARCHAR[], review_status VARCHAR)`,
	`CREATE TABLE rty (rty_ID INTEGER, rty_Name VARCHAR)`,
	`INSERT INTO TextTable VALUES (1, 10, 'Latin', 'Action required', [])`,
	`INSERT INTO Witness VALUES (11, 20, 1, [100], NULL), (12, 20, 1, [100, 101], 'Action required')`,
	`INSERT INTO Part VALUES (100, 30, NULL, [], NULL), (101, 30, '12r', ['a'], NULL)`,
	`INSERT INTO rty VALUES (10, 'text'), (20, 'witness'), (30, 'part')`,
}

func newFixture(t *testing.T) *Adapter {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lostma.db")

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	for _, stmt := range fixtureStatements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, db.Close())

	a, err := NewAdapter(context.Background(), &Config{Path: path, ReadOnly: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAdapter_DiscoverColumns(t *testing.T) {
	a := newFixture(t)
	ctx := context.Background()

	ok, err := a.TableExists(ctx, "witness")
	require.NoError(t, err)
	assert.True(t, ok)

	cols, err := a.DiscoverColumns(ctx, "Part")
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, "H-ID", cols[0].ColumnName)
	assert.Equal(t, "hands", cols[3].ColumnName)
	assert.True(t, cols[3].IsArray)
	assert.False(t, cols[2].IsArray)

	types, err := a.RecordTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, types["witness"])
}

func TestAdapter_MultiStepCountsDistinct(t *testing.T) {
	a := newFixture(t)
	ctx := context.Background()

	r := joingraph.Default()
	part, _ := r.Lookup("part")
	tmpl, err := r.Template(part, a.Dialect(), "Latin")
	require.NoError(t, err)

	distinct, err := a.QueryCounts(ctx, tmpl.RowCount())
	require.NoError(t, err)

	// The same join without DISTINCT sees part 100 once per referencing witness.
	naive := auditsql.Statement{
		SQL: `SELECT COUNT(*) FROM "Part" t0` +
			` INNER JOIN "Witness" t1 ON list_contains(t1."observed_on_pages H-ID", t0."H-ID")` +
			` INNER JOIN "TextTable" t2 ON t1."is_manifestation_of H-ID" = t2."H-ID"` +
			` WHERE t2."language_COLUMN" = $1`,
		Args: []any{"Latin"},
	}
	fanout, err := a.QueryCounts(ctx, naive)
	require.NoError(t, err)

	assert.Equal(t, int64(2), distinct[0])
	assert.Equal(t, int64(3), fanout[0])
	assert.Less(t, distinct[0], fanout[0])

	counts, err := a.QueryCounts(ctx, tmpl.CountWhere([]string{tmpl.ScalarNull("folio"), tmpl.ListEmpty("hands")}))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1}, counts)
}

func TestAdapter_ActionRequired(t *testing.T) {
	a := newFixture(t)
	r := joingraph.Default()
	witness, _ := r.Lookup("witness")
	tmpl, err := r.Template(witness, a.Dialect(), "Latin")
	require.NoError(t, err)

	stmt, ok := tmpl.ActionRequired()
	require.True(t, ok)
	counts, err := a.QueryCounts(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, counts)
}
