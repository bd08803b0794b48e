package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

// Invalid statements are rejected before reaching the connection, so a zero Adapter suffices.
func TestAdapter_RejectsInvalidStatements(t *testing.T) {
	a := &Adapter{}
	ctx := context.Background()

	tests := []struct {
		name string
		stmt auditsql.Statement
	}{
		{"stacked statement", auditsql.Statement{SQL: `SELECT COUNT(*) FROM "Witness"; DROP TABLE "Witness"`}},
		{"unbound placeholder", auditsql.Statement{SQL: `SELECT COUNT(*) FROM "Witness" t0 WHERE t0."status" = $1`}},
		{"unused value", auditsql.Statement{SQL: `SELECT COUNT(*) FROM "Witness"`, Args: []any{"Latin"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.QueryCounts(ctx, tt.stmt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid count query")

			_, err = a.QueryStrings(ctx, tt.stmt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid string query")
		})
	}
}
