package services

import (
	"context"
	"fmt"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

// queryOne runs a statement expected to produce exactly one count.
func queryOne(ctx context.Context, wh datasource.Warehouse, stmt auditsql.Statement) (int64, error) {
	counts, err := wh.QueryCounts(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if len(counts) != 1 {
		return 0, fmt.Errorf("expected 1 count, got %d", len(counts))
	}
	return counts[0], nil
}
