package duckdb

import (
	"context"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "duckdb",
			DisplayName: "DuckDB",
			Description: "Embedded analytical file materialized from the catalog export",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (datasource.Warehouse, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewAdapter(ctx, cfg, logger)
		},
	})
}
