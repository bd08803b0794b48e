package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "PostgreSQL 12+ mirror of the catalog export with native array columns",
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
