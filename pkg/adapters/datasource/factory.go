package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Open creates a warehouse of the given type from the registry.
func Open(ctx context.Context, warehouseType string, config map[string]any, logger *zap.Logger) (Warehouse, error) {
	factory := GetFactory(warehouseType)
	if factory == nil {
		return nil, fmt.Errorf("unsupported warehouse type: %s (not compiled in)", warehouseType)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return factory(ctx, config, logger)
}

// Opener opens the warehouse a Manager hands out.
type Opener func(ctx context.Context) (Warehouse, error)

// RegistryOpener returns an Opener bound to a registered adapter type and configuration.
func RegistryOpener(warehouseType string, config map[string]any, logger *zap.Logger) Opener {
	return func(ctx context.Context) (Warehouse, error) {
		return Open(ctx, warehouseType, config, logger)
	}
}
