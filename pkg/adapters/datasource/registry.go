package datasource

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// AdapterInfo describes a registered warehouse adapter.
type AdapterInfo struct {
	Type        string `json:"type"`         // "duckdb", "postgres"
	DisplayName string `json:"display_name"` // "DuckDB", "PostgreSQL"
	Description string `json:"description"`
}

// Factory opens a warehouse from an adapter-specific configuration map.
type Factory func(ctx context.Context, config map[string]any, logger *zap.Logger) (Warehouse, error)

// AdapterRegistration contains info and the factory of an adapter.
type AdapterRegistration struct {
	Info    AdapterInfo
	Factory Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]AdapterRegistration)
)

// Register is called by each adapter's init() function.
func Register(reg AdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered adapters, sorted by type.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// GetFactory returns the factory for a warehouse type, or nil if it is not registered.
func GetFactory(warehouseType string) Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[warehouseType]; ok {
		return reg.Factory
	}
	return nil
}

// IsRegistered checks if an adapter type is available.
func IsRegistered(warehouseType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[warehouseType]
	return ok
}
