package services

import (
	"sync"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/schema"
)

// CatalogCache lazily loads the schema export once and serves the same read-only catalog
// to every analysis until it is invalidated.
type CatalogCache interface {
	Catalog() (*schema.Catalog, error)
	// Invalidate drops the loaded catalog; the next call reloads the export.
	Invalidate()
}

type catalogCache struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	catalog *schema.Catalog
}

// NewCatalogCache creates a cache over the schema export directory. Every requirement
// level is loaded; callers filter levels themselves.
func NewCatalogCache(dir string, logger *zap.Logger) CatalogCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalogCache{
		dir:    dir,
		logger: logger.Named("catalog-cache"),
	}
}

var _ CatalogCache = (*catalogCache)(nil)

func (c *catalogCache) Catalog() (*schema.Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog != nil {
		return c.catalog, nil
	}

	catalog, err := schema.LoadCatalog(c.dir, nil, c.logger)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Loaded schema export",
		zap.String("dir", c.dir),
		zap.Int("entities", len(catalog.Entities())),
		zap.Int("warnings", len(catalog.Warnings())))
	c.catalog = catalog
	return catalog, nil
}

func (c *catalogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = nil
}
