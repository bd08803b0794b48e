package services

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
)

func TestCatalogCache_LoadsOnce(t *testing.T) {
	cache := NewCatalogCache(writeSchemaExport(t), zap.NewNop())

	first, err := cache.Catalog()
	require.NoError(t, err)
	second, err := cache.Catalog()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, []string{"person", "witness"}, first.Entities())
}

func TestCatalogCache_Invalidate(t *testing.T) {
	cache := NewCatalogCache(writeSchemaExport(t), nil)

	first, err := cache.Catalog()
	require.NoError(t, err)
	cache.Invalidate()
	second, err := cache.Catalog()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestCatalogCache_MissingDir(t *testing.T) {
	cache := NewCatalogCache(filepath.Join(t.TempDir(), "absent"), nil)

	_, err := cache.Catalog()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSchemaDirMissing))
}
