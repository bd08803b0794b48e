package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/materialize"
	"github.com/lostma-project/lostma-audit/pkg/metrics"
	"github.com/lostma-project/lostma-audit/pkg/schema"
	"github.com/lostma-project/lostma-audit/pkg/testhelpers"
)

type fakeMaterializer struct {
	wh           *testhelpers.FakeWarehouse
	closedOnCall []bool
	recordTypes  []string
	warehouseErr error
	schemaCalls  int
}

func (m *fakeMaterializer) DownloadWarehouse(_ context.Context, _ string, recordTypes []string) error {
	m.closedOnCall = append(m.closedOnCall, m.wh.Closed)
	m.recordTypes = recordTypes
	return m.warehouseErr
}

func (m *fakeMaterializer) DownloadSchema(context.Context, string) error {
	m.schemaCalls++
	return nil
}

type countingCatalogCache struct {
	invalidations int
}

func (c *countingCatalogCache) Catalog() (*schema.Catalog, error) { return nil, nil }
func (c *countingCatalogCache) Invalidate()                       { c.invalidations++ }

func syncConfig(t *testing.T) SyncConfig {
	dir := t.TempDir()
	return SyncConfig{
		WarehousePath: filepath.Join(dir, "lostma.db"),
		SchemaWorkDir: dir,
		SchemaDir:     filepath.Join(dir, "schema"),
		RecordTypes:   []string{"witness"},
	}
}

func TestSyncService_ClosesBeforeReplacing(t *testing.T) {
	wh := newFakeWarehouse()
	manager := newManager(wh)
	require.NoError(t, manager.With(context.Background(), func(context.Context, datasource.Warehouse) error { return nil }))

	mat := &fakeMaterializer{wh: wh}
	cache := &countingCatalogCache{}
	svc := NewSyncService(syncConfig(t), manager, mat, cache, metrics.New(), zap.NewNop())

	result, err := svc.Sync(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []bool{true}, mat.closedOnCall, "the warehouse is closed when the download runs")
	assert.Equal(t, 1, wh.CloseCalls)
	assert.Equal(t, 1, mat.schemaCalls)
	assert.Equal(t, []string{"witness"}, mat.recordTypes)
	assert.Equal(t, []string{"witness"}, result.RecordTypes)
	assert.Equal(t, 1, cache.invalidations)
}

func TestSyncService_RequestedRecordTypes(t *testing.T) {
	wh := newFakeWarehouse()
	mat := &fakeMaterializer{wh: wh}
	svc := NewSyncService(syncConfig(t), newManager(wh), mat, &countingCatalogCache{}, nil, nil)

	_, err := svc.Sync(context.Background(), []string{"part", "text"})
	require.NoError(t, err)
	assert.Equal(t, []string{"part", "text"}, mat.recordTypes)
}

func TestSyncService_ToolFailure(t *testing.T) {
	wh := newFakeWarehouse()
	mat := &fakeMaterializer{wh: wh, warehouseErr: &materialize.ToolError{Command: []string{"heurist"}, ExitCode: 2}}
	cache := &countingCatalogCache{}
	svc := NewSyncService(syncConfig(t), newManager(wh), mat, cache, nil, nil)

	_, err := svc.Sync(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalTool))

	var toolErr *materialize.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, 2, toolErr.ExitCode)
	assert.Zero(t, mat.schemaCalls, "no further step after a failure")
	assert.Equal(t, 1, cache.invalidations)
}

func TestSyncService_Unsupported(t *testing.T) {
	wh := newFakeWarehouse()
	svc := NewSyncService(SyncConfig{}, newManager(wh), &fakeMaterializer{wh: wh}, &countingCatalogCache{}, nil, nil)

	_, err := svc.Sync(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSyncUnsupported)
}
