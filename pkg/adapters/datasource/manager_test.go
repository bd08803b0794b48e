package datasource_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/testhelpers"
)

type countingOpener struct {
	mu     sync.Mutex
	opened []*testhelpers.FakeWarehouse
	err    error
}

func (o *countingOpener) open(context.Context) (datasource.Warehouse, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	wh := &testhelpers.FakeWarehouse{}
	o.opened = append(o.opened, wh)
	return wh, nil
}

func TestManager_OpensLazilyOnce(t *testing.T) {
	opener := &countingOpener{}
	m := datasource.NewManager(opener.open, nil)
	assert.Empty(t, opener.opened)

	for i := 0; i < 3; i++ {
		err := m.With(context.Background(), func(ctx context.Context, wh datasource.Warehouse) error {
			return wh.Ping(ctx)
		})
		require.NoError(t, err)
	}
	assert.Len(t, opener.opened, 1)
}

func TestManager_ReplaceClosesBeforeRunning(t *testing.T) {
	opener := &countingOpener{}
	m := datasource.NewManager(opener.open, nil)
	require.NoError(t, m.With(context.Background(), func(context.Context, datasource.Warehouse) error { return nil }))

	old := opener.opened[0]
	err := m.Replace(context.Background(), func(context.Context) error {
		assert.True(t, old.Closed, "handle must be closed before the file is replaced")
		return nil
	})
	require.NoError(t, err)

	require.Len(t, opener.opened, 2)
	assert.False(t, opener.opened[1].Closed)
	assert.Equal(t, 1, old.CloseCalls)
}

func TestManager_ReplaceFailureLeavesHandleClosed(t *testing.T) {
	opener := &countingOpener{}
	m := datasource.NewManager(opener.open, nil)
	require.NoError(t, m.With(context.Background(), func(context.Context, datasource.Warehouse) error { return nil }))

	toolErr := errors.New("download failed")
	err := m.Replace(context.Background(), func(context.Context) error { return toolErr })
	require.ErrorIs(t, err, toolErr)
	assert.Len(t, opener.opened, 1)
	assert.True(t, opener.opened[0].Closed)

	// The next reader reopens.
	require.NoError(t, m.With(context.Background(), func(context.Context, datasource.Warehouse) error { return nil }))
	assert.Len(t, opener.opened, 2)
}

func TestManager_OpenError(t *testing.T) {
	opener := &countingOpener{err: errors.New("no such file")}
	m := datasource.NewManager(opener.open, nil)

	err := m.With(context.Background(), func(context.Context, datasource.Warehouse) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")
}

func TestManager_Close(t *testing.T) {
	opener := &countingOpener{}
	m := datasource.NewManager(opener.open, nil)
	require.NoError(t, m.With(context.Background(), func(context.Context, datasource.Warehouse) error { return nil }))

	require.NoError(t, m.Close())
	assert.True(t, opener.opened[0].Closed)

	err := m.With(context.Background(), func(context.Context, datasource.Warehouse) error { return nil })
	require.ErrorIs(t, err, datasource.ErrManagerClosed)
	err = m.Replace(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, datasource.ErrManagerClosed)
}

func TestManager_PanicInReadReleasesLock(t *testing.T) {
	opener := &countingOpener{}
	m := datasource.NewManager(opener.open, nil)

	func() {
		defer func() {
			assert.NotNil(t, recover())
		}()
		_ = m.With(context.Background(), func(context.Context, datasource.Warehouse) error {
			panic("handler bug")
		})
	}()

	replaced := make(chan error, 1)
	go func() {
		replaced <- m.Replace(context.Background(), func(context.Context) error { return nil })
	}()

	select {
	case err := <-replaced:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Replace blocked after a panic inside With")
	}
	require.NoError(t, m.Close())
}

func TestRegistry(t *testing.T) {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{Type: "fake", DisplayName: "Fake"},
		Factory: func(context.Context, map[string]any, *zap.Logger) (datasource.Warehouse, error) {
			return &testhelpers.FakeWarehouse{}, nil
		},
	})

	assert.True(t, datasource.IsRegistered("fake"))
	assert.False(t, datasource.IsRegistered("mssql"))

	wh, err := datasource.Open(context.Background(), "fake", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", wh.Dialect().Name())

	_, err = datasource.Open(context.Background(), "mssql", nil, nil)
	require.Error(t, err)

	var types []string
	for _, info := range datasource.RegisteredAdapters() {
		types = append(types, info.Type)
	}
	assert.Contains(t, types, "fake")
}
