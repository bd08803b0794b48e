package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/logging"
)

// ErrManagerClosed is returned once the manager has been closed.
var ErrManagerClosed = errors.New("warehouse manager is closed")

// Manager owns the single open warehouse handle. Reads share the handle; re-materializing
// the warehouse takes it exclusively, closing the handle before the backing file is replaced.
type Manager struct {
	mu     sync.RWMutex
	open   Opener
	wh     Warehouse
	closed bool
	logger *zap.Logger
}

// NewManager creates a manager that opens the warehouse lazily on first use.
func NewManager(open Opener, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{open: open, logger: logger}
}

// With runs fn with the open warehouse, opening it first if needed.
func (m *Manager) With(ctx context.Context, fn func(ctx context.Context, wh Warehouse) error) error {
	for {
		done, err := m.withOpen(ctx, fn)
		if done {
			return err
		}

		m.mu.Lock()
		if m.closed {
			err = ErrManagerClosed
		} else {
			err = m.openLocked(ctx)
		}
		m.mu.Unlock()
		if err != nil {
			return err
		}
	}
}

// withOpen runs fn under the read lock when a handle is open. done is false when the
// handle still has to be opened.
func (m *Manager) withOpen(ctx context.Context, fn func(ctx context.Context, wh Warehouse) error) (done bool, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return true, ErrManagerClosed
	}
	if m.wh == nil {
		return false, nil
	}
	return true, fn(ctx, m.wh)
}

// Replace closes the open handle, runs fn while no handle exists, then reopens.
// If fn fails the handle stays closed and the next With reopens it.
func (m *Manager) Replace(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	if err := m.closeLocked(); err != nil {
		return fmt.Errorf("close warehouse before replace: %w", err)
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return m.openLocked(ctx)
}

// Close releases the open handle. The manager cannot be used afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeLocked()
}

// Caller must hold m.mu for writing.
func (m *Manager) openLocked(ctx context.Context) error {
	if m.wh != nil {
		return nil
	}
	wh, err := m.open(ctx)
	if err != nil {
		m.logger.Error("Failed to open warehouse", zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("open warehouse: %w", err)
	}
	m.wh = wh
	m.logger.Debug("Warehouse opened", zap.String("dialect", wh.Dialect().Name()))
	return nil
}

// Caller must hold m.mu for writing.
func (m *Manager) closeLocked() error {
	if m.wh == nil {
		return nil
	}
	err := m.wh.Close()
	m.wh = nil
	if err == nil {
		m.logger.Debug("Warehouse closed")
	}
	return err
}
