package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/logging"
	"github.com/lostma-project/lostma-audit/pkg/metrics"
	"github.com/lostma-project/lostma-audit/pkg/models"
)

// ErrSyncUnsupported is returned when the warehouse is not a local file the tool can rebuild.
var ErrSyncUnsupported = errors.New("warehouse is not a materialized file")

// Materializer rebuilds the warehouse file and the schema export.
type Materializer interface {
	DownloadWarehouse(ctx context.Context, dest string, recordTypes []string) error
	DownloadSchema(ctx context.Context, workDir string) error
}

// SyncConfig locates the files a sync rewrites.
type SyncConfig struct {
	WarehousePath string
	// SchemaWorkDir is where the tool runs to write the schema export.
	SchemaWorkDir string
	SchemaDir     string
	// RecordTypes restricts downloads when a request names none.
	RecordTypes []string
}

// SyncService re-materializes the warehouse and the schema export.
type SyncService interface {
	Sync(ctx context.Context, recordTypes []string) (*models.SyncResult, error)
}

type syncService struct {
	cfg          SyncConfig
	warehouse    *datasource.Manager
	materializer Materializer
	catalogs     CatalogCache
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewSyncService(
	cfg SyncConfig,
	warehouse *datasource.Manager,
	materializer Materializer,
	catalogs CatalogCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &syncService{
		cfg:          cfg,
		warehouse:    warehouse,
		materializer: materializer,
		catalogs:     catalogs,
		metrics:      m,
		logger:       logger.Named("sync-service"),
	}
}

var _ SyncService = (*syncService)(nil)

// Sync closes the warehouse, downloads the new file and schema, then reopens. A failure
// is returned as is and never retried.
func (s *syncService) Sync(ctx context.Context, recordTypes []string) (*models.SyncResult, error) {
	if s.cfg.WarehousePath == "" {
		return nil, ErrSyncUnsupported
	}
	if len(recordTypes) == 0 {
		recordTypes = s.cfg.RecordTypes
	}

	result := &models.SyncResult{
		RunID:         uuid.New(),
		WarehousePath: s.cfg.WarehousePath,
		SchemaDir:     s.cfg.SchemaDir,
		RecordTypes:   slices.Clone(recordTypes),
		StartedAt:     time.Now(),
	}
	s.logger.Info("Starting warehouse sync",
		zap.String("run_id", result.RunID.String()),
		zap.Strings("record_types", recordTypes))

	err := s.warehouse.Replace(ctx, func(ctx context.Context) error {
		if err := s.materializer.DownloadWarehouse(ctx, s.cfg.WarehousePath, recordTypes); err != nil {
			return err
		}
		return s.materializer.DownloadSchema(ctx, s.cfg.SchemaWorkDir)
	})
	// The schema export may have been rewritten even when a later step failed.
	s.catalogs.Invalidate()
	s.metrics.IncSync(err == nil)
	if err != nil {
		s.logger.Error("Warehouse sync failed",
			zap.String("run_id", result.RunID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}

	result.Duration = time.Since(result.StartedAt)
	s.logger.Info("Warehouse sync complete",
		zap.String("run_id", result.RunID.String()),
		zap.Duration("duration", result.Duration))
	return result, nil
}
