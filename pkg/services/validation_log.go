package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/joingraph"
	"github.com/lostma-project/lostma-audit/pkg/metrics"
	"github.com/lostma-project/lostma-audit/pkg/models"
	"github.com/lostma-project/lostma-audit/pkg/validationlog"
)

// ValidationLogService cross-references the editorial validation log with row counts.
type ValidationLogService interface {
	// Report returns, per entity with logged records, the share of records on the log.
	// Entities come in the order their record type first appears in the log.
	Report(ctx context.Context) ([]models.LogDefectReport, error)
}

type validationLogService struct {
	path      string
	warehouse *datasource.Manager
	registry  *joingraph.Registry
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewValidationLogService(
	path string,
	warehouse *datasource.Manager,
	registry *joingraph.Registry,
	m *metrics.Metrics,
	logger *zap.Logger,
) ValidationLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &validationLogService{
		path:      path,
		warehouse: warehouse,
		registry:  registry,
		metrics:   m,
		logger:    logger.Named("validation-log-service"),
	}
}

var _ ValidationLogService = (*validationLogService)(nil)

func (s *validationLogService) Report(ctx context.Context) ([]models.LogDefectReport, error) {
	summary, err := s.readLog()
	if err != nil {
		return nil, err
	}
	if len(summary.RecordTypes()) == 0 {
		return []models.LogDefectReport{}, nil
	}

	reports := []models.LogDefectReport{}
	err = s.warehouse.With(ctx, func(ctx context.Context, wh datasource.Warehouse) error {
		ids, err := wh.RecordTypes(ctx)
		if err != nil {
			return fmt.Errorf("read record types: %w", err)
		}
		names := make(map[int]string, len(ids))
		for name, id := range ids {
			names[id] = name
		}

		for _, recordType := range summary.RecordTypes() {
			name, ok := names[recordType]
			if !ok {
				s.logger.Warn("Logged record type not in warehouse",
					zap.Int("record_type", recordType))
				continue
			}
			e, ok := s.registry.Lookup(name)
			if !ok {
				s.logger.Debug("Logged record type has no registered entity",
					zap.Int("record_type", recordType),
					zap.String("name", name))
				continue
			}
			exists, err := wh.TableExists(ctx, e.StorageName)
			if err != nil {
				return fmt.Errorf("check table %s: %w", e.StorageName, err)
			}
			if !exists {
				continue
			}

			tmpl, err := s.registry.Template(e, wh.Dialect(), "")
			if err != nil {
				return err
			}
			total, err := queryOne(ctx, wh, tmpl.RowCount())
			if err != nil {
				return fmt.Errorf("count %s: %w", e.Name, err)
			}

			onLog := summary.Count(recordType)
			reports = append(reports, models.LogDefectReport{
				Entity:            e.Name,
				RecordType:        recordType,
				RecordsOnLog:      onLog,
				TotalRecords:      total,
				PercentageProblem: models.Percentage(int64(onLog), total),
			})
			s.metrics.SetLogDefects(e.Name, onLog)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// readLog parses the whole log. A log file that does not exist yet yields an empty summary.
func (s *validationLogService) readLog() (*models.ValidationSummary, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("Validation log not found, nothing to report", zap.String("path", s.path))
		return models.NewValidationSummary(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open validation log: %w", err)
	}
	defer f.Close()

	summary, err := validationlog.Summarize(validationlog.NewParser(f))
	if err != nil {
		s.logger.Error("Failed to parse validation log",
			zap.String("path", s.path),
			zap.Error(err))
		return nil, err
	}
	return summary, nil
}
