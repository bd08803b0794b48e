package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/joingraph"
	"github.com/lostma-project/lostma-audit/pkg/metrics"
	"github.com/lostma-project/lostma-audit/pkg/models"
	"github.com/lostma-project/lostma-audit/pkg/schema"
)

// invalidValueSample caps the distinct invalid values reported per field.
const invalidValueSample = 20

// EnumValidationService checks enumerable fields against their controlled vocabularies.
type EnumValidationService interface {
	Validate(ctx context.Context) ([]models.EnumDefect, error)
}

type enumValidationService struct {
	warehouse *datasource.Manager
	registry  *joingraph.Registry
	catalogs  CatalogCache
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewEnumValidationService(
	warehouse *datasource.Manager,
	registry *joingraph.Registry,
	catalogs CatalogCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) EnumValidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &enumValidationService{
		warehouse: warehouse,
		registry:  registry,
		catalogs:  catalogs,
		metrics:   m,
		logger:    logger.Named("enum-validation-service"),
	}
}

var _ EnumValidationService = (*enumValidationService)(nil)

type enumField struct {
	column datasource.ColumnMetadata
	terms  []string
}

func (s *enumValidationService) Validate(ctx context.Context) ([]models.EnumDefect, error) {
	catalog, err := s.catalogs.Catalog()
	if err != nil {
		return nil, err
	}

	var defects []models.EnumDefect
	err = s.warehouse.With(ctx, func(ctx context.Context, wh datasource.Warehouse) error {
		for _, e := range s.registry.Entities() {
			if len(catalog.VocabularyFields(e.Name)) == 0 {
				continue
			}
			exists, err := wh.TableExists(ctx, e.StorageName)
			if err != nil {
				return fmt.Errorf("check table %s: %w", e.StorageName, err)
			}
			if !exists {
				continue
			}
			found, err := s.validateEntity(ctx, wh, catalog, e)
			if err != nil {
				return err
			}
			defects = append(defects, found...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defects, nil
}

func (s *enumValidationService) validateEntity(
	ctx context.Context,
	wh datasource.Warehouse,
	catalog *schema.Catalog,
	e *models.EntityType,
) ([]models.EnumDefect, error) {
	columns, err := wh.DiscoverColumns(ctx, e.StorageName)
	if err != nil {
		return nil, fmt.Errorf("discover columns of %s: %w", e.StorageName, err)
	}

	var fields []enumField
	for _, col := range columns {
		terms, ok := catalog.Vocabulary(e.Name, col.ColumnName)
		if !ok || len(terms) == 0 {
			continue
		}
		fields = append(fields, enumField{column: col, terms: terms})
	}
	if len(fields) == 0 {
		s.logger.Debug("No enumerable live fields",
			zap.String("entity", e.Name))
		return nil, nil
	}

	// Vocabularies are checked over the whole table, never a language scope.
	tmpl, err := s.registry.Template(e, wh.Dialect(), "")
	if err != nil {
		return nil, err
	}

	total, err := queryOne(ctx, wh, tmpl.RowCount())
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", e.Name, err)
	}
	if total == 0 {
		return nil, nil
	}

	predicates := make([]joingraph.Predicate, len(fields))
	for i, f := range fields {
		if f.column.IsArray {
			predicates[i] = tmpl.ListHasElementOutside(f.column.ColumnName, f.terms)
		} else {
			predicates[i] = tmpl.ScalarOutside(f.column.ColumnName, f.terms)
		}
	}
	counts, err := wh.QueryCounts(ctx, tmpl.CountEach(predicates...))
	if err != nil {
		return nil, fmt.Errorf("count vocabulary defects of %s: %w", e.Name, err)
	}
	if len(counts) != len(fields) {
		return nil, fmt.Errorf("count vocabulary defects of %s: got %d counts for %d fields", e.Name, len(counts), len(fields))
	}

	defects := make([]models.EnumDefect, 0, len(fields))
	for i, f := range fields {
		defect := models.EnumDefect{
			Entity:            e.Name,
			Field:             f.column.ColumnName,
			IsList:            f.column.IsArray,
			DefectCount:       counts[i],
			TotalCount:        total,
			PercentageProblem: models.Percentage(counts[i], total),
		}
		if counts[i] > 0 {
			values, err := wh.QueryStrings(ctx, tmpl.ValuesOutside(f.column.ColumnName, f.column.IsArray, f.terms, invalidValueSample))
			if err != nil {
				return nil, fmt.Errorf("sample invalid values of %s.%s: %w", e.Name, f.column.ColumnName, err)
			}
			defect.InvalidValues = values
			s.logger.Info("Values outside controlled vocabulary",
				zap.String("entity", e.Name),
				zap.String("field", f.column.ColumnName),
				zap.Int64("records", counts[i]))
		}
		s.metrics.SetEnumDefects(e.Name, f.column.ColumnName, counts[i])
		defects = append(defects, defect)
	}
	return defects, nil
}
