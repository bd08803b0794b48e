package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/joingraph"
	"github.com/lostma-project/lostma-audit/pkg/metrics"
	"github.com/lostma-project/lostma-audit/pkg/models"
	"github.com/lostma-project/lostma-audit/pkg/schema"
)

// CompletenessService measures how many records of an entity leave each field empty.
type CompletenessService interface {
	// Entities lists the registered entities and whether the warehouse holds them, followed
	// by the warehouse tables no registered entity maps to.
	Entities(ctx context.Context) ([]models.EntityStatus, error)
	// Analyze reports the empty-field counts of one entity, scoped to language when the
	// entity belongs to the corpus and language is not empty.
	Analyze(ctx context.Context, entity, language string, selection models.ColumnSelection) (*models.CompletenessReport, error)
	// AnalyzeAll analyzes every registered entity present in the warehouse.
	AnalyzeAll(ctx context.Context, language string) ([]*models.CompletenessReport, error)
	// RequiredSummary counts, per entity, the records with at least one empty required field.
	RequiredSummary(ctx context.Context, language string) ([]models.RequiredSummary, error)
}

type completenessService struct {
	warehouse *datasource.Manager
	registry  *joingraph.Registry
	catalogs  CatalogCache
	levels    []models.RequirementLevel
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCompletenessService creates the service. Only fields declared at one of levels are
// reported; an empty list reports every level.
func NewCompletenessService(
	warehouse *datasource.Manager,
	registry *joingraph.Registry,
	catalogs CatalogCache,
	levels []models.RequirementLevel,
	m *metrics.Metrics,
	logger *zap.Logger,
) CompletenessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(levels) == 0 {
		levels = models.AllRequirementLevels
	}
	return &completenessService{
		warehouse: warehouse,
		registry:  registry,
		catalogs:  catalogs,
		levels:    slices.Clone(levels),
		metrics:   m,
		logger:    logger.Named("completeness-service"),
	}
}

var _ CompletenessService = (*completenessService)(nil)

// reportField is a live column selected for a report.
type reportField struct {
	column datasource.ColumnMetadata
	level  models.RequirementLevel
}

func (s *completenessService) Entities(ctx context.Context) ([]models.EntityStatus, error) {
	entities := s.registry.Entities()
	out := make([]models.EntityStatus, 0, len(entities))
	err := s.warehouse.With(ctx, func(ctx context.Context, wh datasource.Warehouse) error {
		for _, e := range entities {
			present, err := wh.TableExists(ctx, e.StorageName)
			if err != nil {
				return fmt.Errorf("check table %s: %w", e.StorageName, err)
			}
			out = append(out, models.EntityStatus{
				Name:            e.Name,
				StorageName:     e.StorageName,
				IsCorpus:        e.IsCorpus,
				HasReviewStatus: e.HasReviewStatus,
				Present:         present,
				Registered:      true,
			})
		}

		tables, err := wh.DiscoverTables(ctx)
		if err != nil {
			return fmt.Errorf("discover tables: %w", err)
		}
		var unregistered []string
		for _, t := range tables {
			if datasource.IsBaseTable(t.TableName) {
				continue
			}
			if _, ok := s.registry.Lookup(t.TableName); !ok {
				unregistered = append(unregistered, t.TableName)
			}
		}
		slices.Sort(unregistered)
		for _, table := range unregistered {
			out = append(out, models.EntityStatus{StorageName: table, Present: true})
		}
		if len(unregistered) > 0 {
			s.logger.Info("Warehouse tables without a registered entity",
				zap.Strings("tables", unregistered))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *completenessService) Analyze(ctx context.Context, entity, language string, selection models.ColumnSelection) (*models.CompletenessReport, error) {
	e, err := s.registry.Resolve(entity)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogs.Catalog()
	if err != nil {
		return nil, err
	}

	var report *models.CompletenessReport
	err = s.warehouse.With(ctx, func(ctx context.Context, wh datasource.Warehouse) error {
		exists, err := wh.TableExists(ctx, e.StorageName)
		if err != nil {
			return fmt.Errorf("check table %s: %w", e.StorageName, err)
		}
		if !exists {
			return fmt.Errorf("%s (%s): %w", e.Name, e.StorageName, apperrors.ErrEntityMissing)
		}
		report, err = s.analyze(ctx, wh, catalog, e, language, selection)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *completenessService) AnalyzeAll(ctx context.Context, language string) ([]*models.CompletenessReport, error) {
	catalog, err := s.catalogs.Catalog()
	if err != nil {
		return nil, err
	}

	var reports []*models.CompletenessReport
	err = s.warehouse.With(ctx, func(ctx context.Context, wh datasource.Warehouse) error {
		for _, e := range s.registry.Entities() {
			if datasource.IsBaseTable(e.StorageName) {
				continue
			}
			exists, err := wh.TableExists(ctx, e.StorageName)
			if err != nil {
				return fmt.Errorf("check table %s: %w", e.StorageName, err)
			}
			if !exists {
				s.logger.Debug("Entity table not in warehouse, skipping",
					zap.String("entity", e.Name),
					zap.String("table", e.StorageName))
				continue
			}
			report, err := s.analyze(ctx, wh, catalog, e, language, models.AllColumns{})
			if err != nil {
				return fmt.Errorf("analyze %s: %w", e.Name, err)
			}
			reports = append(reports, report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// analyze runs the analysis of one entity whose table is known to exist.
func (s *completenessService) analyze(
	ctx context.Context,
	wh datasource.Warehouse,
	catalog *schema.Catalog,
	e *models.EntityType,
	language string,
	selection models.ColumnSelection,
) (*models.CompletenessReport, error) {
	start := time.Now()
	if selection == nil {
		selection = models.AllColumns{}
	}

	tmpl, err := s.registry.Template(e, wh.Dialect(), language)
	if err != nil {
		return nil, err
	}

	columns, err := wh.DiscoverColumns(ctx, e.StorageName)
	if err != nil {
		return nil, fmt.Errorf("discover columns of %s: %w", e.StorageName, err)
	}

	fields, excluded := s.selectFields(catalog, e, columns, selection)

	report := &models.CompletenessReport{
		RunID:          uuid.New(),
		Entity:         e.Name,
		StorageName:    e.StorageName,
		ExcludedFields: excluded,
		Fields:         []models.CompletenessRecord{},
	}
	if tmpl.Scoped() {
		report.Language = language
	}

	if len(excluded) > 0 {
		s.logger.Warn("Live fields missing from schema export, excluded from report",
			zap.String("entity", e.Name),
			zap.Strings("fields", excluded))
		s.metrics.AddExcludedFields(e.Name, len(excluded))
	}

	total, err := queryOne(ctx, wh, tmpl.RowCount())
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", e.Name, err)
	}
	report.TotalRecords = total
	if total == 0 {
		report.NoData = true
		s.logger.Info("No records in scope",
			zap.String("entity", e.Name),
			zap.String("language", language))
		s.metrics.ObserveAnalysis(e.Name, tmpl.Scoped(), time.Since(start))
		return report, nil
	}

	if len(fields) > 0 {
		predicates := make([]string, len(fields))
		for i, f := range fields {
			if f.column.IsArray {
				predicates[i] = tmpl.ListEmpty(f.column.ColumnName)
			} else {
				predicates[i] = tmpl.ScalarNull(f.column.ColumnName)
			}
		}
		counts, err := wh.QueryCounts(ctx, tmpl.CountWhere(predicates))
		if err != nil {
			return nil, fmt.Errorf("count empty fields of %s: %w", e.Name, err)
		}
		if len(counts) != len(fields) {
			return nil, fmt.Errorf("count empty fields of %s: got %d counts for %d fields", e.Name, len(counts), len(fields))
		}

		for i, f := range fields {
			pct := models.Percentage(counts[i], total)
			report.Fields = append(report.Fields, models.CompletenessRecord{
				Entity:          e.Name,
				Field:           f.column.ColumnName,
				Requirement:     f.level,
				DataType:        f.column.DataType,
				EmptyCount:      counts[i],
				TotalCount:      total,
				PercentageEmpty: pct,
			})
			s.metrics.SetFieldEmpty(e.Name, f.column.ColumnName, language, pct)
		}
	}

	if stmt, ok := tmpl.ActionRequired(); ok {
		count, err := queryOne(ctx, wh, stmt)
		if err != nil {
			return nil, fmt.Errorf("count action-required %s: %w", e.Name, err)
		}
		report.ActionRequired = models.ActionRequired{Applicable: true, Count: count}
	}

	s.metrics.ObserveAnalysis(e.Name, tmpl.Scoped(), time.Since(start))
	s.logger.Debug("Analyzed entity",
		zap.String("run_id", report.RunID.String()),
		zap.String("entity", e.Name),
		zap.Int64("total", total),
		zap.Int("fields", len(report.Fields)),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

// selectFields keeps the reportable live columns in live order. Columns the export does
// not declare are returned as excluded; declared columns outside the level filter are
// dropped silently.
func (s *completenessService) selectFields(
	catalog *schema.Catalog,
	e *models.EntityType,
	columns []datasource.ColumnMetadata,
	selection models.ColumnSelection,
) ([]reportField, []string) {
	var fields []reportField
	var excluded []string
	for _, col := range columns {
		if schema.IsIdentifierColumn(col.ColumnName) || !selection.Includes(col.ColumnName) {
			continue
		}
		level, ok := catalog.Requirement(e.Name, col.ColumnName)
		if !ok {
			excluded = append(excluded, col.ColumnName)
			continue
		}
		if !slices.Contains(s.levels, level) {
			continue
		}
		fields = append(fields, reportField{column: col, level: level})
	}
	return fields, excluded
}

func (s *completenessService) RequiredSummary(ctx context.Context, language string) ([]models.RequiredSummary, error) {
	catalog, err := s.catalogs.Catalog()
	if err != nil {
		return nil, err
	}

	var out []models.RequiredSummary
	err = s.warehouse.With(ctx, func(ctx context.Context, wh datasource.Warehouse) error {
		for _, e := range s.registry.Entities() {
			required := catalog.FieldsWithLevel(e.Name, models.RequirementRequired)
			if len(required) == 0 {
				continue
			}
			exists, err := wh.TableExists(ctx, e.StorageName)
			if err != nil {
				return fmt.Errorf("check table %s: %w", e.StorageName, err)
			}
			if !exists {
				continue
			}
			summary, ok, err := s.requiredSummary(ctx, wh, e, required, language)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, summary)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *completenessService) requiredSummary(
	ctx context.Context,
	wh datasource.Warehouse,
	e *models.EntityType,
	required []string,
	language string,
) (models.RequiredSummary, bool, error) {
	tmpl, err := s.registry.Template(e, wh.Dialect(), language)
	if err != nil {
		return models.RequiredSummary{}, false, err
	}
	columns, err := wh.DiscoverColumns(ctx, e.StorageName)
	if err != nil {
		return models.RequiredSummary{}, false, fmt.Errorf("discover columns of %s: %w", e.StorageName, err)
	}

	var empties []joingraph.Predicate
	for _, col := range columns {
		if schema.IsIdentifierColumn(col.ColumnName) || !slices.Contains(required, col.ColumnName) {
			continue
		}
		if col.IsArray {
			empties = append(empties, joingraph.Literal(tmpl.ListEmpty(col.ColumnName)))
		} else {
			empties = append(empties, joingraph.Literal(tmpl.ScalarNull(col.ColumnName)))
		}
	}
	if len(empties) == 0 {
		return models.RequiredSummary{}, false, nil
	}

	total, err := queryOne(ctx, wh, tmpl.RowCount())
	if err != nil {
		return models.RequiredSummary{}, false, fmt.Errorf("count %s: %w", e.Name, err)
	}
	var empty int64
	if total > 0 {
		empty, err = queryOne(ctx, wh, tmpl.CountEach(joingraph.AnyOf(empties...)))
		if err != nil {
			return models.RequiredSummary{}, false, fmt.Errorf("count empty required fields of %s: %w", e.Name, err)
		}
	}

	return models.RequiredSummary{
		Entity:               e.Name,
		EmptyRequiredRecords: empty,
		TotalRecords:         total,
		PercentageProblem:    models.Percentage(empty, total),
	}, true, nil
}
