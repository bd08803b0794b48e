package handlers

import (
	"context"

	"github.com/lostma-project/lostma-audit/pkg/models"
	"github.com/lostma-project/lostma-audit/pkg/services"
)

type mockCompletenessService struct {
	entities  []models.EntityStatus
	report    *models.CompletenessReport
	reports   []*models.CompletenessReport
	summaries []models.RequiredSummary
	err       error

	gotEntity    string
	gotLanguage  string
	gotSelection models.ColumnSelection
}

func (m *mockCompletenessService) Entities(context.Context) ([]models.EntityStatus, error) {
	return m.entities, m.err
}

func (m *mockCompletenessService) Analyze(_ context.Context, entity, language string, selection models.ColumnSelection) (*models.CompletenessReport, error) {
	m.gotEntity, m.gotLanguage, m.gotSelection = entity, language, selection
	return m.report, m.err
}

func (m *mockCompletenessService) AnalyzeAll(_ context.Context, language string) ([]*models.CompletenessReport, error) {
	m.gotLanguage = language
	return m.reports, m.err
}

func (m *mockCompletenessService) RequiredSummary(_ context.Context, language string) ([]models.RequiredSummary, error) {
	m.gotLanguage = language
	return m.summaries, m.err
}

type mockEnumService struct {
	defects []models.EnumDefect
	err     error
}

func (m *mockEnumService) Validate(context.Context) ([]models.EnumDefect, error) {
	return m.defects, m.err
}

type mockValidationLogService struct {
	reports []models.LogDefectReport
	err     error
}

func (m *mockValidationLogService) Report(context.Context) ([]models.LogDefectReport, error) {
	return m.reports, m.err
}

type mockSyncService struct {
	result         *models.SyncResult
	err            error
	gotRecordTypes []string
}

func (m *mockSyncService) Sync(_ context.Context, recordTypes []string) (*models.SyncResult, error) {
	m.gotRecordTypes = recordTypes
	return m.result, m.err
}

var (
	_ services.CompletenessService   = (*mockCompletenessService)(nil)
	_ services.EnumValidationService = (*mockEnumService)(nil)
	_ services.ValidationLogService  = (*mockValidationLogService)(nil)
	_ services.SyncService           = (*mockSyncService)(nil)
)
