package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/models"
	"github.com/lostma-project/lostma-audit/pkg/services"
)

// AuditHandler serves the completeness, vocabulary and validation-log reports.
type AuditHandler struct {
	completeness services.CompletenessService
	enums        services.EnumValidationService
	validation   services.ValidationLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(
	completeness services.CompletenessService,
	enums services.EnumValidationService,
	validation services.ValidationLogService,
	logger *zap.Logger,
) *AuditHandler {
	return &AuditHandler{
		completeness: completeness,
		enums:        enums,
		validation:   validation,
		logger:       logger,
	}
}

// RegisterRoutes registers the audit handler's routes on the given mux.
func (h *AuditHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/entities", h.ListEntities)
	mux.HandleFunc("GET /api/completeness", h.AnalyzeAll)
	mux.HandleFunc("GET /api/completeness/{entity}", h.Analyze)
	mux.HandleFunc("GET /api/required", h.RequiredSummary)
	mux.HandleFunc("GET /api/enums", h.Enums)
	mux.HandleFunc("GET /api/validation-log", h.ValidationLog)
}

// ListEntities handles GET /api/entities
func (h *AuditHandler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.completeness.Entities(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to list entities")
		return
	}
	writeData(w, entities, h.logger)
}

// Analyze handles GET /api/completeness/{entity}?language=&fields=a,b
func (h *AuditHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	entity := r.PathValue("entity")
	report, err := h.completeness.Analyze(r.Context(), entity, parseLanguage(r), parseSelection(r))
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to analyze entity")
		return
	}
	writeData(w, report, h.logger)
}

// AnalyzeAll handles GET /api/completeness?language=
func (h *AuditHandler) AnalyzeAll(w http.ResponseWriter, r *http.Request) {
	reports, err := h.completeness.AnalyzeAll(r.Context(), parseLanguage(r))
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to analyze entities")
		return
	}
	if reports == nil {
		reports = make([]*models.CompletenessReport, 0)
	}
	writeData(w, reports, h.logger)
}

// RequiredSummary handles GET /api/required?language=
func (h *AuditHandler) RequiredSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.completeness.RequiredSummary(r.Context(), parseLanguage(r))
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to summarize required fields")
		return
	}
	if summaries == nil {
		summaries = make([]models.RequiredSummary, 0)
	}
	writeData(w, summaries, h.logger)
}

// Enums handles GET /api/enums
func (h *AuditHandler) Enums(w http.ResponseWriter, r *http.Request) {
	defects, err := h.enums.Validate(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to validate vocabularies")
		return
	}
	if defects == nil {
		defects = make([]models.EnumDefect, 0)
	}
	writeData(w, defects, h.logger)
}

// ValidationLog handles GET /api/validation-log
func (h *AuditHandler) ValidationLog(w http.ResponseWriter, r *http.Request) {
	reports, err := h.validation.Report(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger, "Failed to report validation log")
		return
	}
	if reports == nil {
		reports = make([]models.LogDefectReport, 0)
	}
	writeData(w, reports, h.logger)
}
