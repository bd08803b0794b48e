package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/services"
)

// SyncRequest optionally restricts a sync to some record types.
type SyncRequest struct {
	RecordTypes []string `json:"record_types"`
}

// SyncHandler triggers re-materialization of the warehouse.
type SyncHandler struct {
	sync   services.SyncService
	logger *zap.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(sync services.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{sync: sync, logger: logger}
}

// RegisterRoutes registers the sync handler's routes on the given mux.
func (h *SyncHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sync", h.Sync)
}

// Sync handles POST /api/sync. The body is optional.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.sync.Sync(r.Context(), req.RecordTypes)
	if err != nil {
		writeServiceError(w, err, h.logger, "Warehouse sync failed")
		return
	}
	writeData(w, result, h.logger)
}
