package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/config"
	"github.com/lostma-project/lostma-audit/pkg/logging"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
	Warehouse   string `json:"warehouse"`
}

// HealthResponse reports whether the warehouse answers.
type HealthResponse struct {
	Status    string `json:"status"`
	Warehouse string `json:"warehouse"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg       *config.Config
	warehouse *datasource.Manager
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. warehouse may be nil, in which case
// health reports only the process.
func NewHealthHandler(cfg *config.Config, warehouse *datasource.Manager, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, warehouse: warehouse, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// Returns 503 when the warehouse cannot be opened or pinged.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "ok", Warehouse: "unknown"}
	status := http.StatusOK

	if h.warehouse != nil {
		err := h.warehouse.With(r.Context(), func(ctx context.Context, wh datasource.Warehouse) error {
			return wh.Ping(ctx)
		})
		if err != nil {
			response.Status = "degraded"
			response.Warehouse = "unavailable"
			response.Error = logging.SanitizeError(err)
			status = http.StatusServiceUnavailable
		} else {
			response.Warehouse = "ok"
		}
	}

	if err := WriteJSON(w, status, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping requests.
// Returns detailed service information including version and environment.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "lostma-audit",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
		Warehouse:   h.cfg.Warehouse.Type,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
