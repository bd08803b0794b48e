package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/logging"
	"github.com/lostma-project/lostma-audit/pkg/services"
)

// ApiResponse is the envelope of every JSON API response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, ApiResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// errorStatus maps an engine error to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrUnknownEntity):
		return http.StatusNotFound, "unknown_entity"
	case errors.Is(err, apperrors.ErrEntityMissing):
		return http.StatusNotFound, "entity_missing"
	case errors.Is(err, apperrors.ErrInvalidLanguage):
		return http.StatusBadRequest, "invalid_language"
	case errors.Is(err, apperrors.ErrMalformedLogBlock):
		return http.StatusUnprocessableEntity, "malformed_log"
	case errors.Is(err, apperrors.ErrExternalTool):
		return http.StatusBadGateway, "external_tool_failed"
	case errors.Is(err, apperrors.ErrSchemaDirMissing):
		return http.StatusServiceUnavailable, "schema_missing"
	case errors.Is(err, services.ErrSyncUnsupported):
		return http.StatusConflict, "sync_unsupported"
	case errors.Is(err, datasource.ErrManagerClosed):
		return http.StatusServiceUnavailable, "shutting_down"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError writes the response for a failed service call. Server-side failures
// are logged; their messages are sanitized before reaching the client.
func writeServiceError(w http.ResponseWriter, err error, logger *zap.Logger, msg string) {
	status, code := errorStatus(err)
	message := logging.SanitizeError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.String("error", message))
	}
	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeData writes a successful envelope around data.
func writeData(w http.ResponseWriter, data any, logger *zap.Logger) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
