package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/materialize"
	"github.com/lostma-project/lostma-audit/pkg/services"
	"github.com/lostma-project/lostma-audit/pkg/validationlog"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errorCode  string
		message    string
	}{
		{"bad request", http.StatusBadRequest, "invalid_language", "invalid language filter"},
		{"not found", http.StatusNotFound, "unknown_entity", "unknown entity type: \"unicorn\""},
		{"bad gateway", http.StatusBadGateway, "external_tool_failed", "external tool failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := ErrorResponse(w, tt.statusCode, tt.errorCode, tt.message)
			if err != nil {
				t.Fatalf("ErrorResponse returned error: %v", err)
			}

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.statusCode {
				t.Errorf("status code = %d, want %d", resp.StatusCode, tt.statusCode)
			}

			ct := resp.Header.Get("Content-Type")
			if ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			var body ApiResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}

			if body.Success {
				t.Error("body.success = true, want false")
			}
			if body.Error != tt.errorCode {
				t.Errorf("body.error = %q, want %q", body.Error, tt.errorCode)
			}
			if body.Message != tt.message {
				t.Errorf("body.message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}

func TestWriteJSON_Status200(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"entity": "witness"}

	err := WriteJSON(w, http.StatusOK, data)
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	resp := w.Result()
	defer resp.Body.Close()

	// Status 200 is the default for ResponseRecorder, WriteJSON should not call WriteHeader
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["entity"] != "witness" {
		t.Errorf("body[entity] = %q, want %q", body["entity"], "witness")
	}
}

func TestWriteJSON_NonOKStatus(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]int{"total_records": 5}

	err := WriteJSON(w, http.StatusAccepted, data)
	if err != nil {
		t.Fatalf("WriteJSON returned error: %v", err)
	}

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
}

func TestWriteJSON_UnencodableData(t *testing.T) {
	w := httptest.NewRecorder()
	data := make(chan int) // channels cannot be JSON-encoded

	err := WriteJSON(w, http.StatusOK, data)
	if err == nil {
		t.Error("expected error for unencodable data, got nil")
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown entity", fmt.Errorf("resolve: %w", apperrors.ErrUnknownEntity), http.StatusNotFound, "unknown_entity"},
		{"missing table", fmt.Errorf("part: %w", apperrors.ErrEntityMissing), http.StatusNotFound, "entity_missing"},
		{"hostile language", apperrors.ErrInvalidLanguage, http.StatusBadRequest, "invalid_language"},
		{"malformed log", &validationlog.BlockError{Line: 3, Reason: "truncated block"}, http.StatusUnprocessableEntity, "malformed_log"},
		{"tool failure", &materialize.ToolError{ExitCode: 1}, http.StatusBadGateway, "external_tool_failed"},
		{"sync on postgres", services.ErrSyncUnsupported, http.StatusConflict, "sync_unsupported"},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := errorStatus(tt.err)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}
