package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncResult describes one completed re-materialization of the warehouse.
type SyncResult struct {
	RunID         uuid.UUID     `json:"run_id"`
	WarehousePath string        `json:"warehouse_path"`
	SchemaDir     string        `json:"schema_dir"`
	RecordTypes   []string      `json:"record_types,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
}
