package models

import "slices"

// ValidationLogEntry is one parsed block of the editorial validation log.
type ValidationLogEntry struct {
	Time       string `json:"time"`
	Level      string `json:"level"`
	RecordType int    `json:"record_type"`
	RecordID   int    `json:"record_id"`
	Rule       string `json:"rule"`
	Problem    string `json:"problem"`
}

// ValidationSummary groups logged record ids by record type.
// Record types and ids keep their first-seen order and are deduplicated.
type ValidationSummary struct {
	order []int
	ids   map[int][]int
	seen  map[int]map[int]struct{}
}

// NewValidationSummary returns an empty summary.
func NewValidationSummary() *ValidationSummary {
	return &ValidationSummary{
		ids:  make(map[int][]int),
		seen: make(map[int]map[int]struct{}),
	}
}

// Add records the entry's record id under its record type.
func (s *ValidationSummary) Add(entry ValidationLogEntry) {
	seen, ok := s.seen[entry.RecordType]
	if !ok {
		seen = make(map[int]struct{})
		s.seen[entry.RecordType] = seen
		s.order = append(s.order, entry.RecordType)
	}
	if _, dup := seen[entry.RecordID]; dup {
		return
	}
	seen[entry.RecordID] = struct{}{}
	s.ids[entry.RecordType] = append(s.ids[entry.RecordType], entry.RecordID)
}

// RecordTypes returns the record types in first-seen order.
func (s *ValidationSummary) RecordTypes() []int {
	return slices.Clone(s.order)
}

// RecordIDs returns the distinct record ids logged for a record type, in first-seen order.
func (s *ValidationSummary) RecordIDs(recordType int) []int {
	return slices.Clone(s.ids[recordType])
}

// Count returns the number of distinct record ids logged for a record type.
func (s *ValidationSummary) Count(recordType int) int {
	return len(s.ids[recordType])
}

// LogDefectReport cross-references logged defects with the row count of an entity.
type LogDefectReport struct {
	Entity            string  `json:"entity"`
	RecordType        int     `json:"record_type"`
	RecordsOnLog      int     `json:"records_on_log"`
	TotalRecords      int64   `json:"total_records"`
	PercentageProblem float64 `json:"percentage_problem"`
}
