package models

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// NoFieldForTable is reported in place of an action-required count when the entity
// has no review-status field.
const NoFieldForTable = "No field for this table"

// CompletenessRecord is one row of a completeness report.
type CompletenessRecord struct {
	Entity          string           `json:"entity"`
	Field           string           `json:"field"`
	Requirement     RequirementLevel `json:"requirement"`
	DataType        string           `json:"data_type"`
	EmptyCount      int64            `json:"empty_records"`
	TotalCount      int64            `json:"total_records"`
	PercentageEmpty float64          `json:"percentage_empty"`
}

// ActionRequired holds the action-required count of an entity, or marks it as not applicable.
type ActionRequired struct {
	Applicable bool
	Count      int64
}

// String returns the count, or the NoFieldForTable sentinel when not applicable.
func (a ActionRequired) String() string {
	if !a.Applicable {
		return NoFieldForTable
	}
	return strconv.FormatInt(a.Count, 10)
}

// MarshalJSON renders the count as a number, or the sentinel string when not applicable.
func (a ActionRequired) MarshalJSON() ([]byte, error) {
	if !a.Applicable {
		return json.Marshal(NoFieldForTable)
	}
	return json.Marshal(a.Count)
}

// CompletenessReport is the result of one completeness analysis of an entity.
type CompletenessReport struct {
	RunID        uuid.UUID `json:"run_id"`
	Entity       string    `json:"entity"`
	StorageName  string    `json:"storage_name"`
	Language     string    `json:"language,omitempty"`
	NoData       bool      `json:"no_data"`
	TotalRecords int64     `json:"total_records"`
	// Fields is ordered by live column order.
	Fields         []CompletenessRecord `json:"fields"`
	ActionRequired ActionRequired       `json:"action_required"`
	// ExcludedFields lists live columns absent from the requirement catalog.
	ExcludedFields []string `json:"excluded_fields,omitempty"`
}

// RequiredSummary counts the records of an entity with at least one empty required field.
type RequiredSummary struct {
	Entity               string  `json:"entity"`
	EmptyRequiredRecords int64   `json:"empty_required_records"`
	TotalRecords         int64   `json:"total_records"`
	PercentageProblem    float64 `json:"percentage_problem"`
}

// Percentage returns part/total as a percentage rounded to two decimals.
// It returns 0 when total is 0, never exceeds 100, and never rounds a non-zero
// part down to 0: the smallest reported non-zero value is 0.01.
func Percentage(part, total int64) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part >= total {
		return 100
	}
	pct := math.Round(float64(part)/float64(total)*100*100) / 100
	if pct == 0 {
		return 0.01
	}
	if pct >= 100 {
		return 99.99
	}
	return pct
}
