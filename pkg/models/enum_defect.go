package models

// EnumDefect counts the records whose value falls outside a field's controlled vocabulary.
type EnumDefect struct {
	Entity            string  `json:"entity"`
	Field             string  `json:"field"`
	IsList            bool    `json:"is_list"`
	DefectCount       int64   `json:"defect_records"`
	TotalCount        int64   `json:"total_records"`
	PercentageProblem float64 `json:"percentage_problem"`
	// InvalidValues samples the distinct observed values outside the vocabulary.
	InvalidValues []string `json:"invalid_values,omitempty"`
}
