package models

// ColumnSelection restricts which live columns take part in an analysis.
// It is either AllColumns or SpecificColumns.
type ColumnSelection interface {
	// Includes reports whether the named column is selected.
	Includes(column string) bool
	isColumnSelection()
}

// AllColumns selects every live column of the entity.
type AllColumns struct{}

func (AllColumns) Includes(string) bool { return true }
func (AllColumns) isColumnSelection()   {}

// SpecificColumns selects only the named columns.
type SpecificColumns struct {
	columns map[string]struct{}
}

// NewSpecificColumns builds a selection over the given column names.
func NewSpecificColumns(columns ...string) SpecificColumns {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return SpecificColumns{columns: set}
}

func (s SpecificColumns) Includes(column string) bool {
	_, ok := s.columns[column]
	return ok
}

func (SpecificColumns) isColumnSelection() {}

// Len returns the number of selected columns.
func (s SpecificColumns) Len() int {
	return len(s.columns)
}
