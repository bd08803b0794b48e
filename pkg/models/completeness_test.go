package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		part     int64
		total    int64
		expected float64
	}{
		{"zero total", 0, 0, 0},
		{"zero total with part", 3, 0, 0},
		{"nothing empty", 0, 10, 0},
		{"everything empty", 10, 10, 100},
		{"half", 1, 2, 50},
		{"rounds to two decimals", 1, 3, 33.33},
		{"tiny share stays non-zero", 1, 1_000_000, 0.01},
		{"near total stays below 100", 999_999, 1_000_000, 99.99},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Percentage(tc.part, tc.total))
		})
	}
}

func TestPercentage_ZeroIffEmptyCountZero(t *testing.T) {
	for total := int64(1); total <= 500; total += 7 {
		for part := int64(0); part <= total; part++ {
			pct := Percentage(part, total)
			assert.GreaterOrEqual(t, pct, 0.0)
			assert.LessOrEqual(t, pct, 100.0)
			assert.Equal(t, part == 0, pct == 0, "part=%d total=%d pct=%v", part, total, pct)
		}
	}
}

func TestActionRequired_JSON(t *testing.T) {
	data, err := json.Marshal(ActionRequired{Applicable: true, Count: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `4`, string(data))

	data, err = json.Marshal(ActionRequired{})
	require.NoError(t, err)
	assert.JSONEq(t, `"No field for this table"`, string(data))

	assert.Equal(t, "No field for this table", ActionRequired{}.String())
	assert.Equal(t, "12", ActionRequired{Applicable: true, Count: 12}.String())
}

func TestValidationSummary_DeduplicatesInInsertionOrder(t *testing.T) {
	s := NewValidationSummary()
	s.Add(ValidationLogEntry{RecordType: 12, RecordID: 34})
	s.Add(ValidationLogEntry{RecordType: 7, RecordID: 1})
	s.Add(ValidationLogEntry{RecordType: 12, RecordID: 30})
	s.Add(ValidationLogEntry{RecordType: 12, RecordID: 34})

	assert.Equal(t, []int{12, 7}, s.RecordTypes())
	assert.Equal(t, []int{34, 30}, s.RecordIDs(12))
	assert.Equal(t, 2, s.Count(12))
	assert.Equal(t, 1, s.Count(7))
	assert.Equal(t, 0, s.Count(99))
}

func TestColumnSelection(t *testing.T) {
	var sel ColumnSelection = AllColumns{}
	assert.True(t, sel.Includes("anything"))

	specific := NewSpecificColumns("title", "author H-ID")
	sel = specific
	assert.True(t, sel.Includes("title"))
	assert.False(t, sel.Includes("date"))
	assert.Equal(t, 2, specific.Len())
}

func TestJoinStep_LinkOwnerDefaults(t *testing.T) {
	assert.Equal(t, LinkOnSource, JoinStep{Kind: JoinDirect}.LinkOwner())
	assert.Equal(t, LinkOnTarget, JoinStep{Kind: JoinMulti}.LinkOwner())
	assert.Equal(t, LinkOnSource, JoinStep{Kind: JoinMulti, Owner: LinkOnSource}.LinkOwner())
}

func TestJoinStep_Validate(t *testing.T) {
	assert.NoError(t, JoinStep{Target: "text", Kind: JoinDirect, Column: "is_manifestation_of H-ID"}.Validate())
	assert.Error(t, JoinStep{Kind: JoinDirect, Column: "x"}.Validate())
	assert.Error(t, JoinStep{Target: "text", Kind: JoinDirect}.Validate())
	assert.Error(t, JoinStep{Target: "text", Kind: "sideways", Column: "x"}.Validate())
	assert.Error(t, JoinStep{Target: "text", Kind: JoinDirect, Column: "x", Owner: "middle"}.Validate())
}
