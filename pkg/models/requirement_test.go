package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirementLevel(t *testing.T) {
	tests := []struct {
		raw      string
		expected RequirementLevel
		wantErr  bool
	}{
		{"required", RequirementRequired, false},
		{" Recommended ", RequirementRecommended, false},
		{"OPTIONAL", RequirementOptional, false},
		{"hidden", RequirementHidden, false},
		{"forbidden", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			level, err := ParseRequirementLevel(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestParseRequirementLevels_EmptyMeansAll(t *testing.T) {
	levels, err := ParseRequirementLevels(nil)
	require.NoError(t, err)
	assert.Equal(t, AllRequirementLevels, levels)

	// The returned slice must not alias the package-level default.
	levels[0] = RequirementHidden
	assert.Equal(t, RequirementOptional, AllRequirementLevels[0])
}

func TestParseRequirementLevels_Deduplicates(t *testing.T) {
	levels, err := ParseRequirementLevels([]string{"required", "Required", "hidden"})
	require.NoError(t, err)
	assert.Equal(t, []RequirementLevel{RequirementRequired, RequirementHidden}, levels)
}
