package models

import (
	"fmt"
	"slices"
	"strings"
)

// RequirementLevel classifies how mandatory a field is in the exported record structure.
type RequirementLevel string

const (
	RequirementOptional    RequirementLevel = "optional"
	RequirementRecommended RequirementLevel = "recommended"
	RequirementRequired    RequirementLevel = "required"
	RequirementHidden      RequirementLevel = "hidden"
)

// AllRequirementLevels contains every valid requirement level, in declaration order.
var AllRequirementLevels = []RequirementLevel{
	RequirementOptional,
	RequirementRecommended,
	RequirementRequired,
	RequirementHidden,
}

// IsValid returns true if the level is one of the four declared levels.
func (l RequirementLevel) IsValid() bool {
	return slices.Contains(AllRequirementLevels, l)
}

// ParseRequirementLevel converts a raw export value into a RequirementLevel.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseRequirementLevel(raw string) (RequirementLevel, error) {
	level := RequirementLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !level.IsValid() {
		return "", fmt.Errorf("unknown requirement level %q", raw)
	}
	return level, nil
}

// ParseRequirementLevels parses a list of raw levels. An empty input yields all levels.
func ParseRequirementLevels(raw []string) ([]RequirementLevel, error) {
	if len(raw) == 0 {
		return slices.Clone(AllRequirementLevels), nil
	}
	levels := make([]RequirementLevel, 0, len(raw))
	for _, r := range raw {
		level, err := ParseRequirementLevel(r)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(levels, level) {
			levels = append(levels, level)
		}
	}
	return levels, nil
}
