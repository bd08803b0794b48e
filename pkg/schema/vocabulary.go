package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseVocabularyTerms extracts the term labels from a serialized vocabulary such as
// "[{'Latin'={1234}}, {'Old French'={5678}}]". Each item is "label={id...}"; the label is
// returned stripped of braces, brackets and quotes. An empty serialization has no terms.
// Any item without a "={" separator or with an empty label makes the whole string malformed.
func ParseVocabularyTerms(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil, nil
	}

	items := strings.Split(raw, "}, ")
	terms := make([]string, 0, len(items))
	for i, item := range items {
		idx := strings.Index(item, "={")
		if idx < 0 {
			return nil, fmt.Errorf("vocabulary item %d has no term id: %q", i, item)
		}
		term := cleanTerm(item[:idx])
		if term == "" {
			return nil, fmt.Errorf("vocabulary item %d has an empty label", i)
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func cleanTerm(label string) string {
	label = strings.NewReplacer("{", "", "[", "").Replace(label)
	label = strings.TrimSpace(label)
	// Escaped apostrophes survive; surrounding quotes do not.
	label = strings.ReplaceAll(label, `\'`, "\x00")
	label = strings.Trim(label, `'"`)
	label = strings.ReplaceAll(label, "'", "")
	label = strings.ReplaceAll(label, "\x00", "'")
	label = strings.ReplaceAll(label, `\`, "")
	return strings.TrimSpace(label)
}

// ParseTargetList parses a foreign-key target list such as "[12, 34]".
// An empty string or "[]" means the field is not a foreign key.
func ParseTargetList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var targets []int
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		return nil, fmt.Errorf("parse foreign key targets %q: %w", raw, err)
	}
	return targets, nil
}
