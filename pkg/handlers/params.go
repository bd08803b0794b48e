package handlers

import (
	"net/http"
	"strings"

	"github.com/lostma-project/lostma-audit/pkg/models"
)

// parseLanguage returns the optional ?language= filter, trimmed.
func parseLanguage(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("language"))
}

// parseSelection reads ?fields=a,b (or repeated fields=) into a column selection.
// No fields selects every column.
func parseSelection(r *http.Request) models.ColumnSelection {
	var names []string
	for _, raw := range r.URL.Query()["fields"] {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return models.AllColumns{}
	}
	return models.NewSpecificColumns(names...)
}
