package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostma-project/lostma-audit/pkg/models"
)

func TestParseLanguage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/completeness/witness?language=+Old%20French+", nil)
	assert.Equal(t, "Old French", parseLanguage(r))

	r = httptest.NewRequest(http.MethodGet, "/api/completeness/witness", nil)
	assert.Empty(t, parseLanguage(r))
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		included []string
		excluded []string
		all      bool
	}{
		{name: "no fields", query: "", all: true},
		{name: "empty list", query: "?fields=,", all: true},
		{
			name:     "comma separated",
			query:    "?fields=shelfmark,%20script",
			included: []string{"shelfmark", "script"},
			excluded: []string{"notes"},
		},
		{
			name:     "repeated",
			query:    "?fields=shelfmark&fields=is_manifestation_of%20H-ID",
			included: []string{"shelfmark", "is_manifestation_of H-ID"},
			excluded: []string{"script"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/completeness/witness"+tt.query, nil)
			sel := parseSelection(r)
			if tt.all {
				assert.IsType(t, models.AllColumns{}, sel)
				return
			}
			specific, ok := sel.(models.SpecificColumns)
			require.True(t, ok)
			assert.Equal(t, len(tt.included), specific.Len())
			for _, c := range tt.included {
				assert.True(t, sel.Includes(c), c)
			}
			for _, c := range tt.excluded {
				assert.False(t, sel.Includes(c), c)
			}
		})
	}
}
