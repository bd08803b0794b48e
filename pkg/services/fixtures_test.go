package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/adapters/datasource"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
	"github.com/lostma-project/lostma-audit/pkg/testhelpers"
)

const schemaHeader = "rst_DisplayName,rst_RequirementType,dty_PtrTargetRectypeIDs,dty_Type,vocabTerms,dty_Name\n"

const witnessSchema = schemaHeader +
	"shelfmark,required,,freetext,,shelfmark\n" +
	"is_manifestation_of,required,[55],resource,,is_manifestation_of\n" +
	`status-witness,recommended,,enum,"[{'complete'={1}}, {'fragment'={2}}]",status_witness` + "\n" +
	`script,optional,,enum,"[{'textualis'={3}}, {'cursiva'={4}}]",script` + "\n" +
	"notes,hidden,,freetext,,notes\n"

const personSchema = schemaHeader +
	"name,required,,freetext,,name\n" +
	"birth-place,optional,[12],resource,,birth_place\n"

func writeSchemaExport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "witness.csv"), []byte(witnessSchema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "person.csv"), []byte(personSchema), 0o644))
	return dir
}

func newFakeWarehouse() *testhelpers.FakeWarehouse {
	return &testhelpers.FakeWarehouse{
		Columns: map[string][]datasource.ColumnMetadata{
			"Witness": {
				testhelpers.Column("H-ID", "INTEGER", 1),
				testhelpers.Column("type_id", "INTEGER", 2),
				testhelpers.Column("shelfmark", "VARCHAR", 3),
				testhelpers.Column("is_manifestation_of H-ID", "BIGINT", 4),
				testhelpers.Column("status witness", "VARCHAR", 5),
				testhelpers.Column("script", "VARCHAR[]", 6),
				testhelpers.Column("notes", "VARCHAR", 7),
				testhelpers.Column("legacy code", "VARCHAR", 8),
				testhelpers.Column("language TRM-ID", "INTEGER", 9),
				testhelpers.Column("review_status", "VARCHAR", 10),
			},
			"Person": {
				testhelpers.Column("H-ID", "INTEGER", 1),
				testhelpers.Column("name_COLUMN", "VARCHAR", 2),
				testhelpers.Column("birth place H-ID", "BIGINT", 3),
			},
		},
		RecordTypeIDs: map[string]int{"witness": 12, "person": 10},
	}
}

func newManager(wh datasource.Warehouse) *datasource.Manager {
	return datasource.NewManager(func(context.Context) (datasource.Warehouse, error) {
		return wh, nil
	}, zap.NewNop())
}

func isRowCount(stmt auditsql.Statement) bool {
	return strings.HasPrefix(stmt.SQL, "SELECT COUNT(*)") || strings.HasPrefix(stmt.SQL, `SELECT COUNT(DISTINCT t0."H-ID")`)
}

func isActionRequired(stmt auditsql.Statement) bool {
	return isRowCount(stmt) && strings.Contains(stmt.SQL, "review_status")
}
