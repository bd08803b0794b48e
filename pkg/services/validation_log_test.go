package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/joingraph"
	"github.com/lostma-project/lostma-audit/pkg/models"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
	"github.com/lostma-project/lostma-audit/pkg/testhelpers"
)

const sampleLog = "2024-01-01 12:00:00 - WARNING - note [12]\n\t[34]\n\tshelfmark required\n\tmissing shelfmark\n" +
	"2024-01-01 12:00:01 - WARNING - note [99]\n\t[7]\n\tunknown\n\tunknown\n" +
	"2024-01-01 12:00:02 - ERROR - note [12]\n\t[35]\n\tdate format\n\tbad date\n" +
	"2024-01-01 12:00:03 - WARNING - note [12]\n\t[34]\n\tscript\n\tunknown script\n"

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "validation.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newLogService(path string, wh *testhelpers.FakeWarehouse) ValidationLogService {
	return NewValidationLogService(path, newManager(wh), joingraph.Default(), nil, nil)
}

func TestValidationLogService_Report(t *testing.T) {
	wh := newFakeWarehouse()
	wh.OnCount = func(auditsql.Statement) ([]int64, error) {
		return []int64{8}, nil
	}
	svc := newLogService(writeLog(t, sampleLog), wh)

	reports, err := svc.Report(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, models.LogDefectReport{
		Entity:            "witness",
		RecordType:        12,
		RecordsOnLog:      2,
		TotalRecords:      8,
		PercentageProblem: 25,
	}, reports[0])

	executed := wh.Executed()
	require.Len(t, executed, 1)
	assert.Equal(t, `SELECT COUNT(*) FROM "Witness" t0`, executed[0].SQL)
}

func TestValidationLogService_MissingFile(t *testing.T) {
	wh := newFakeWarehouse()
	svc := newLogService(filepath.Join(t.TempDir(), "absent.log"), wh)

	reports, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Empty(t, wh.Executed())
}

func TestValidationLogService_MalformedLog(t *testing.T) {
	svc := newLogService(writeLog(t, "2024-01-01 12:00:00 - WARNING - note\n\t[12]\n\t[34]\n"), newFakeWarehouse())

	_, err := svc.Report(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedLogBlock))
}
