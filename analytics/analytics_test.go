package analytics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFileDataCollector(t *testing.T) {
	file := filepath.Join(t.TempDir(), "analytics.log")
	require.NoError(t, InitDataCollector(DataCollectorConfig{
		FileName:      file,
		CollectorType: LOG_FILE_DATA_COLLECTOR,
	}))
	defer SetDataCollector(noopCollector{})

	RecordActionSuccess("aws-account-closure", "id-1", "AwsAccountClose", 2, map[string]any{"account_id": "123"})
	RecordActionFailure("aws-account-closure", "id-1", "DependentServiceOffboarding", "BRANCH", "stackset failed")
	require.NoError(t, Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, `"action":"AwsAccountClose"`)
	require.Contains(t, content, `"attempts":2`)
	require.Contains(t, content, `"kind":"BRANCH"`)
	require.Contains(t, content, `"reason":"stackset failed"`)
}

func TestNoopDataCollector(t *testing.T) {
	require.NoError(t, InitDataCollector(DataCollectorConfig{CollectorType: NOOP_DATA_COLLECTOR}))
	RecordActionSuccess("wf", "id", "a", 1, nil)
	require.NoError(t, Close())
}

func TestLogFileDataCollectorBadPath(t *testing.T) {
	err := InitDataCollector(DataCollectorConfig{
		FileName:      filepath.Join(t.TempDir(), "missing", "analytics.log"),
		CollectorType: LOG_FILE_DATA_COLLECTOR,
	})
	require.Error(t, err)
}
