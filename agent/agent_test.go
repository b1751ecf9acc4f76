package agent

import (
	"testing"
	"time"

	"github.com/mohitkumar/closureflow/analytics"
	"github.com/mohitkumar/closureflow/closure"
	"github.com/mohitkumar/closureflow/config"
	"github.com/mohitkumar/closureflow/task"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		HttpPort:         0,
		StorageType:      config.STORAGE_TYPE_INMEM,
		ExecutorCapacity: 4,
		Concurrency:      1,
		WorkflowTimeout:  time.Second,
		WaitInterval:     time.Millisecond,
		RetryInterval:    time.Millisecond,
		AnalyticsConfig:  analytics.DataCollectorConfig{CollectorType: analytics.NOOP_DATA_COLLECTOR},
	}
}

func TestAgentLifecycle(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, a.Start())

	flowId, err := a.workflowExecutionService.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: "123"})
	require.NoError(t, err)
	require.NotEmpty(t, flowId)

	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())
}

func TestNewFlowDao(t *testing.T) {
	_, closeDao, err := NewFlowDao(testConfig())
	require.NoError(t, err)
	require.NoError(t, closeDao())

	conf := testConfig()
	conf.StorageType = "dynamo"
	_, _, err = NewFlowDao(conf)
	require.Error(t, err)
}

func TestNewHandler(t *testing.T) {
	_, ok := NewHandler(testConfig()).(*task.Registry)
	require.True(t, ok)

	conf := testConfig()
	conf.HandlerUrl = "http://localhost:9000"
	_, ok = NewHandler(conf).(*task.HTTPHandler)
	require.True(t, ok)
}
