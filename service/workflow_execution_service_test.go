package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mohitkumar/closureflow/closure"
	"github.com/mohitkumar/closureflow/flow"
	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/persistence"
	"github.com/mohitkumar/closureflow/persistence/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newService(t *testing.T, capacity int) *WorkflowExecutionService {
	opts := closure.Options{
		Timeout:       5 * time.Second,
		WaitInterval:  time.Millisecond,
		RetryInterval: time.Millisecond,
	}
	fl, err := flow.Convert(closure.Definition(opts), closure.LocalHandlers())
	require.NoError(t, err)
	return NewWorkflowExecutionService(fl, memory.NewInMemoryFlowDao(0), closure.ValidateInput, 2, capacity, &sync.WaitGroup{})
}

func TestStartFlow(t *testing.T) {
	svc := newService(t, 8)
	svc.Start()
	defer svc.Stop()

	flowId, err := svc.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: "123"})
	require.NoError(t, err)
	require.NotEmpty(t, flowId)

	snap, err := svc.GetFlow(flowId)
	require.NoError(t, err)
	require.Equal(t, flowId, snap.Id)

	require.Eventually(t, func() bool {
		snap, err := svc.GetFlow(flowId)
		return err == nil && snap.State == model.COMPLETED
	}, 2*time.Second, 5*time.Millisecond)

	snap, err = svc.GetFlow(flowId)
	require.NoError(t, err)
	require.Equal(t, closure.END_FLOW, snap.CurrentAction)
	status := snap.Data["Payload"].(map[string]any)[closure.STATUS_KEY].(map[string]any)
	require.Equal(t, true, status[closure.FLAG_OFFBOARD_FROM_STACKSET])
}

func TestStartFlowRejectsInvalidInput(t *testing.T) {
	svc := newService(t, 8)
	_, err := svc.StartFlow(map[string]any{})
	require.Error(t, err)
}

func TestStartFlowQueueFull(t *testing.T) {
	svc := newService(t, 1)
	_, err := svc.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: "1"})
	require.NoError(t, err)
	_, err = svc.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: "2"})
	require.Error(t, err)
}

func TestRunFlow(t *testing.T) {
	svc := newService(t, 1)
	flowId, out, err := svc.RunFlow(context.Background(), map[string]any{closure.ACCOUNT_ID_KEY: "123", "payload": map[string]any{}})
	require.NoError(t, err)
	require.Equal(t, "123", out["Payload"].(map[string]any)[closure.ACCOUNT_ID_KEY])

	snap, err := svc.GetFlow(flowId)
	require.NoError(t, err)
	require.Equal(t, model.COMPLETED, snap.State)
}

func TestGetFlowMissing(t *testing.T) {
	svc := newService(t, 1)
	_, err := svc.GetFlow("missing")
	require.Error(t, err)
}

func TestStopCancelsQueuedFlows(t *testing.T) {
	svc := newService(t, 4)
	ids := make([]string, 0, 2)
	for _, account := range []string{"1", "2"} {
		flowId, err := svc.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: account})
		require.NoError(t, err)
		ids = append(ids, flowId)
	}

	svc.Stop()

	for _, flowId := range ids {
		snap, err := svc.GetFlow(flowId)
		require.NoError(t, err)
		require.Equal(t, model.FAILED, snap.State)
		require.NotNil(t, snap.Failure)
		require.Equal(t, string(flow.CANCELED_FAILURE), snap.Failure.Kind)
		require.Equal(t, closure.MOVE_TO_SUSPEND, snap.Failure.Action)
	}
	_, err := svc.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: "3"})
	require.Error(t, err)
}

type failingDeleteDao struct {
	persistence.FlowDao
}

func (f failingDeleteDao) DeleteFlowContext(wfName string, flowId string) error {
	return persistence.StorageLayerError{Message: "down"}
}

func TestStartFlowLogsDeleteError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(zap.NewNop()) })

	fl, err := flow.Convert(closure.Definition(closure.DefaultOptions()), closure.LocalHandlers())
	require.NoError(t, err)
	svc := NewWorkflowExecutionService(fl, failingDeleteDao{memory.NewInMemoryFlowDao(0)}, closure.ValidateInput, 1, 1, nil)

	_, err = svc.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: "1"})
	require.NoError(t, err)
	_, err = svc.StartFlow(map[string]any{closure.ACCOUNT_ID_KEY: "2"})
	require.Error(t, err)
	require.Equal(t, 1, logs.FilterMessage("error in deleting snapshot of rejected workflow").Len())
}
