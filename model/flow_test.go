package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlowStateJSON(t *testing.T) {
	data, err := json.Marshal(FlowContext{Id: "1", State: WAITING_DELAY})
	require.NoError(t, err)
	require.Contains(t, string(data), `"flowState":"WAITING_DELAY"`)

	var fc FlowContext
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Equal(t, WAITING_DELAY, fc.State)

	require.Error(t, json.Unmarshal([]byte(`{"flowState":"PAUSED"}`), &fc))
}

func TestFlowStateIsTerminal(t *testing.T) {
	require.False(t, RUNNING.IsTerminal())
	require.False(t, WAITING_DELAY.IsTerminal())
	require.True(t, COMPLETED.IsTerminal())
	require.True(t, FAILED.IsTerminal())
	require.True(t, TIMED_OUT.IsTerminal())
}
