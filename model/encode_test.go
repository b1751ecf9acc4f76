package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEncodeWorkflowYAML(t *testing.T) {
	wf := &Workflow{
		Name:       "wf",
		RootAction: "Wait",
		Timeout:    5 * time.Minute,
		Actions: []ActionDef{
			{Name: "Wait", Type: ACTION_TYPE_WAIT, Delay: 10 * time.Second, Next: "End"},
			{Name: "End", Type: ACTION_TYPE_PASS, End: true},
		},
	}
	data, err := EncodeWorkflow(wf, FORMAT_YAML)
	require.NoError(t, err)
	require.Contains(t, string(data), "rootAction: Wait")
	require.Contains(t, string(data), "delay: 10s")

	var decoded Workflow
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, *wf, decoded)

	data, err = EncodeWorkflow(wf, FORMAT_JSON)
	require.NoError(t, err)
	require.Contains(t, string(data), `"rootAction": "Wait"`)

	_, err = EncodeWorkflow(wf, "xml")
	require.Error(t, err)
}
