package flow

import (
	"testing"
	"time"

	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/task"
	"github.com/stretchr/testify/require"
)

func taskDef(name string, next string) model.ActionDef {
	return model.ActionDef{Name: name, Type: model.ACTION_TYPE_TASK, Task: name, Next: next}
}

func endDef(name string) model.ActionDef {
	return model.ActionDef{Name: name, Type: model.ACTION_TYPE_PASS, End: true}
}

func TestConvert(t *testing.T) {
	wf := &model.Workflow{
		Name:       "wf",
		RootAction: "A",
		Timeout:    time.Minute,
		Actions: []model.ActionDef{
			taskDef("A", "P"),
			{
				Name: "P",
				Type: model.ACTION_TYPE_PARALLEL,
				Branches: []model.BranchDef{
					{Name: "b1", RootAction: "B1", Actions: []model.ActionDef{endDef("B1")}},
					{Name: "b2", RootAction: "B2", Actions: []model.ActionDef{endDef("B2")}},
				},
				Next: "End",
			},
			endDef("End"),
		},
	}
	fl, err := Convert(wf, task.NewRegistry())
	require.NoError(t, err)
	require.Equal(t, "wf", fl.Name)
	require.Equal(t, time.Minute, fl.Timeout)
	require.Len(t, fl.Actions, 3)
	act, ok := fl.GetAction("P")
	require.True(t, ok)
	require.Equal(t, model.ACTION_TYPE_PARALLEL, act.GetType())
}

func TestConvertRejectsInvalidGraphs(t *testing.T) {
	for scenario, wf := range map[string]*model.Workflow{
		"missing root": {
			Name:       "wf",
			RootAction: "Missing",
			Actions:    []model.ActionDef{endDef("A")},
		},
		"duplicate name": {
			Name:       "wf",
			RootAction: "A",
			Actions:    []model.ActionDef{taskDef("A", "B"), endDef("B"), endDef("B")},
		},
		"dangling successor": {
			Name:       "wf",
			RootAction: "A",
			Actions:    []model.ActionDef{taskDef("A", "Nowhere"), endDef("B")},
		},
		"unreachable node": {
			Name:       "wf",
			RootAction: "A",
			Actions:    []model.ActionDef{taskDef("A", "B"), endDef("B"), endDef("Island")},
		},
		"no reachable end": {
			Name:       "wf",
			RootAction: "A",
			Actions:    []model.ActionDef{taskDef("A", "B"), taskDef("B", "A")},
		},
		"unknown type": {
			Name:       "wf",
			RootAction: "A",
			Actions:    []model.ActionDef{{Name: "A", Type: "MAP", End: true}},
		},
		"invalid branch": {
			Name:       "wf",
			RootAction: "P",
			Actions: []model.ActionDef{{
				Name:     "P",
				Type:     model.ACTION_TYPE_PARALLEL,
				Branches: []model.BranchDef{{Name: "b", RootAction: "X", Actions: []model.ActionDef{endDef("B")}}},
				End:      true,
			}},
		},
		"empty name": {
			RootAction: "A",
			Actions:    []model.ActionDef{endDef("A")},
		},
		"negative timeout": {
			Name:       "wf",
			RootAction: "A",
			Timeout:    -time.Second,
			Actions:    []model.ActionDef{endDef("A")},
		},
	} {
		t.Run(scenario, func(t *testing.T) {
			require.Error(t, Validate(wf))
		})
	}
	require.Error(t, Validate(nil))
}
