package flow

import (
	"fmt"
	"time"

	"github.com/mohitkumar/closureflow/action"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/task"
)

// Flow is the immutable, validated graph of a workflow definition. It is
// shared by every instance of the workflow.
type Flow struct {
	Name       string
	RootAction string
	Timeout    time.Duration
	Actions    map[string]action.Action
}

func (f *Flow) GetAction(name string) (action.Action, bool) {
	act, ok := f.Actions[name]
	return act, ok
}

// Convert builds the node graph of wf and validates it. Task nodes, including
// those inside parallel branches, call handler.
func Convert(wf *model.Workflow, handler task.Handler) (*Flow, error) {
	if wf == nil {
		return nil, fmt.Errorf("workflow definition is nil")
	}
	if len(wf.Name) == 0 {
		return nil, fmt.Errorf("workflow name can not be empty")
	}
	if wf.Timeout < 0 {
		return nil, fmt.Errorf("workflow %s, timeout can not be negative", wf.Name)
	}
	return convert(wf.Name, wf.RootAction, wf.Timeout, wf.Actions, handler)
}

func convert(name string, root string, timeout time.Duration, defs []model.ActionDef, handler task.Handler) (*Flow, error) {
	actionMap := make(map[string]action.Action)
	for _, actionDef := range defs {
		if len(actionDef.Name) == 0 {
			return nil, fmt.Errorf("workflow %s, action name can not be empty", name)
		}
		if _, ok := actionMap[actionDef.Name]; ok {
			return nil, fmt.Errorf("workflow %s, action %s is duplicate", name, actionDef.Name)
		}
		var flAct action.Action
		switch actionDef.Type {
		case model.ACTION_TYPE_TASK:
			flAct = action.NewTaskAction(actionDef, handler)
		case model.ACTION_TYPE_WAIT:
			flAct = action.NewWaitAction(actionDef)
		case model.ACTION_TYPE_CHOICE:
			flAct = action.NewChoiceAction(actionDef)
		case model.ACTION_TYPE_PASS:
			flAct = action.NewPassAction(actionDef)
		case model.ACTION_TYPE_PARALLEL:
			branches := make([]action.Branch, 0, len(actionDef.Branches))
			for _, branchDef := range actionDef.Branches {
				sub, err := convert(fmt.Sprintf("%s/%s", name, branchDef.Name), branchDef.RootAction, 0, branchDef.Actions, handler)
				if err != nil {
					return nil, fmt.Errorf("action=%s, branch %s: %w", actionDef.Name, branchDef.Name, err)
				}
				branches = append(branches, &branchFlow{name: branchDef.Name, flow: sub})
			}
			flAct = action.NewParallelAction(actionDef, branches)
		default:
			return nil, fmt.Errorf("workflow %s, action %s has invalid type %q", name, actionDef.Name, actionDef.Type)
		}
		if err := flAct.Validate(); err != nil {
			return nil, fmt.Errorf("workflow %s, %w", name, err)
		}
		actionMap[actionDef.Name] = flAct
	}
	f := &Flow{
		Name:       name,
		RootAction: root,
		Timeout:    timeout,
		Actions:    actionMap,
	}
	if err := validateGraph(f); err != nil {
		return nil, err
	}
	return f, nil
}

// validateGraph checks that every successor exists, every node is reachable
// from the root and that some end node can be reached.
func validateGraph(f *Flow) error {
	if _, ok := f.Actions[f.RootAction]; !ok {
		return fmt.Errorf("workflow %s, no action with root action name %q", f.Name, f.RootAction)
	}
	for name, act := range f.Actions {
		for _, next := range act.GetNext() {
			if _, ok := f.Actions[next]; !ok {
				return fmt.Errorf("workflow %s, action %s refers to unknown action %q", f.Name, name, next)
			}
		}
	}
	visited := map[string]bool{f.RootAction: true}
	queue := []string{f.RootAction}
	hasEnd := false
	for len(queue) > 0 {
		act := f.Actions[queue[0]]
		queue = queue[1:]
		if act.IsEnd() {
			hasEnd = true
		}
		for _, next := range act.GetNext() {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	for name := range f.Actions {
		if !visited[name] {
			return fmt.Errorf("workflow %s, action %s is not reachable from root", f.Name, name)
		}
	}
	if !hasEnd {
		return fmt.Errorf("workflow %s, no end action is reachable", f.Name)
	}
	return nil
}

func Validate(wf *model.Workflow) error {
	_, err := Convert(wf, task.NewRegistry())
	return err
}
