package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mohitkumar/closureflow/action"
	"github.com/mohitkumar/closureflow/analytics"
	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/metrics"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/persistence"
	"github.com/mohitkumar/closureflow/util"
	"go.uber.org/zap"
)

type flowIdKey struct{}

func withFlowId(ctx context.Context, flowId string) context.Context {
	return context.WithValue(ctx, flowIdKey{}, flowId)
}

func flowIdFrom(ctx context.Context) string {
	id, _ := ctx.Value(flowIdKey{}).(string)
	return id
}

// FlowMachine drives one instance of a Flow from its root action to an end
// action or a failure. A machine runs once.
type FlowMachine struct {
	WorkflowName string
	FlowId       string
	flow         *Flow
	dao          persistence.FlowDao

	// branch machines drive a parallel branch, flow level metrics and logs
	// belong to the parent instance
	branch bool

	mu          sync.Mutex
	flowContext *model.FlowContext
}

// NewFlowStateMachine creates the driver of one instance. dao may be nil
// when snapshots are not needed.
func NewFlowStateMachine(flow *Flow, flowId string, dao persistence.FlowDao) *FlowMachine {
	return &FlowMachine{
		WorkflowName: flow.Name,
		FlowId:       flowId,
		flow:         flow,
		dao:          dao,
	}
}

func newBranchMachine(flow *Flow, flowId string) *FlowMachine {
	machine := NewFlowStateMachine(flow, flowId, nil)
	machine.branch = true
	return machine
}

// Snapshot returns a copy of the current instance state.
func (f *FlowMachine) Snapshot() *model.FlowContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flowContext == nil {
		return nil
	}
	snap := *f.flowContext
	snap.Data = util.DeepCopy(f.flowContext.Data)
	snap.Attempts = make(map[string]int, len(f.flowContext.Attempts))
	for k, v := range f.flowContext.Attempts {
		snap.Attempts[k] = v
	}
	if f.flowContext.Failure != nil {
		failure := *f.flowContext.Failure
		snap.Failure = &failure
	}
	return &snap
}

// Run executes the instance under the workflow timeout and returns the
// context produced by the end action. Every failure is a *FlowError.
func (f *FlowMachine) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	if f.flow.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.flow.Timeout)
		defer cancel()
	}
	ctx = withFlowId(ctx, f.FlowId)

	data := util.DeepCopy(input)
	if data == nil {
		data = make(map[string]any)
	}
	now := time.Now()
	f.update(func(fc *model.FlowContext) {
		*fc = model.FlowContext{
			Id:            f.FlowId,
			WorkflowName:  f.WorkflowName,
			CurrentAction: f.flow.RootAction,
			Data:          data,
			State:         model.RUNNING,
			Attempts:      make(map[string]int),
			StartedAt:     now,
			UpdatedAt:     now,
		}
	})
	if f.branch {
		logger.Debug("branch started", zap.String("branch", f.WorkflowName), zap.String("id", f.FlowId))
	} else {
		metrics.FlowsStarted.WithLabelValues(f.WorkflowName).Inc()
		logger.Info("workflow started", zap.String("workflow", f.WorkflowName), zap.String("id", f.FlowId))
	}

	current := f.flow.Actions[f.flow.RootAction]
	for {
		name := current.GetName()
		state := model.RUNNING
		if current.GetType() == model.ACTION_TYPE_WAIT {
			state = model.WAITING_DELAY
		}
		f.update(func(fc *model.FlowContext) {
			fc.CurrentAction = name
			fc.State = state
		})

		start := time.Now()
		outcome, err := current.Execute(ctx, data)
		metrics.ObserveAction(f.WorkflowName, name, start, err)
		if outcome.Attempts > 0 {
			metrics.TaskAttempts.WithLabelValues(f.WorkflowName, name).Add(float64(outcome.Attempts))
			f.update(func(fc *model.FlowContext) {
				fc.Attempts[name] += outcome.Attempts
			})
		}
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil {
			return nil, f.fail(ctx, name, err, data)
		}
		analytics.RecordActionSuccess(f.WorkflowName, f.FlowId, name, outcome.Attempts, outcome.Data)
		data = outcome.Data

		if current.IsEnd() {
			f.markComplete(data)
			return util.DeepCopy(data), nil
		}
		next, ok := f.flow.GetAction(outcome.Next)
		if !ok {
			return nil, f.fail(ctx, name, &action.InvalidStateError{Action: name, Message: fmt.Sprintf("unknown next action %q", outcome.Next)}, data)
		}
		f.update(func(fc *model.FlowContext) {
			fc.Data = data
		})
		current = next
	}
}

func (f *FlowMachine) fail(ctx context.Context, actionName string, cause error, data map[string]any) *FlowError {
	flowErr := &FlowError{
		Kind:   failureKind(ctx, cause),
		FlowId: f.FlowId,
		Action: actionName,
		Cause:  cause,
		Data:   util.DeepCopy(data),
	}
	state := model.FAILED
	if flowErr.Kind == TIMEOUT_FAILURE {
		state = model.TIMED_OUT
	}
	f.update(func(fc *model.FlowContext) {
		fc.State = state
		fc.Data = data
		fc.Failure = &model.FailureInfo{
			Kind:    string(flowErr.Kind),
			Action:  actionName,
			Message: cause.Error(),
		}
	})
	analytics.RecordActionFailure(f.WorkflowName, f.FlowId, actionName, string(flowErr.Kind), cause.Error())
	if f.branch {
		logger.Debug("branch failed", zap.String("branch", f.WorkflowName), zap.String("id", f.FlowId), zap.String("action", actionName), zap.String("kind", string(flowErr.Kind)), zap.Error(cause))
		return flowErr
	}
	metrics.FlowsFinished.WithLabelValues(f.WorkflowName, state.String()).Inc()
	logger.Error("workflow failed", zap.String("workflow", f.WorkflowName), zap.String("id", f.FlowId), zap.String("action", actionName), zap.String("kind", string(flowErr.Kind)), zap.Error(cause))
	return flowErr
}

func (f *FlowMachine) markComplete(data map[string]any) {
	f.update(func(fc *model.FlowContext) {
		fc.State = model.COMPLETED
		fc.Data = data
	})
	if f.branch {
		logger.Debug("branch completed", zap.String("branch", f.WorkflowName), zap.String("id", f.FlowId))
		return
	}
	metrics.FlowsFinished.WithLabelValues(f.WorkflowName, model.COMPLETED.String()).Inc()
	logger.Info("workflow completed", zap.String("workflow", f.WorkflowName), zap.String("id", f.FlowId))
}

// update applies fn to the instance state and saves a snapshot. Storage
// errors are logged, a snapshot never fails the instance.
func (f *FlowMachine) update(fn func(fc *model.FlowContext)) {
	f.mu.Lock()
	if f.flowContext == nil {
		f.flowContext = &model.FlowContext{}
	}
	fn(f.flowContext)
	f.flowContext.UpdatedAt = time.Now()
	f.mu.Unlock()
	if f.dao == nil {
		return
	}
	if err := f.dao.SaveFlowContext(f.WorkflowName, f.FlowId, f.Snapshot()); err != nil {
		logger.Error("error in saving flow snapshot", zap.String("workflow", f.WorkflowName), zap.String("id", f.FlowId), zap.Error(err))
	}
}
