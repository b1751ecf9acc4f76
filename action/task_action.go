package action

import (
	"context"
	"fmt"

	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/task"
	"github.com/mohitkumar/closureflow/util"
	"go.uber.org/zap"
)

const DEFAULT_RESULT_PATH = "$.Payload"

var _ Action = new(taskAction)

type taskAction struct {
	baseAction
	invoker    *task.Invoker
	inputPath  string
	resultPath string
	retry      []model.RetryDef
}

func NewTaskAction(def model.ActionDef, handler task.Handler) *taskAction {
	resultPath := def.ResultPath
	if len(resultPath) == 0 {
		resultPath = DEFAULT_RESULT_PATH
	}
	return &taskAction{
		baseAction: newBaseAction(def),
		invoker:    task.NewInvoker(def.Task, handler, toRetryPolicies(def.Retry), def.Timeout),
		inputPath:  def.InputPath,
		resultPath: resultPath,
		retry:      def.Retry,
	}
}

func toRetryPolicies(defs []model.RetryDef) []task.RetryPolicy {
	var policies []task.RetryPolicy
	for _, def := range defs {
		kinds := make([]task.ErrorKind, 0, len(def.ErrorEquals))
		for _, k := range def.ErrorEquals {
			kinds = append(kinds, task.ErrorKind(k))
		}
		policies = append(policies, task.RetryPolicy{
			ErrorEquals: kinds,
			MaxAttempts: def.MaxAttempts,
			Interval:    def.Interval,
			BackoffRate: def.BackoffRate,
		})
	}
	return policies
}

func (t *taskAction) Validate() error {
	if err := t.validateTransition(); err != nil {
		return err
	}
	if len(t.invoker.Name()) == 0 {
		return fmt.Errorf("action=%s, task name can not be empty", t.name)
	}
	if err := util.ValidatePath(t.inputPath); err != nil {
		return fmt.Errorf("action=%s, %w", t.name, err)
	}
	if err := util.ValidatePath(t.resultPath); err != nil {
		return fmt.Errorf("action=%s, %w", t.name, err)
	}
	for _, r := range t.retry {
		if len(r.ErrorEquals) == 0 {
			return fmt.Errorf("action=%s, retry should list at least one error", t.name)
		}
		for _, k := range r.ErrorEquals {
			if err := task.ValidateErrorKind(k); err != nil {
				return fmt.Errorf("action=%s, %w", t.name, err)
			}
		}
		if r.MaxAttempts < 0 {
			return fmt.Errorf("action=%s, retry max attempts can not be negative", t.name)
		}
		if r.BackoffRate != 0 && r.BackoffRate < 1 {
			return fmt.Errorf("action=%s, backoff rate should be at least 1", t.name)
		}
	}
	return nil
}

// Execute hands the handler a copy of the input view and writes the view
// merged with the handler output at the result path.
func (t *taskAction) Execute(ctx context.Context, data map[string]any) (Outcome, error) {
	view, err := inputView(t.name, data, t.inputPath)
	if err != nil {
		return Outcome{}, err
	}
	logger.Debug("invoking task", zap.String("action", t.name), zap.String("task", t.invoker.Name()))
	res, err := t.invoker.Invoke(ctx, util.DeepCopy(view))
	if err != nil {
		return Outcome{Attempts: res.Attempts}, err
	}
	out, err := util.SetPath(data, t.resultPath, util.DeepMerge(view, res.Output))
	if err != nil {
		return Outcome{Attempts: res.Attempts}, &InvalidStateError{Action: t.name, Message: err.Error()}
	}
	o := t.outcome(out)
	o.Attempts = res.Attempts
	return o, nil
}

func inputView(name string, data map[string]any, path string) (map[string]any, error) {
	v, err := util.Lookup(data, path)
	if err != nil {
		return nil, &InvalidStateError{Action: name, Message: fmt.Sprintf("input path %s not found: %v", path, err)}
	}
	view, ok := v.(map[string]any)
	if !ok {
		return nil, &InvalidStateError{Action: name, Message: fmt.Sprintf("input path %s is %T, not an object", path, v)}
	}
	return view, nil
}
