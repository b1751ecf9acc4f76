package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohitkumar/closureflow/action"
)

type FailureKind string

const TASK_FAILURE FailureKind = "TASK"
const BRANCH_FAILURE FailureKind = "BRANCH"
const TIMEOUT_FAILURE FailureKind = "TIMEOUT"
const INVALID_STATE_FAILURE FailureKind = "INVALID_STATE"
const CANCELED_FAILURE FailureKind = "CANCELED"

// FlowError is the terminal failure of an instance. Data holds the last
// context the failing action received.
type FlowError struct {
	Kind   FailureKind
	FlowId string
	Action string
	Cause  error
	Data   map[string]any
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("flow %s failed at action %s with %s: %v", e.FlowId, e.Action, e.Kind, e.Cause)
}

func (e *FlowError) Unwrap() error {
	return e.Cause
}

func failureKind(ctx context.Context, err error) FailureKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return TIMEOUT_FAILURE
	}
	if ctx.Err() != nil {
		return CANCELED_FAILURE
	}
	var branchErr *action.BranchError
	if errors.As(err, &branchErr) {
		return BRANCH_FAILURE
	}
	var invalid *action.InvalidStateError
	if errors.As(err, &invalid) {
		return INVALID_STATE_FAILURE
	}
	return TASK_FAILURE
}
