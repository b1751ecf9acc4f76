package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohitkumar/closureflow/logger"
	"go.uber.org/zap"
)

// Invoker calls one named task through a Handler applying its retry policies
// and per attempt timeout.
type Invoker struct {
	name     string
	handler  Handler
	policies []RetryPolicy
	timeout  time.Duration
}

type Result struct {
	Output   map[string]any
	Attempts int
}

func NewInvoker(name string, handler Handler, policies []RetryPolicy, timeout time.Duration) *Invoker {
	return &Invoker{
		name:     name,
		handler:  handler,
		policies: policies,
		timeout:  timeout,
	}
}

func (in *Invoker) Name() string {
	return in.name
}

func (in *Invoker) Invoke(ctx context.Context, input map[string]any) (Result, error) {
	var output map[string]any
	op := func(attempt int) error {
		out, err := in.call(ctx, input)
		if err != nil {
			return err
		}
		output = out
		return nil
	}
	notify := func(attempt int, err error, next time.Duration) {
		logger.Warn("task attempt failed, retrying", zap.String("task", in.name), zap.Int("attempt", attempt), zap.Duration("retryAfter", next), zap.Error(err))
	}
	attempts, err := Retry(ctx, in.policies, op, notify)
	if err != nil {
		return Result{Attempts: attempts}, err
	}
	if output == nil {
		output = make(map[string]any)
	}
	return Result{Output: output, Attempts: attempts}, nil
}

// call runs a single attempt. The handler runs on its own goroutine so a
// handler ignoring ctx still can not hold the instance past its deadline.
func (in *Invoker) call(ctx context.Context, input map[string]any) (map[string]any, error) {
	attemptCtx := ctx
	if in.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, in.timeout)
		defer cancel()
	}
	type response struct {
		output map[string]any
		err    error
	}
	done := make(chan response, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- response{err: &Error{Kind: ERROR_FAILED, Task: in.name, Message: fmt.Sprintf("handler panic: %v", r)}}
			}
		}()
		out, err := in.handler.Invoke(attemptCtx, in.name, input)
		done <- response{output: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, in.classify(ctx, attemptCtx, res.err)
		}
		return res.output, nil
	case <-attemptCtx.Done():
		return nil, in.classify(ctx, attemptCtx, attemptCtx.Err())
	}
}

func (in *Invoker) classify(ctx context.Context, attemptCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: ERROR_TIMEOUT, Task: in.name, Message: fmt.Sprintf("no result within %s", in.timeout), Cause: err}
	}
	var te *Error
	if errors.As(err, &te) {
		if len(te.Task) == 0 {
			return &Error{Kind: te.Kind, Task: in.name, Message: te.Message, Cause: te.Cause}
		}
		return err
	}
	return &Error{Kind: ERROR_FAILED, Task: in.name, Message: "handler returned error", Cause: err}
}
