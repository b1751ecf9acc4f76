package action

import (
	"context"
	"fmt"
	"time"

	"github.com/mohitkumar/closureflow/model"
)

var _ Action = new(waitAction)

type waitAction struct {
	baseAction
	delay time.Duration
}

func NewWaitAction(def model.ActionDef) *waitAction {
	return &waitAction{
		baseAction: newBaseAction(def),
		delay:      def.Delay,
	}
}

func (w *waitAction) Validate() error {
	if w.delay <= 0 {
		return fmt.Errorf("action=%s, delay value %s wrong", w.name, w.delay)
	}
	return w.validateTransition()
}

func (w *waitAction) Execute(ctx context.Context, data map[string]any) (Outcome, error) {
	timer := time.NewTimer(w.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return w.outcome(data), nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
