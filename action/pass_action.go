package action

import (
	"context"
	"fmt"
	"math"

	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/util"
)

var _ Action = new(passAction)

// passAction forwards the context unchanged, or with the counter at
// increment bumped by one.
type passAction struct {
	baseAction
	increment string
}

func NewPassAction(def model.ActionDef) *passAction {
	return &passAction{
		baseAction: newBaseAction(def),
		increment:  def.Increment,
	}
}

func (p *passAction) Validate() error {
	if len(p.increment) > 0 {
		if p.increment == util.ROOT_PATH {
			return fmt.Errorf("action=%s, can not increment the root", p.name)
		}
		if err := util.ValidatePath(p.increment); err != nil {
			return fmt.Errorf("action=%s, %w", p.name, err)
		}
	}
	return p.validateTransition()
}

func (p *passAction) Execute(ctx context.Context, data map[string]any) (Outcome, error) {
	if len(p.increment) == 0 {
		return p.outcome(data), nil
	}
	count := 0.0
	if v, err := util.Lookup(data, p.increment); err == nil && v != nil {
		n, ok := util.ToFloat(v)
		if !ok {
			return Outcome{}, &InvalidStateError{Action: p.name, Message: fmt.Sprintf("%s is %T, not a number", p.increment, v)}
		}
		count = n
	}
	count++
	var value any = count
	if count == math.Trunc(count) {
		value = int(count)
	}
	out, err := util.SetPath(data, p.increment, value)
	if err != nil {
		return Outcome{}, &InvalidStateError{Action: p.name, Message: err.Error()}
	}
	return p.outcome(out), nil
}
