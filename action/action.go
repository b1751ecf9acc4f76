package action

import (
	"context"
	"fmt"

	"github.com/mohitkumar/closureflow/model"
)

// Outcome is what a node hands back to the driver: the successor to visit
// and the context that successor receives.
type Outcome struct {
	Next     string
	Data     map[string]any
	Attempts int
}

type Action interface {
	GetName() string
	GetType() model.ActionType
	// GetNext lists every successor the node can route to.
	GetNext() []string
	IsEnd() bool
	Validate() error
	Execute(ctx context.Context, data map[string]any) (Outcome, error)
}

type baseAction struct {
	name    string
	actType model.ActionType
	next    string
	end     bool
}

func newBaseAction(def model.ActionDef) baseAction {
	return baseAction{
		name:    def.Name,
		actType: def.Type,
		next:    def.Next,
		end:     def.End,
	}
}

func (ba *baseAction) GetName() string {
	return ba.name
}

func (ba *baseAction) GetType() model.ActionType {
	return ba.actType
}

func (ba *baseAction) GetNext() []string {
	if ba.end {
		return nil
	}
	return []string{ba.next}
}

func (ba *baseAction) IsEnd() bool {
	return ba.end
}

func (ba *baseAction) validateTransition() error {
	if ba.end && len(ba.next) > 0 {
		return fmt.Errorf("action=%s, end action can not have next", ba.name)
	}
	if !ba.end && len(ba.next) == 0 {
		return fmt.Errorf("action=%s, next action is required", ba.name)
	}
	return nil
}

func (ba *baseAction) outcome(data map[string]any) Outcome {
	if ba.end {
		return Outcome{Data: data}
	}
	return Outcome{Next: ba.next, Data: data}
}
