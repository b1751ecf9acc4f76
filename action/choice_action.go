package action

import (
	"context"
	"fmt"

	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/util"
)

var _ Action = new(choiceAction)

type choiceAction struct {
	baseAction
	choices     []model.ChoiceRule
	defaultNext string
}

func NewChoiceAction(def model.ActionDef) *choiceAction {
	return &choiceAction{
		baseAction:  newBaseAction(def),
		choices:     def.Choices,
		defaultNext: def.Default,
	}
}

func (c *choiceAction) GetNext() []string {
	var next []string
	for _, rule := range c.choices {
		next = append(next, rule.Next)
	}
	if len(c.defaultNext) > 0 {
		next = append(next, c.defaultNext)
	}
	return next
}

func (c *choiceAction) IsEnd() bool {
	return false
}

func (c *choiceAction) Validate() error {
	if c.end || len(c.next) > 0 {
		return fmt.Errorf("action=%s, choice routes through its rules, next and end are not allowed", c.name)
	}
	if len(c.choices) == 0 {
		return fmt.Errorf("action=%s, choice should have at least one rule", c.name)
	}
	for i, rule := range c.choices {
		if len(rule.Variable) == 0 {
			return fmt.Errorf("action=%s, rule %d variable can not be empty", c.name, i)
		}
		if err := util.ValidatePath(rule.Variable); err != nil {
			return fmt.Errorf("action=%s, rule %d %w", c.name, i, err)
		}
		if (rule.NumericLessThan == nil) == (rule.BooleanEquals == nil) {
			return fmt.Errorf("action=%s, rule %d should have exactly one comparison", c.name, i)
		}
		if len(rule.Next) == 0 {
			return fmt.Errorf("action=%s, rule %d next can not be empty", c.name, i)
		}
	}
	return nil
}

// Evaluate returns the successor of the first matching rule, the default
// otherwise. It does not touch data.
func (c *choiceAction) Evaluate(data map[string]any) (string, error) {
	for _, rule := range c.choices {
		if matches(rule, data) {
			return rule.Next, nil
		}
	}
	if len(c.defaultNext) == 0 {
		return "", &InvalidStateError{Action: c.name, Message: "no rule matched and no default is defined"}
	}
	return c.defaultNext, nil
}

func (c *choiceAction) Execute(ctx context.Context, data map[string]any) (Outcome, error) {
	next, err := c.Evaluate(data)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Next: next, Data: data}, nil
}

// matches treats a missing variable or a value of the wrong type as false.
func matches(rule model.ChoiceRule, data map[string]any) bool {
	value, err := util.Lookup(data, rule.Variable)
	if err != nil {
		return false
	}
	switch {
	case rule.NumericLessThan != nil:
		n, ok := util.ToFloat(value)
		return ok && n < *rule.NumericLessThan
	case rule.BooleanEquals != nil:
		b, ok := value.(bool)
		return ok && b == *rule.BooleanEquals
	}
	return false
}
