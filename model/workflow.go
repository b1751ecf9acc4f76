package model

import "time"

type ActionType string

const ACTION_TYPE_TASK ActionType = "TASK"
const ACTION_TYPE_WAIT ActionType = "WAIT"
const ACTION_TYPE_CHOICE ActionType = "CHOICE"
const ACTION_TYPE_PARALLEL ActionType = "PARALLEL"
const ACTION_TYPE_PASS ActionType = "PASS"

type Workflow struct {
	Name       string        `json:"name" yaml:"name"`
	RootAction string        `json:"rootAction" yaml:"rootAction"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	Actions    []ActionDef   `json:"actions" yaml:"actions"`
}

type ActionDef struct {
	Name string     `json:"name" yaml:"name"`
	Type ActionType `json:"type" yaml:"type"`
	Next string     `json:"next,omitempty" yaml:"next,omitempty"`
	End  bool       `json:"end,omitempty" yaml:"end,omitempty"`

	// TASK
	Task       string        `json:"task,omitempty" yaml:"task,omitempty"`
	InputPath  string        `json:"inputPath,omitempty" yaml:"inputPath,omitempty"`
	ResultPath string        `json:"resultPath,omitempty" yaml:"resultPath,omitempty"`
	Retry      []RetryDef    `json:"retry,omitempty" yaml:"retry,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// WAIT
	Delay time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`

	// CHOICE
	Choices []ChoiceRule `json:"choices,omitempty" yaml:"choices,omitempty"`
	Default string       `json:"default,omitempty" yaml:"default,omitempty"`

	// PARALLEL
	Branches       []BranchDef            `json:"branches,omitempty" yaml:"branches,omitempty"`
	ResultSelector map[string]SelectorDef `json:"resultSelector,omitempty" yaml:"resultSelector,omitempty"`

	// PASS
	Increment string `json:"increment,omitempty" yaml:"increment,omitempty"`
}

type RetryDef struct {
	ErrorEquals []string      `json:"errorEquals" yaml:"errorEquals"`
	MaxAttempts int           `json:"maxAttempts" yaml:"maxAttempts"`
	Interval    time.Duration `json:"interval" yaml:"interval"`
	BackoffRate float64       `json:"backoffRate" yaml:"backoffRate"`
}

// ChoiceRule compares Variable with whichever comparison is set.
type ChoiceRule struct {
	Variable        string   `json:"variable" yaml:"variable"`
	NumericLessThan *float64 `json:"numericLessThan,omitempty" yaml:"numericLessThan,omitempty"`
	BooleanEquals   *bool    `json:"booleanEquals,omitempty" yaml:"booleanEquals,omitempty"`
	Next            string   `json:"next" yaml:"next"`
}

type BranchDef struct {
	Name       string      `json:"name" yaml:"name"`
	RootAction string      `json:"rootAction" yaml:"rootAction"`
	Actions    []ActionDef `json:"actions" yaml:"actions"`
}

type SelectorDef struct {
	Branch string `json:"branch" yaml:"branch"`
	Path   string `json:"path" yaml:"path"`
}
