package model

import (
	"fmt"
	"time"
)

type FlowState int

const RUNNING FlowState = 1
const FAILED FlowState = 2
const COMPLETED FlowState = 3
const WAITING_DELAY FlowState = 4
const TIMED_OUT FlowState = 5

func (s FlowState) String() string {
	switch s {
	case RUNNING:
		return "RUNNING"
	case FAILED:
		return "FAILED"
	case COMPLETED:
		return "COMPLETED"
	case WAITING_DELAY:
		return "WAITING_DELAY"
	case TIMED_OUT:
		return "TIMED_OUT"
	}
	return "UNKNOWN"
}

func (s FlowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *FlowState) UnmarshalText(text []byte) error {
	for _, st := range []FlowState{RUNNING, FAILED, COMPLETED, WAITING_DELAY, TIMED_OUT} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown flow state %s", text)
}

func (s FlowState) IsTerminal() bool {
	return s == FAILED || s == COMPLETED || s == TIMED_OUT
}

type FailureInfo struct {
	Kind    string `json:"kind"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// FlowContext is the observable snapshot of one workflow instance.
type FlowContext struct {
	Id            string         `json:"id"`
	WorkflowName  string         `json:"workflowName"`
	CurrentAction string         `json:"currentAction"`
	Data          map[string]any `json:"data"`
	State         FlowState      `json:"flowState"`
	Attempts      map[string]int `json:"attempts"`
	Failure       *FailureInfo   `json:"failure,omitempty"`
	StartedAt     time.Time      `json:"startedAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type WorkflowRunRequest struct {
	Input map[string]any `json:"input"`
}
