package persistence

import (
	"fmt"

	"github.com/mohitkumar/closureflow/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	WorkflowName string
	FlowId       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("flow %s of workflow %s not found", e.FlowId, e.WorkflowName)
}

// FlowDao stores instance snapshots. Snapshots are observational, the engine
// never resumes from them.
type FlowDao interface {
	SaveFlowContext(wfName string, flowId string, flowCtx *model.FlowContext) error
	GetFlowContext(wfName string, flowId string) (*model.FlowContext, error)
	DeleteFlowContext(wfName string, flowId string) error
}
