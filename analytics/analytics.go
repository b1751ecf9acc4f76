package analytics

import "sync"

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const NOOP_DATA_COLLECTOR DataCollectorType = "NOOP"
const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE_DATA_COLLECTOR"

// WorkflowDataCollector records the audit trail of action executions.
type WorkflowDataCollector interface {
	RecordActionSuccess(wfName string, flowId string, actionName string, attempts int, data map[string]any)
	RecordActionFailure(wfName string, flowId string, actionName string, kind string, reason string)
	Close() error
}

var (
	mu                sync.RWMutex
	workflowCollector WorkflowDataCollector = noopCollector{}
)

func InitDataCollector(config DataCollectorConfig) error {
	switch config.CollectorType {
	case LOG_FILE_DATA_COLLECTOR:
		c, err := NewLogFileDataCollector(config.FileName)
		if err != nil {
			return err
		}
		SetDataCollector(c)
	default:
		SetDataCollector(noopCollector{})
	}
	return nil
}

func SetDataCollector(c WorkflowDataCollector) {
	mu.Lock()
	defer mu.Unlock()
	workflowCollector = c
}

func collector() WorkflowDataCollector {
	mu.RLock()
	defer mu.RUnlock()
	return workflowCollector
}

func RecordActionSuccess(wfName string, flowId string, actionName string, attempts int, data map[string]any) {
	collector().RecordActionSuccess(wfName, flowId, actionName, attempts, data)
}

func RecordActionFailure(wfName string, flowId string, actionName string, kind string, reason string) {
	collector().RecordActionFailure(wfName, flowId, actionName, kind, reason)
}

func Close() error {
	return collector().Close()
}

type noopCollector struct{}

func (noopCollector) RecordActionSuccess(string, string, string, int, map[string]any) {}
func (noopCollector) RecordActionFailure(string, string, string, string, string)      {}
func (noopCollector) Close() error                                                     { return nil }
