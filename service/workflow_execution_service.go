package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohitkumar/closureflow/flow"
	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/persistence"
	"github.com/mohitkumar/closureflow/util"
	"go.uber.org/zap"
)

type InputValidator func(input map[string]any) error

type flowRequest struct {
	flowId   string
	input    map[string]any
	queuedAt time.Time
}

// WorkflowExecutionService starts instances of one flow, either inline or on
// a bounded pool of executor goroutines.
type WorkflowExecutionService struct {
	flow      *flow.Flow
	dao       persistence.FlowDao
	validate  InputValidator
	worker    *util.Worker
	wg        *sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewWorkflowExecutionService(fl *flow.Flow, dao persistence.FlowDao, validate InputValidator, concurrency int, capacity int, wg *sync.WaitGroup) *WorkflowExecutionService {
	if wg == nil {
		wg = &sync.WaitGroup{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &WorkflowExecutionService{
		flow:     fl,
		dao:      dao,
		validate: validate,
		wg:       wg,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.worker = util.NewWorker("flow-executor", wg, s.handle, concurrency, capacity)
	return s
}

func (s *WorkflowExecutionService) Start() {
	s.startOnce.Do(s.worker.Start)
}

// Stop cancels running instances and stops the executor goroutines.
// Instances still queued are marked failed with a CANCELED failure.
func (s *WorkflowExecutionService) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.worker.Stop()
		if n := s.worker.Drain(s.cancelQueued); n > 0 {
			logger.Warn("canceled queued workflows", zap.String("workflow", s.flow.Name), zap.Int("count", n))
		}
	})
}

func (s *WorkflowExecutionService) WorkflowName() string {
	return s.flow.Name
}

// StartFlow queues a new instance and returns its id. A RUNNING snapshot is
// saved before the instance is queued so the id can be looked up right away.
func (s *WorkflowExecutionService) StartFlow(input map[string]any) (string, error) {
	if err := s.checkInput(input); err != nil {
		return "", err
	}
	flowId := uuid.New().String()
	now := time.Now()
	err := s.dao.SaveFlowContext(s.flow.Name, flowId, &model.FlowContext{
		Id:            flowId,
		WorkflowName:  s.flow.Name,
		CurrentAction: s.flow.RootAction,
		Data:          util.DeepCopy(input),
		State:         model.RUNNING,
		Attempts:      map[string]int{},
		StartedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return "", err
	}
	if err := s.worker.Submit(flowRequest{flowId: flowId, input: util.DeepCopy(input), queuedAt: now}); err != nil {
		if delErr := s.dao.DeleteFlowContext(s.flow.Name, flowId); delErr != nil {
			logger.Error("error in deleting snapshot of rejected workflow", zap.String("workflow", s.flow.Name), zap.String("id", flowId), zap.Error(delErr))
		}
		return "", err
	}
	logger.Info("workflow queued", zap.String("workflow", s.flow.Name), zap.String("id", flowId))
	return flowId, nil
}

// RunFlow executes a new instance on the calling goroutine.
func (s *WorkflowExecutionService) RunFlow(ctx context.Context, input map[string]any) (string, map[string]any, error) {
	if err := s.checkInput(input); err != nil {
		return "", nil, err
	}
	flowId := uuid.New().String()
	out, err := flow.NewFlowStateMachine(s.flow, flowId, s.dao).Run(ctx, input)
	return flowId, out, err
}

func (s *WorkflowExecutionService) GetFlow(flowId string) (*model.FlowContext, error) {
	return s.dao.GetFlowContext(s.flow.Name, flowId)
}

func (s *WorkflowExecutionService) checkInput(input map[string]any) error {
	if s.validate == nil {
		return nil
	}
	if err := s.validate(input); err != nil {
		return fmt.Errorf("invalid workflow input: %w", err)
	}
	return nil
}

func (s *WorkflowExecutionService) handle(t util.Task) error {
	req, ok := t.(flowRequest)
	if !ok {
		return fmt.Errorf("can not handle task of type %T", t)
	}
	_, err := flow.NewFlowStateMachine(s.flow, req.flowId, s.dao).Run(s.ctx, req.input)
	return err
}

func (s *WorkflowExecutionService) cancelQueued(t util.Task) {
	req, ok := t.(flowRequest)
	if !ok {
		return
	}
	err := s.dao.SaveFlowContext(s.flow.Name, req.flowId, &model.FlowContext{
		Id:            req.flowId,
		WorkflowName:  s.flow.Name,
		CurrentAction: s.flow.RootAction,
		Data:          req.input,
		State:         model.FAILED,
		Attempts:      map[string]int{},
		Failure: &model.FailureInfo{
			Kind:    string(flow.CANCELED_FAILURE),
			Action:  s.flow.RootAction,
			Message: "executor stopped before the workflow started",
		},
		StartedAt: req.queuedAt,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		logger.Error("error in saving snapshot of canceled workflow", zap.String("workflow", s.flow.Name), zap.String("id", req.flowId), zap.Error(err))
	}
}
