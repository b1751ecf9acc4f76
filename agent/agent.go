package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mohitkumar/closureflow/analytics"
	"github.com/mohitkumar/closureflow/closure"
	"github.com/mohitkumar/closureflow/config"
	"github.com/mohitkumar/closureflow/flow"
	"github.com/mohitkumar/closureflow/logger"
	"github.com/mohitkumar/closureflow/metrics"
	"github.com/mohitkumar/closureflow/model"
	"github.com/mohitkumar/closureflow/persistence"
	"github.com/mohitkumar/closureflow/persistence/memory"
	"github.com/mohitkumar/closureflow/persistence/redis"
	"github.com/mohitkumar/closureflow/rest"
	"github.com/mohitkumar/closureflow/service"
	"github.com/mohitkumar/closureflow/task"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Agent wires storage, the executor pool and the http server of one process.
type Agent struct {
	Config                   config.Config
	definition               *model.Workflow
	flow                     *flow.Flow
	dao                      persistence.FlowDao
	closeDao                 func() error
	registry                 *prometheus.Registry
	httpServer               *rest.Server
	workflowExecutionService *service.WorkflowExecutionService
	shutdown                 bool
	shutdownLock             sync.Mutex
	wg                       sync.WaitGroup
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config: config,
	}
	setup := []func() error{
		a.setupAnalytics,
		a.setupMetrics,
		a.setupStorage,
		a.setupFlow,
		a.setupWorkflowExecutionService,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// NewHandler picks the http transport when a handler url is configured and
// falls back to the local handlers otherwise.
func NewHandler(conf config.Config) task.Handler {
	if len(conf.HandlerUrl) == 0 {
		logger.Warn("no handler url configured, using local handlers")
		return closure.LocalHandlers()
	}
	return task.NewHTTPHandler(conf.HandlerUrl, conf.HandlerTimeout)
}

// NewFlowDao builds the snapshot storage selected by the config.
func NewFlowDao(conf config.Config) (persistence.FlowDao, func() error, error) {
	switch conf.StorageType {
	case config.STORAGE_TYPE_REDIS:
		dao := redis.NewRedisFlowDao(conf.RedisConfig)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := dao.Ping(ctx); err != nil {
			dao.Close()
			return nil, nil, fmt.Errorf("redis not reachable at %v: %w", conf.RedisConfig.Addrs, err)
		}
		return dao, dao.Close, nil
	case config.STORAGE_TYPE_INMEM:
		return memory.NewInMemoryFlowDao(conf.InMemoryConfig.TTL), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unsupported storage type %s", conf.StorageType)
}

func (a *Agent) setupAnalytics() error {
	return analytics.InitDataCollector(a.Config.AnalyticsConfig)
}

func (a *Agent) setupMetrics() error {
	a.registry = prometheus.NewRegistry()
	return metrics.Register(a.registry)
}

func (a *Agent) setupStorage() error {
	var err error
	a.dao, a.closeDao, err = NewFlowDao(a.Config)
	return err
}

func (a *Agent) setupFlow() error {
	var err error
	a.definition = closure.Definition(a.Config.WorkflowOptions())
	a.flow, err = flow.Convert(a.definition, NewHandler(a.Config))
	return err
}

func (a *Agent) setupWorkflowExecutionService() error {
	a.workflowExecutionService = service.NewWorkflowExecutionService(a.flow, a.dao, closure.ValidateInput,
		a.Config.Concurrency, a.Config.ExecutorCapacity, &a.wg)
	a.workflowExecutionService.Start()
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.definition, a.workflowExecutionService, a.registry)
	return err
}

func (a *Agent) Start() error {
	go func() {
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			_ = a.Shutdown()
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	logger.Info("shutting down server")

	shutdown := []func() error{
		a.httpServer.Stop,
		func() error {
			a.workflowExecutionService.Stop()
			logger.Info("waiting for all services to shutdown...")
			a.wg.Wait()
			return nil
		},
		a.closeDao,
		analytics.Close,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
