package util

import (
	"fmt"
	"sync"

	"github.com/mohitkumar/closureflow/logger"
	"go.uber.org/zap"
)

type Task any

// Worker drains a buffered task channel with a fixed number of goroutines.
type Worker struct {
	name        string
	concurrency int
	stop        chan struct{}
	wg          *sync.WaitGroup
	handler     func(Task) error
	taskChan    chan Task
	stopOnce    sync.Once
}

func (w *Worker) Start() {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			for {
				select {
				case task := <-w.taskChan:
					err := w.handler(task)
					if err != nil {
						logger.Error("error in executing task in worker", zap.String("worker", w.name), zap.Int("routine", id), zap.Error(err))
					}
				case <-w.stop:
					logger.Info("stopping worker", zap.String("worker", w.name), zap.Int("routine", id))
					return
				}
			}
		}(i)
	}
	logger.Info("worker started", zap.String("worker", w.name), zap.Int("concurrency", w.concurrency))
}

// Submit enqueues a task without blocking, it fails when the queue is full.
func (w *Worker) Submit(task Task) error {
	select {
	case <-w.stop:
		return fmt.Errorf("worker %s stopped", w.name)
	default:
	}
	select {
	case w.taskChan <- task:
		return nil
	default:
		return fmt.Errorf("worker %s queue is full", w.name)
	}
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

// Drain hands every task still queued to fn and returns how many there were.
// It does not block, callers use it after Stop.
func (w *Worker) Drain(fn func(Task)) int {
	n := 0
	for {
		select {
		case task := <-w.taskChan:
			fn(task)
			n++
		default:
			return n
		}
	}
}

func NewWorker(name string, wg *sync.WaitGroup, handler func(Task) error, concurrency int, capacity int) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		taskChan:    make(chan Task, capacity),
		name:        name,
		concurrency: concurrency,
		wg:          wg,
		stop:        make(chan struct{}),
		handler:     handler,
	}
}
