// Package metrics holds the Prometheus collectors of the flow engine. The
// collectors work unregistered, Register exposes them on a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "closureflow"

var (
	FlowsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flows_started_total",
		Help:      "Workflow instances started.",
	}, []string{"workflow"})

	FlowsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flows_finished_total",
		Help:      "Workflow instances that reached a terminal state.",
	}, []string{"workflow", "state"})

	ActionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "action_duration_seconds",
		Help:      "Time spent executing an action, including waits and retries.",
		Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"workflow", "action", "result"})

	TaskAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_attempts_total",
		Help:      "Task handler invocations, retries included.",
	}, []string{"workflow", "action"})
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{FlowsStarted, FlowsFinished, ActionDuration, TaskAttempts}
}

func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveAction(workflow string, action string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ActionDuration.WithLabelValues(workflow, action, result).Observe(time.Since(start).Seconds())
}
