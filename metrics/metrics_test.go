package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveAction(t *testing.T) {
	before := testutil.CollectAndCount(ActionDuration)
	ObserveAction("metrics-test", "Step", time.Now(), nil)
	ObserveAction("metrics-test", "Step", time.Now(), errors.New("boom"))
	require.Equal(t, before+2, testutil.CollectAndCount(ActionDuration))
}

func TestCounters(t *testing.T) {
	FlowsStarted.WithLabelValues("metrics-test").Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(FlowsStarted.WithLabelValues("metrics-test")))

	TaskAttempts.WithLabelValues("metrics-test", "Close").Add(2)
	require.Equal(t, 2.0, testutil.ToFloat64(TaskAttempts.WithLabelValues("metrics-test", "Close")))
}
