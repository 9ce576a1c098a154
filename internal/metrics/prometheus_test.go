package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("txmonkey")

	m.RecordTxSent("fill")
	m.RecordTxSent("fill")
	m.RecordTxSent("random")
	m.RecordTxFailed("deploy")
	m.RecordScenario("deploy", "aborted")

	require.Equal(t, 2.0, testutil.ToFloat64(m.TxSent.WithLabelValues("fill")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TxSent.WithLabelValues("random")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TxFailed.WithLabelValues("deploy")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ScenarioRuns.WithLabelValues("deploy", "aborted")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.ScenarioRuns.WithLabelValues("deploy", "completed")))
}

func TestMetrics_Latency(t *testing.T) {
	m := NewMetrics("txmonkey")

	m.ObserveNonceLatency(10 * time.Millisecond)
	m.ObserveSubmitLatency(20 * time.Millisecond)
	m.ObserveSubmitLatency(30 * time.Millisecond)

	count, err := testutil.GatherAndCount(m.Registry(), "txmonkey_submit_latency_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(m.Registry(), "txmonkey_nonce_latency_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	var metric dto.Metric
	require.NoError(t, m.SubmitLatency.Write(&metric))
	require.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics("txmonkey")
	b := NewMetrics("txmonkey")

	a.RecordTxSent("fill")

	require.Equal(t, 0.0, testutil.ToFloat64(b.TxSent.WithLabelValues("fill")))
}

func TestMetrics_StartStop(t *testing.T) {
	m := NewMetrics("txmonkey")
	ctx := context.Background()

	require.False(t, m.IsRunning())
	require.NoError(t, m.Start(ctx, 0))
	require.True(t, m.IsRunning())
	require.Error(t, m.Start(ctx, 0))

	require.NoError(t, m.Stop(ctx))
	require.False(t, m.IsRunning())
	require.NoError(t, m.Stop(ctx))
}
