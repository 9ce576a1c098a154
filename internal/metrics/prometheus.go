package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for txmonkey
type Metrics struct {
	// Send attempts by scenario
	TxSent   *prometheus.CounterVec
	TxFailed *prometheus.CounterVec

	// Round trip latency (buckets: 5ms .. 5s)
	NonceLatency  prometheus.Histogram
	SubmitLatency prometheus.Histogram

	// Scenario runs by outcome
	ScenarioRuns *prometheus.CounterVec

	registry *prometheus.Registry

	// HTTP server
	server *http.Server
	mu     sync.Mutex
}

// NewMetrics creates a new Metrics instance with the given namespace.
// Metrics are registered on a private registry so several instances can coexist.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	latencyBuckets := []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

	return &Metrics{
		TxSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_sent_total",
			Help:      "Total number of transactions accepted by the node",
		}, []string{"scenario"}),
		TxFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_failed_total",
			Help:      "Total number of failed send attempts",
		}, []string{"scenario"}),
		NonceLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nonce_latency_seconds",
			Help:      "eth_getTransactionCount round trip in seconds",
			Buckets:   latencyBuckets,
		}),
		SubmitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_latency_seconds",
			Help:      "eth_sendRawTransaction round trip in seconds",
			Buckets:   latencyBuckets,
		}),
		ScenarioRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_runs_total",
			Help:      "Scenario runs by outcome",
		}, []string{"scenario", "outcome"}),
		registry: reg,
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Start starts the HTTP server for Prometheus metrics
func (m *Metrics) Start(_ context.Context, port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server != nil {
		return fmt.Errorf("metrics server already running")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := m.server
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", "port", port, "err", err)
		}
	}()

	return nil
}

// Stop stops the HTTP server gracefully
func (m *Metrics) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.server == nil {
		return nil
	}

	err := m.server.Shutdown(ctx)
	m.server = nil
	return err
}

// IsRunning returns true if the metrics server is running
func (m *Metrics) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.server != nil
}

// RecordTxSent increments the sent counter of a scenario
func (m *Metrics) RecordTxSent(scenario string) {
	m.TxSent.WithLabelValues(scenario).Inc()
}

// RecordTxFailed increments the failure counter of a scenario
func (m *Metrics) RecordTxFailed(scenario string) {
	m.TxFailed.WithLabelValues(scenario).Inc()
}

// ObserveNonceLatency records one nonce lookup
func (m *Metrics) ObserveNonceLatency(d time.Duration) {
	m.NonceLatency.Observe(d.Seconds())
}

// ObserveSubmitLatency records one raw transaction submission
func (m *Metrics) ObserveSubmitLatency(d time.Duration) {
	m.SubmitLatency.Observe(d.Seconds())
}

// RecordScenario counts a finished scenario run
func (m *Metrics) RecordScenario(scenario, outcome string) {
	m.ScenarioRuns.WithLabelValues(scenario, outcome).Inc()
}
