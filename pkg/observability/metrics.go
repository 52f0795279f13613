package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AssistantMetrics tracks the fallback chain's behavior per provider.
type AssistantMetrics struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	fallbackDepth   prometheus.Histogram
	results         *prometheus.CounterVec
}

// NewAssistantMetrics registers the assistant metric set on reg.
func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	m := &AssistantMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_provider_attempts_total",
			Help: "Provider attempts by provider name and outcome.",
		}, []string{"provider", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_provider_attempt_seconds",
			Help:    "Latency of individual provider attempts.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		fallbackDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_fallback_depth",
			Help:    "How many stages were tried before a result was produced.",
			Buckets: []float64{1, 2, 3, 4},
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_results_total",
			Help: "Results produced, by originating source.",
		}, []string{"source"}),
	}
	reg.MustRegister(m.attempts, m.attemptDuration, m.fallbackDepth, m.results)
	return m
}

// RecordAttempt counts one adapter call. Safe on a nil receiver so the
// orchestrator can run unmetered in tests.
func (m *AssistantMetrics) RecordAttempt(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(provider, outcome).Inc()
	m.attemptDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordResult counts the terminal result and the depth it took to get there.
func (m *AssistantMetrics) RecordResult(source string, depth int) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(source).Inc()
	m.fallbackDepth.Observe(float64(depth))
}
