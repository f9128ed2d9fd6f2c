package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder tracks analysis activity for Prometheus scraping.
type MetricsRecorder struct {
	analysesTotal    *prometheus.CounterVec
	parseErrorsTotal *prometheus.CounterVec
	signalsDetected  prometheus.Counter
	duration         *prometheus.HistogramVec
}

// NewMetricsRecorder creates a recorder registered on the default registry.
func NewMetricsRecorder() *MetricsRecorder {
	return NewMetricsRecorderWith(prometheus.DefaultRegisterer)
}

// NewMetricsRecorderWith creates a recorder registered on the given
// registerer. Tests pass a fresh registry to avoid duplicate registration.
func NewMetricsRecorderWith(reg prometheus.Registerer) *MetricsRecorder {
	factory := promauto.With(reg)
	return &MetricsRecorder{
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsepulse_analyses_total",
				Help: "Total number of analysis requests by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		parseErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nsepulse_parse_errors_total",
				Help: "Total number of report parsing failures by kind",
			},
			[]string{"kind"},
		),
		signalsDetected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nsepulse_signals_detected_total",
				Help: "Total number of fresh-crossing signals detected",
			},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nsepulse_analysis_duration_seconds",
				Help:    "Duration of analysis operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records a completed analysis request.
func (m *MetricsRecorder) RecordAnalysis(kind, outcome string) {
	m.analysesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordParseError records a report parsing failure.
func (m *MetricsRecorder) RecordParseError(kind string) {
	m.parseErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordSignals records the number of signals emitted by one analysis.
func (m *MetricsRecorder) RecordSignals(count int) {
	m.signalsDetected.Add(float64(count))
}

// RecordDuration records operation latency in seconds.
func (m *MetricsRecorder) RecordDuration(operation string, seconds float64) {
	m.duration.WithLabelValues(operation).Observe(seconds)
}
