// Package observability collects run metrics and exports them in the
// Prometheus text format for the node_exporter textfile collector.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the counters of one evaluation run. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OracleCalls    prometheus.Counter
	OracleRetries  prometheus.Counter
	OracleVerdicts *prometheus.CounterVec
	OracleLatency  prometheus.Histogram
	RecordsScored  *prometheus.CounterVec
	RecordsSkipped prometheus.Counter
}

// NewMetrics registers the run counters on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OracleCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fabeval_oracle_calls_total",
			Help: "Number of oracle consultations requested",
		}),
		OracleRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fabeval_oracle_retries_total",
			Help: "Number of retried oracle attempts",
		}),
		OracleVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fabeval_oracle_verdicts_total",
			Help: "Oracle consultations by final status",
		}, []string{"status"}),
		OracleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fabeval_oracle_consult_duration_seconds",
			Help:    "Wall time of one consultation including retries",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		RecordsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fabeval_records_scored_total",
			Help: "Records scored per segment",
		}, []string{"segment"}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fabeval_records_skipped_total",
			Help: "Tracked records with no attributes on either side",
		}),
	}

	m.registry.MustRegister(
		m.OracleCalls,
		m.OracleRetries,
		m.OracleVerdicts,
		m.OracleLatency,
		m.RecordsScored,
		m.RecordsSkipped,
	)

	return m
}

// ObserveConsultation records one finished consultation.
func (m *Metrics) ObserveConsultation(status string, attempts int, seconds float64) {
	if m == nil {
		return
	}
	m.OracleCalls.Inc()
	if attempts > 1 {
		m.OracleRetries.Add(float64(attempts - 1))
	}
	m.OracleVerdicts.WithLabelValues(status).Inc()
	m.OracleLatency.Observe(seconds)
}

// ObserveRecord records one scored or skipped record.
func (m *Metrics) ObserveRecord(segment string, skipped bool) {
	if m == nil {
		return
	}
	if skipped {
		m.RecordsSkipped.Inc()
		return
	}
	m.RecordsScored.WithLabelValues(segment).Inc()
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Gatherer()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
