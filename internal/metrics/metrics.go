// Package metrics counts store events with Prometheus collectors and can
// dump them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/Veraticus/lensline/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lensline"

// Recorder holds one process's collectors in a private registry.
type Recorder struct {
	registry        *prometheus.Registry
	analyses        *prometheus.CounterVec
	remoteFailures  *prometheus.CounterVec
	historyRecords  prometheus.Gauge
	commandDuration *prometheus.HistogramVec
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses added to the history, labeled by source and verdict.",
		}, []string{"source", "verdict"}),
		remoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_failures_total",
			Help:      "Remote calls that failed and were absorbed, labeled by operation.",
		}, []string{"operation"}),
		historyRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_records",
			Help:      "Records currently held in the analysis history.",
		}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Wall time of CLI commands.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"command"}),
	}

	r.registry.MustRegister(r.analyses, r.remoteFailures, r.historyRecords, r.commandDuration)
	return r
}

// AnalysisAdded counts a record entering the history.
func (r *Recorder) AnalysisAdded(source string, verdict model.Verdict) {
	r.analyses.WithLabelValues(source, string(verdict)).Inc()
}

// RemoteFailure counts an absorbed remote failure.
func (r *Recorder) RemoteFailure(operation string) {
	r.remoteFailures.WithLabelValues(operation).Inc()
}

// HistorySize sets the history gauge.
func (r *Recorder) HistorySize(n int) {
	r.historyRecords.Set(float64(n))
}

// ObserveCommand records how long a command ran.
func (r *Recorder) ObserveCommand(command string, d time.Duration) {
	r.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// Registry exposes the registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile atomically writes every collector to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
