// Package metrics records per-stage pipeline metrics in a private Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "normalize"

// Recorder collects stage metrics for one process.
type Recorder struct {
	registry *prometheus.Registry
	rows     *prometheus.CounterVec
	duration *prometheus.GaugeVec
	failures *prometheus.CounterVec
}

// NewRecorder registers the stage collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_rows_inserted_total",
			Help:      "Rows inserted by a pipeline stage.",
		}, []string{"stage"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last execution of a pipeline stage.",
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stage executions that rolled back.",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(r.rows, r.duration, r.failures)
	return r
}

// ObserveStage records one stage execution. A nil Recorder is a no-op.
func (r *Recorder) ObserveStage(stage string, rows int64, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(stage).Set(elapsed.Seconds())
	if err != nil {
		r.failures.WithLabelValues(stage).Inc()
		return
	}
	r.rows.WithLabelValues(stage).Add(float64(rows))
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in Prometheus text format to path,
// suitable for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
