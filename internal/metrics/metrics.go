// Package metrics provides Prometheus metrics for backup runs.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder owns a private registry so each invocation pushes only its own run.
type Recorder struct {
	registry *prometheus.Registry

	// BackupCount tracks backup runs by outcome.
	BackupCount *prometheus.CounterVec
	// StepFailures counts failed steps of the backup flow.
	StepFailures *prometheus.CounterVec
	// BackupDuration is the wall time of the last run.
	BackupDuration prometheus.Gauge
	// LastSuccess records the timestamp of the last successful run.
	LastSuccess prometheus.Gauge
	// RetentionDeletes counts snapshots removed by the sweeper.
	RetentionDeletes prometheus.Counter
	// SweepFailures counts sweeps that ended in error.
	SweepFailures prometheus.Counter
}

// NewRecorder registers the backup metrics for instanceID.
func NewRecorder(instanceID string) *Recorder {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"instance": instanceID}
	r := &Recorder{
		registry: reg,
		BackupCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "rds_backup_total",
			Help:        "The total number of RDS backup runs",
			ConstLabels: labels,
		}, []string{"status"}),
		StepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "rds_backup_step_failures_total",
			Help:        "Failed backup steps by step name",
			ConstLabels: labels,
		}, []string{"step"}),
		BackupDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "rds_backup_duration_seconds",
			Help:        "Time taken by the last backup run",
			ConstLabels: labels,
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "rds_backup_last_success_timestamp",
			Help:        "Timestamp of the last successful backup",
			ConstLabels: labels,
		}),
		RetentionDeletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rds_backup_retention_deletions_total",
			Help:        "Snapshots deleted by the retention policy",
			ConstLabels: labels,
		}),
		SweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rds_backup_sweep_failures_total",
			Help:        "Retention sweeps that ended in error",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(
		r.BackupCount,
		r.StepFailures,
		r.BackupDuration,
		r.LastSuccess,
		r.RetentionDeletes,
		r.SweepFailures,
	)
	return r
}

// ObserveSuccess records a completed run.
func (r *Recorder) ObserveSuccess(finished time.Time, took time.Duration) {
	r.BackupCount.WithLabelValues("success").Inc()
	r.BackupDuration.Set(took.Seconds())
	r.LastSuccess.Set(float64(finished.Unix()))
}

// ObserveFailure records a run that failed at step.
func (r *Recorder) ObserveFailure(step string, took time.Duration) {
	r.BackupCount.WithLabelValues("error").Inc()
	r.StepFailures.WithLabelValues(step).Inc()
	r.BackupDuration.Set(took.Seconds())
}

// ObserveSweep records the outcome of a retention sweep.
func (r *Recorder) ObserveSweep(deleted int, err error) {
	r.RetentionDeletes.Add(float64(deleted))
	if err != nil {
		r.SweepFailures.Inc()
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Push sends the run's metrics to a Pushgateway under job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
