package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// KVMetrics observes key-value store commands. It implements
// kv.OpObserver. All methods are nil-safe.
type KVMetrics struct {
	ops      *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewKVMetrics creates a Prometheus-backed KV observer.
//
// Returns nil if metrics are not enabled (Init not called), which callers
// can pass straight to kv.Instrument for zero overhead.
func NewKVMetrics(backend string) *KVMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := Registry()
	labels := prometheus.Labels{"backend": backend}

	return &KVMetrics{
		ops: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "redbiom_kv_commands_total",
				Help:        "Total key-value store commands by command name",
				ConstLabels: labels,
			},
			[]string{"command"},
		),
		errors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "redbiom_kv_command_errors_total",
				Help:        "Total failed key-value store commands by command name",
				ConstLabels: labels,
			},
			[]string{"command"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "redbiom_kv_command_duration_seconds",
				Help:        "Key-value store command latency by command name",
				ConstLabels: labels,
				Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"command"},
		),
	}
}

// ObserveOp records one completed store command.
func (m *KVMetrics) ObserveOp(command string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(command).Inc()
	m.duration.WithLabelValues(command).Observe(duration.Seconds())
	if err != nil {
		m.errors.WithLabelValues(command).Inc()
	}
}
