package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus records wallet engine activity.
type Prometheus struct {
	operations *prometheus.CounterVec
	conflicts  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	cache      *prometheus.CounterVec
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_operations_total",
				Help: "Wallet operations by type and result.",
			},
			[]string{"operation", "result"},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_operation_retries_total",
				Help: "Retried wallet operation attempts by reason.",
			},
			[]string{"reason"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_operation_duration_seconds",
				Help:    "Wallet operation latency including retries.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_cache_lookups_total",
				Help: "Balance cache lookups by outcome.",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(p.operations, p.conflicts, p.duration, p.cache)
	return p
}

func (p *Prometheus) RecordOperation(operation, result string, took time.Duration) {
	p.operations.WithLabelValues(operation, result).Inc()
	p.duration.WithLabelValues(operation).Observe(took.Seconds())
}

func (p *Prometheus) RecordRetry(reason string) {
	p.conflicts.WithLabelValues(reason).Inc()
}

func (p *Prometheus) RecordCacheHit() {
	p.cache.WithLabelValues("hit").Inc()
}

func (p *Prometheus) RecordCacheMiss() {
	p.cache.WithLabelValues("miss").Inc()
}
