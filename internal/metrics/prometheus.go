// Package metrics provides the Prometheus-backed simulate.MetricsCollector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/rotapair/simulate"
)

const namespace = "rotapair"

// Collector implements simulate.MetricsCollector with Prometheus metrics.
type Collector struct {
	turns            prometheus.Counter
	pairs            prometheus.Counter
	placeholderTurns prometheus.Counter
	activeSize       prometheus.Histogram
	turnWeight       prometheus.Histogram
	solveDuration    *prometheus.HistogramVec
	failures         *prometheus.CounterVec
}

// Compile-time assertion that Collector implements MetricsCollector.
var _ simulate.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg.
// A nil reg selects prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Number of completed turns.",
		}),
		pairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_total",
			Help:      "Number of pairs produced, placeholder pairs included.",
		}),
		placeholderTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_turns_total",
			Help:      "Number of turns in which the placeholder participant played.",
		}),
		activeSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "active_set_size",
			Help:      "Size of the active set per turn.",
			Buckets:   prometheus.LinearBuckets(0, 4, 10),
		}),
		turnWeight: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_weight",
			Help:      "Total staleness of each turn's matching.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Solver wall time per attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"result"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_failures_total",
			Help:      "Failed turns by kind.",
		}, []string{"kind"}),
	}

	for _, m := range []prometheus.Collector{
		c.turns, c.pairs, c.placeholderTurns, c.activeSize,
		c.turnWeight, c.solveDuration, c.failures,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RecordTurn implements simulate.MetricsCollector.
func (c *Collector) RecordTurn(active, pairs int, placeholder bool, weight int64) {
	c.turns.Inc()
	c.pairs.Add(float64(pairs))
	if placeholder {
		c.placeholderTurns.Inc()
	}
	c.activeSize.Observe(float64(active))
	c.turnWeight.Observe(float64(weight))
}

// RecordSolve implements simulate.MetricsCollector.
func (c *Collector) RecordSolve(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = simulate.FailureKind(err)
	}
	c.solveDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordFailure implements simulate.MetricsCollector.
func (c *Collector) RecordFailure(kind string) {
	c.failures.WithLabelValues(kind).Inc()
}
