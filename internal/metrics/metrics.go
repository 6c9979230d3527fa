// Package metrics exposes prometheus collectors for generation calls and
// campaign progress.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple sessions never
// collide on the default one.
type Collector struct {
	registry *prometheus.Registry

	generationTotal   *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	actionsTotal      *prometheus.CounterVec
	daysAdvanced      prometheus.Counter
	budget            prometheus.Gauge
	reputation        prometheus.Gauge
	officers          *prometheus.GaugeVec
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "swat"
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.generationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Generation requests by request name and outcome",
		},
		[]string{"request", "outcome"},
	)
	c.generationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "latency_seconds",
			Help:      "Generation round-trip latency",
			Buckets:   []float64{.25, .5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"request"},
	)
	c.actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "actions_total",
			Help:      "Commander actions by name and outcome",
		},
		[]string{"action", "outcome"},
	)
	c.daysAdvanced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "campaign",
		Name:      "days_advanced_total",
		Help:      "Shift rotations completed",
	})
	c.budget = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "campaign",
		Name:      "budget",
		Help:      "Current department budget",
	})
	c.reputation = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "campaign",
		Name:      "reputation",
		Help:      "Current department reputation",
	})
	c.officers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "campaign",
			Name:      "officers",
			Help:      "Officers on the roster by status",
		},
		[]string{"status"},
	)

	c.registry.MustRegister(
		c.generationTotal,
		c.generationLatency,
		c.actionsTotal,
		c.daysAdvanced,
		c.budget,
		c.reputation,
		c.officers,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordGeneration records one generation call.
func (c *Collector) RecordGeneration(request string, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.generationTotal.WithLabelValues(request, outcome).Inc()
	c.generationLatency.WithLabelValues(request).Observe(d.Seconds())
}

// RecordAction records one commander action.
func (c *Collector) RecordAction(action string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.actionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordDay counts a completed shift rotation.
func (c *Collector) RecordDay() {
	if c == nil {
		return
	}
	c.daysAdvanced.Inc()
}

// ObserveCampaign updates the campaign gauges. counts maps officer status to
// head count; statuses absent from counts are reset to zero.
func (c *Collector) ObserveCampaign(budget, reputation int, counts map[string]int, statuses []string) {
	if c == nil {
		return
	}
	c.budget.Set(float64(budget))
	c.reputation.Set(float64(reputation))
	for _, st := range statuses {
		c.officers.WithLabelValues(st).Set(float64(counts[st]))
	}
}
