// Package metrics exposes Prometheus counters for log parse runs.
//
// Collectors are created per process and registered on an explicit
// registry; nothing is registered on the global default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pable/cs-logstats/internal/model"
	"github.com/pable/cs-logstats/internal/parser"
)

// Parse outcomes recorded by ObserveResult.
const (
	ResultParsed    = "parsed"
	ResultDuplicate = "duplicate"
	ResultError     = "error"
)

// Collector records parse runs.
type Collector struct {
	parses   *prometheus.CounterVec
	lines    *prometheus.CounterVec
	events   *prometheus.CounterVec
	duration prometheus.Histogram
	stored   prometheus.Gauge
}

// NewCollector creates a collector registered on a fresh private registry.
func NewCollector() (*Collector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewCollectorWithRegistry(reg), reg
}

// NewCollectorWithRegistry creates a collector and registers it on registry.
func NewCollectorWithRegistry(registry prometheus.Registerer) *Collector {
	c := &Collector{
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cslogstats_parses_total",
				Help: "Log parse runs by outcome",
			},
			[]string{"result"},
		),
		lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cslogstats_lines_total",
				Help: "Log lines seen by classification result",
			},
			[]string{"result"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cslogstats_events_total",
				Help: "Classified events by kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cslogstats_parse_duration_seconds",
				Help:    "Wall time of one parse run",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		stored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cslogstats_stored_logs",
				Help: "Logs currently in the store",
			},
		),
	}
	registry.MustRegister(c.parses, c.lines, c.events, c.duration, c.stored)

	// Pre-create label values so series exist before the first parse.
	for _, r := range []string{ResultParsed, ResultDuplicate, ResultError} {
		c.parses.WithLabelValues(r)
	}
	for _, k := range model.EventKinds() {
		c.events.WithLabelValues(k.String())
	}
	return c
}

// Observe records one successful parse.
func (c *Collector) Observe(st parser.Stats, elapsed time.Duration) {
	c.parses.WithLabelValues(ResultParsed).Inc()
	c.duration.Observe(elapsed.Seconds())

	classified := 0
	for kind, n := range st.Events {
		c.events.WithLabelValues(kind.String()).Add(float64(n))
		classified += n
	}
	c.lines.WithLabelValues("classified").Add(float64(classified))
	c.lines.WithLabelValues("unrecognized").Add(float64(st.Timestamped - classified))
	c.lines.WithLabelValues("untimestamped").Add(float64(st.Lines - st.Timestamped))
}

// ObserveResult counts a parse run that produced no new bundle.
func (c *Collector) ObserveResult(result string) {
	c.parses.WithLabelValues(result).Inc()
}

// SetStored sets the stored-logs gauge.
func (c *Collector) SetStored(n int) {
	c.stored.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
