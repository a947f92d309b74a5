// Package metrics records the band plan queries as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ftl/hamops/core/query"
)

// Collector bundles the Prometheus metrics of the query facade. A nil collector records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	Segments      prometheus.Gauge
}

// NewCollector registers the metrics against the given registerer, or against the global registry
// if it is nil. Metrics that are already registered are reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bandplan_queries_total",
		Help: "Total number of band plan queries, labeled by operation and outcome.",
	}, []string{"operation", "outcome"}), "bandplan_queries_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bandplan_query_duration_seconds",
		Help:    "Band plan query latency in seconds.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"operation"}), "bandplan_query_duration_seconds")
	if err != nil {
		return nil, err
	}

	segments, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bandplan_segments",
		Help: "Number of segments in the loaded band plan catalog.",
	}), "bandplan_segments")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		Queries:       queries,
		QueryDuration: durations,
		Segments:      segments,
	}, nil
}

// ObserveQuery counts the query and records its duration.
func (c *Collector) ObserveQuery(operation string, category query.Category, duration time.Duration) {
	if c == nil {
		return
	}
	outcome := "ok"
	if category != query.CategoryNone {
		outcome = category.String()
	}
	if c.Queries != nil {
		c.Queries.WithLabelValues(operation, outcome).Inc()
	}
	if c.QueryDuration != nil {
		c.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// SetCatalogSize sets the number of loaded segments.
func (c *Collector) SetCatalogSize(segments int) {
	if c == nil || c.Segments == nil {
		return
	}
	c.Segments.Set(float64(segments))
}

// WriteToFile writes all gathered metrics in the Prometheus text format to the given file, e.g. for
// the textfile collector of the node exporter.
func (c *Collector) WriteToFile(filename string) error {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return errors.Wrapf(prometheus.WriteToTextfile(filename, gatherer), "cannot write metrics to %s", filename)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
