package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles Prometheus metrics for the propagation service. All
// recording methods tolerate a nil receiver, so instrumentation can be
// omitted entirely in tests.
type Collector struct {
	gatherer prometheus.Gatherer

	Propagations *prometheus.CounterVec
	Durations    *prometheus.HistogramVec
	BatchSize    prometheus.Histogram
	LiveHandles  prometheus.Gauge
}

// NewCollector registers the service metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Registration is idempotent: an already-registered collector of the same
// shape is reused rather than treated as an error.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	propagations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "propagations_total",
		Help: "Total propagation requests, labeled by operation and result.",
	}, []string{"op", "result"})
	propagations, err := registerCounterVec(reg, propagations, "propagations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propagation_duration_seconds",
		Help:    "Propagation request latency in seconds.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	}, []string{"op"})
	durations, err = registerHistogramVec(reg, durations, "propagation_duration_seconds")
	if err != nil {
		return nil, err
	}

	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "propagation_batch_size",
		Help:    "Number of time samples per batch request.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	batchSize, err = registerHistogram(reg, batchSize, "propagation_batch_size")
	if err != nil {
		return nil, err
	}

	liveHandles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "live_satellite_handles",
		Help: "Number of satellite handles currently held by the registry.",
	}), "live_satellite_handles")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:     gatherer,
		Propagations: propagations,
		Durations:    durations,
		BatchSize:    batchSize,
		LiveHandles:  liveHandles,
	}, nil
}

// RecordRequest records one service operation with its result label and
// wall-clock duration.
func (c *Collector) RecordRequest(op, result string, d time.Duration) {
	if c == nil {
		return
	}
	if c.Propagations != nil {
		c.Propagations.WithLabelValues(op, result).Inc()
	}
	if c.Durations != nil {
		c.Durations.WithLabelValues(op).Observe(d.Seconds())
	}
}

// RecordBatchSize records the sample count of one batch request.
func (c *Collector) RecordBatchSize(n int) {
	if c == nil || c.BatchSize == nil {
		return
	}
	c.BatchSize.Observe(float64(n))
}

// SetLiveHandles drives the live-handle gauge from the registry's mutators.
func (c *Collector) SetLiveHandles(n int) {
	if c == nil || c.LiveHandles == nil {
		return
	}
	c.LiveHandles.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler for embedders; the
// service itself never opens a listener.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return gauge, nil
}
