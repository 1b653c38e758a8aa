// Package prometheus records service metrics with the Prometheus client and
// reads process memory with gopsutil.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.Metrics = (*Recorder)(nil)

// Metric names exposed on /metrics.
const (
	RequestsTotal    = "chatbot_requests_total"
	RequestLatency   = "chatbot_request_latency_seconds"
	ModelLoadTime    = "chatbot_model_load_time_seconds"
	MemoryUsageBytes = "chatbot_memory_usage_bytes"
)

// modelLoadBuckets cover loads from a warm cache to a cold multi-GB pull.
var modelLoadBuckets = []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// Recorder holds the service metrics on its own registry.
type Recorder struct {
	registry  *prometheus.Registry
	requests  prometheus.Counter
	latency   prometheus.Histogram
	modelLoad prometheus.Histogram
	memory    prometheus.Gauge
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	processCollectors bool
}

// WithProcessCollectors also exports the standard Go runtime and process
// metrics on the same registry.
func WithProcessCollectors() Option {
	return func(o *options) {
		o.processCollectors = true
	}
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder(opts ...Option) *Recorder {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	if o.processCollectors {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		requests: factory.NewCounter(prometheus.CounterOpts{
			Name: RequestsTotal,
			Help: "Total number of chat requests.",
		}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    RequestLatency,
			Help:    "Latency of successful chat requests.",
			Buckets: prometheus.DefBuckets,
		}),
		modelLoad: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    ModelLoadTime,
			Help:    "Time taken for the language model to become ready.",
			Buckets: modelLoadBuckets,
		}),
		memory: factory.NewGauge(prometheus.GaugeOpts{
			Name: MemoryUsageBytes,
			Help: "Resident memory of the server process.",
		}),
	}
}

// IncRequests counts one chat request.
func (r *Recorder) IncRequests() {
	r.requests.Inc()
}

// ObserveLatency records the duration of a successful chat request.
func (r *Recorder) ObserveLatency(d time.Duration) {
	r.latency.Observe(d.Seconds())
}

// ObserveModelLoad records how long the model took to become ready.
func (r *Recorder) ObserveModelLoad(d time.Duration) {
	r.modelLoad.Observe(d.Seconds())
}

// SetMemoryUsage records the resident memory of the process.
func (r *Recorder) SetMemoryUsage(bytes uint64) {
	r.memory.Set(float64(bytes))
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
