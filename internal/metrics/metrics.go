// Package metrics collects and exposes Prometheus metrics for dinotail.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons used with IncDropped.
const (
	ReasonMalformed = "malformed"
)

// Collector holds all dinotail Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	// Feed metrics.
	RecordsAccepted prometheus.Counter
	RecordsDropped  *prometheus.CounterVec
	FeedConnected   prometheus.Gauge
	FeedReconnects  prometheus.Counter

	// Buffer metrics.
	BufferLength   prometheus.Gauge
	BufferCapacity prometheus.Gauge
	AutoResumes    prometheus.Counter

	// Status poller metrics.
	PollTotal    *prometheus.CounterVec
	PollFailures prometheus.Gauge

	BuildInfo *prometheus.GaugeVec
}

// New creates and registers all dinotail metrics.
func New() *Collector {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Collector{
		registry: reg,

		RecordsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dinotail_records_accepted_total",
			Help: "Query records pushed into the ring buffer.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dinotail_records_dropped_total",
			Help: "Event payloads rejected before reaching the ring buffer.",
		}, []string{"reason"}),
		FeedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dinotail_feed_connected",
			Help: "1 while the query log stream is open.",
		}),
		FeedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dinotail_feed_reconnects_total",
			Help: "Times the query log stream ended and was retried.",
		}),

		BufferLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dinotail_buffer_length",
			Help: "Records currently retained in the ring buffer.",
		}),
		BufferCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dinotail_buffer_capacity",
			Help: "Configured ring buffer capacity.",
		}),
		AutoResumes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dinotail_view_auto_resumes_total",
			Help: "Paused views returned to live because the writer wrapped onto the anchor.",
		}),

		PollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dinotail_status_polls_total",
			Help: "Proxy status polls by result.",
		}, []string{"result"}),
		PollFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dinotail_status_consecutive_failures",
			Help: "Consecutive failed proxy status polls.",
		}),

		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dinotail_info",
			Help: "Build information about dinotail.",
		}, []string{"version", "go_version"}),
	}

	reg.MustRegister(
		c.RecordsAccepted,
		c.RecordsDropped,
		c.FeedConnected,
		c.FeedReconnects,
		c.BufferLength,
		c.BufferCapacity,
		c.AutoResumes,
		c.PollTotal,
		c.PollFailures,
		c.BuildInfo,
	)

	return c
}

// Handler returns an http.Handler that serves the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SetBuildInfo sets the constant build info gauge.
func (c *Collector) SetBuildInfo(version, goVersion string) {
	c.BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// IncAccepted counts a record pushed into the buffer.
func (c *Collector) IncAccepted() {
	if c == nil {
		return
	}
	c.RecordsAccepted.Inc()
}

// IncDropped counts a rejected payload.
func (c *Collector) IncDropped(reason string) {
	if c == nil {
		return
	}
	c.RecordsDropped.WithLabelValues(reason).Inc()
}

// SetFeedConnected flips the connection gauge.
func (c *Collector) SetFeedConnected(connected bool) {
	if c == nil {
		return
	}
	v := 0.0
	if connected {
		v = 1
	}
	c.FeedConnected.Set(v)
}

// IncReconnect counts a stream retry.
func (c *Collector) IncReconnect() {
	if c == nil {
		return
	}
	c.FeedReconnects.Inc()
}

// SetBuffer records the ring's current fill and capacity.
func (c *Collector) SetBuffer(length, capacity int) {
	if c == nil {
		return
	}
	c.BufferLength.Set(float64(length))
	c.BufferCapacity.Set(float64(capacity))
}

// AddAutoResumes adds n automatic pause releases.
func (c *Collector) AddAutoResumes(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.AutoResumes.Add(float64(n))
}

// ObservePoll records one status poll outcome and the failure streak.
func (c *Collector) ObservePoll(ok bool, consecutiveFailures int) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	c.PollTotal.WithLabelValues(result).Inc()
	c.PollFailures.Set(float64(consecutiveFailures))
}
