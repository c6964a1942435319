package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	decodeFailures prometheus.Counter
	brightness     prometheus.Histogram
}

// NewMetrics creates and registers all collectors, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meditime_http_requests_total",
				Help: "Total number of HTTP requests",
			}, []string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meditime_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"route"},
		),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meditime_decode_failures_total",
			Help: "Total number of uploads that could not be decoded as an image",
		}),
		brightness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meditime_image_mean_brightness",
			Help:    "Mean grayscale brightness of successfully measured images",
			Buckets: prometheus.LinearBuckets(0, 32, 8),
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.decodeFailures,
		m.brightness,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// middleware records request counts and latency per route template.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) decodeFailed() {
	if m != nil {
		m.decodeFailures.Inc()
	}
}

func (m *Metrics) imageMeasured(brightness float64) {
	if m != nil {
		m.brightness.Observe(brightness)
	}
}
