// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. HTTPMetrics
// owns its collectors and registers them on a caller-supplied registerer, so
// tests can use a private registry while the server uses the default one.
//
// Labels are bounded: method, the matched Gin route (never the raw URL, which
// would carry contact ids), and the numeric status code.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute is the path label for requests no route matched.
const unmatchedRoute = "unmatched"

// HTTPMetrics holds the HTTP collectors.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Inflight prometheus.Gauge
	Size     *prometheus.HistogramVec
}

// NewHTTPMetrics creates the collectors and registers them on reg. A nil reg
// means prometheus.DefaultRegisterer. Registering twice on the same registry
// reuses the collectors already there.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		Inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		}),
		Size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes.",
			Buckets: prometheus.ExponentialBuckets(128, 4, 8), // 128B..2MiB
		}, []string{"method", "path"}),
	}
	m.Requests = registerOrReuse(reg, m.Requests).(*prometheus.CounterVec)
	m.Latency = registerOrReuse(reg, m.Latency).(*prometheus.HistogramVec)
	m.Inflight = registerOrReuse(reg, m.Inflight).(prometheus.Gauge)
	m.Size = registerOrReuse(reg, m.Size).(*prometheus.HistogramVec)
	return m
}

func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// Handler returns the instrumenting middleware.
//
//	m := middleware.NewHTTPMetrics(nil)
//	r.Use(m.Handler())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.Inflight.Inc()
		defer m.Inflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		method := c.Request.Method

		m.Requests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.Latency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			m.Size.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
