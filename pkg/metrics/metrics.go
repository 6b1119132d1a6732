package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec
)

// Register initializes the HTTP metrics against the given registerer and
// returns the handler to mount on /metrics. Safe to call once per process.
func Register(reg prometheus.Registerer) (gin.HandlerFunc, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var regErr error
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "In-flight HTTP requests by method and route",
		}, []string{"method", "path"})

		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, httpInflight} {
			if err := reg.Register(c); err != nil {
				regErr = err
				return
			}
		}
	})
	if regErr != nil {
		return nil, regErr
	}

	return gin.WrapH(promhttp.Handler()), nil
}

// Middleware records request count, latency and in-flight gauge per route.
// Uses the route template (c.FullPath) to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		if httpInflight != nil {
			httpInflight.WithLabelValues(method, path).Inc()
			defer httpInflight.WithLabelValues(method, path).Dec()
		}

		start := time.Now()
		c.Next()

		if httpRequestsTotal != nil {
			httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		}
		if httpRequestDuration != nil {
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		}
	}
}
