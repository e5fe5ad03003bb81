package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 评分引擎指标
	AttemptsGraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_attempts_graded_total",
			Help: "Total number of graded attempts",
		},
		[]string{"problem_type", "correct"},
	)

	ExperienceAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_experience_awarded_total",
			Help: "Total experience points awarded",
		},
	)

	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_level_ups_total",
			Help: "Total number of level-up events",
		},
	)

	SandboxTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_sandbox_timeouts_total",
			Help: "Total number of sandboxed example executions that timed out or failed",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(AttemptsGraded)
	prometheus.MustRegister(ExperienceAwarded)
	prometheus.MustRegister(LevelUps)
	prometheus.MustRegister(SandboxTimeouts)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
