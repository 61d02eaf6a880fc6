package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matha-service/internal/domain"
)

// Metrics holds the service collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	quizzesCompleted *prometheus.CounterVec
	otpIssued        prometheus.Counter
	activeSockets    prometheus.Gauge
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		quizzesCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matha_quizzes_completed_total",
				Help: "Total number of completed quiz sessions",
			},
			[]string{"category", "difficulty"},
		),
		otpIssued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "matha_otp_issued_total",
				Help: "Total number of login codes issued",
			},
		),
		activeSockets: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "matha_quiz_sockets_current",
				Help: "Current number of open quiz websocket connections",
			},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matha_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matha_http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) QuizCompleted(categoryID string, difficulty domain.Difficulty) {
	m.quizzesCompleted.WithLabelValues(categoryID, string(difficulty)).Inc()
}

func (m *Metrics) OTPIssued() {
	m.otpIssued.Inc()
}

// SocketOpened and SocketClosed track live websocket connections.
func (m *Metrics) SocketOpened() { m.activeSockets.Inc() }
func (m *Metrics) SocketClosed() { m.activeSockets.Dec() }

// Middleware counts requests by matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
