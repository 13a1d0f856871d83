// Package metrics exposes Prometheus instrumentation for HTTP traffic, the live quiz
// and the database pool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ptpcell/placement-backend/internal/model"
)

const namespace = "placement"

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	Answers         *prometheus.CounterVec
	AnswersRejected *prometheus.CounterVec
	Polls           *prometheus.CounterVec
	Activations     prometheus.Counter
	Expirations     prometheus.Counter
}

// New creates a Metrics instance with Go runtime and process collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		RequestCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		Answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "answers_total",
			Help:      "Recorded event answers by correctness",
		}, []string{"correct"}),
		AnswersRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "answers_rejected_total",
			Help:      "Rejected event answers by reason",
		}, []string{"reason"}),
		Polls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "polls_total",
			Help:      "Student polls by outcome",
		}, []string{"status"}),
		Activations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "activations_total",
			Help:      "Questions activated by admins",
		}),
		Expirations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "activations_expired_total",
			Help:      "Activations cleared because their window elapsed",
		}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware records count, latency and in-flight requests per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.RequestsInFlight.Inc()
		start := time.Now()

		c.Next()

		m.RequestsInFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RegisterPool exports pgxpool statistics, sampled at scrape time.
func (m *Metrics) RegisterPool(pool *pgxpool.Pool) {
	f := promauto.With(m.reg)
	stat := func(name, help string, fn func(*pgxpool.Stat) float64) {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return fn(pool.Stat()) })
	}
	stat("total_conns", "Connections currently open", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) })
	stat("acquired_conns", "Connections currently in use", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) })
	stat("idle_conns", "Connections currently idle", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) })
	stat("max_conns", "Configured pool size", func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) })
}

// AnswerRecorded counts an accepted answer.
func (m *Metrics) AnswerRecorded(correct bool) {
	m.Answers.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

// AnswerRejected counts a rejected answer.
func (m *Metrics) AnswerRejected(reason string) {
	m.AnswersRejected.WithLabelValues(reason).Inc()
}

// PollServed counts a poll by outcome.
func (m *Metrics) PollServed(status model.PollStatus) {
	m.Polls.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) QuestionActivated() { m.Activations.Inc() }

func (m *Metrics) ActivationExpired() { m.Expirations.Inc() }
