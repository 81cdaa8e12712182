// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Métriques Prometheus pour le service Progress
var (
	GameplayEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_gameplay_events_total",
			Help: "Total number of gameplay events received",
		},
		[]string{"event", "game"},
	)

	RemoteWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_remote_writes_total",
			Help: "Remote reconciliation writes by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	DailyTaskSetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_daily_task_sets_total",
			Help: "Total number of daily task sets generated",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// Résultats possibles d'une écriture distante
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Metrics structure pour gérer les métriques
type Metrics struct {
	registry *prometheus.Registry
}

// NewMetrics crée une nouvelle instance de metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	// Enregistrer les métriques
	registry.MustRegister(GameplayEventsTotal)
	registry.MustRegister(RemoteWritesTotal)
	registry.MustRegister(DailyTaskSetsTotal)
	registry.MustRegister(HTTPRequestsTotal)
	registry.MustRegister(HTTPRequestDuration)

	logrus.Info("Prometheus metrics initialized")

	return &Metrics{
		registry: registry,
	}
}

// Handler retourne le handler Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware Prometheus pour instrumenter les requêtes HTTP
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Traiter la requête
		c.Next()

		// Mesurer et enregistrer les métriques
		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			http.StatusText(statusCode),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
