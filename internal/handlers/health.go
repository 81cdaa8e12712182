package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"progress/internal/config"
	"progress/internal/monitoring"
)

var startTime = time.Now()

// HealthChecker interface pour vérifier la santé des composants
type HealthChecker interface {
	HealthCheck() error
}

// HealthHandler gère les endpoints de santé et monitoring
type HealthHandler struct {
	config  *config.Config
	db      HealthChecker
	metrics *monitoring.Metrics
}

// NewHealthHandler crée un nouveau handler de santé
func NewHealthHandler(config *config.Config, db HealthChecker, metrics *monitoring.Metrics) *HealthHandler {
	return &HealthHandler{
		config:  config,
		db:      db,
		metrics: metrics,
	}
}

// HealthCheck endpoint de santé du service Progress
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	checks := make(map[string]interface{})
	status := "healthy"

	// Vérification de la base de données
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			status = "unhealthy"
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "unknown",
			"error":  "database connection not available",
		}
		status = "degraded"
	}

	// Informations système
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"service":   "progress",
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
		"checks":    checks,
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": m.Alloc / 1024 / 1024,
		},
	})
}

// Readiness endpoint de disponibilité
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready": false,
				"error": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// Liveness endpoint de vivacité
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"alive":  true,
		"uptime": time.Since(startTime).String(),
	})
}

// Ping endpoint minimal
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Metrics endpoint Prometheus
func (h *HealthHandler) Metrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
