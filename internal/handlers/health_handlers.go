package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"hauntedadmin/internal/caching"
	"hauntedadmin/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        *pgxpool.Pool
	cacheSvc  caching.CacheService
	avatarSvc services.AvatarService
	jobNames  func() []string
}

// NewHealthHandlers creates a new health handlers instance. jobNames may be
// nil when no scheduler is running.
func NewHealthHandlers(db *pgxpool.Pool, cacheSvc caching.CacheService, avatarSvc services.AvatarService, jobNames func() []string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cacheSvc:  cacheSvc,
		avatarSvc: avatarSvc,
		jobNames:  jobNames,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck performs comprehensive health checks
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if err := h.checkDatabase(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.cacheSvc.Ping(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	if err := h.avatarSvc.Ping(ctx); err != nil {
		health.Services["storage"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["storage"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	_, err := h.db.Exec(ctx, "SELECT 1")
	return err
}

// ReadinessCheck determines if the application is ready to serve traffic.
// The database and Redis are hard dependencies; object storage is not.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.checkDatabase(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Database unavailable",
		})
	}
	if err := h.cacheSvc.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Redis unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running (basic liveness probe)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck provides detailed health information including the
// registered background jobs and connection pool stats.
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]interface{})
	overallStatus := "healthy"

	dbCheck := map[string]interface{}{"status": "healthy"}
	start := time.Now()
	if err := h.checkDatabase(ctx); err != nil {
		dbCheck["status"] = "unhealthy"
		dbCheck["message"] = err.Error()
		overallStatus = "degraded"
	}
	dbCheck["latency_ms"] = time.Since(start).Milliseconds()
	checks["database"] = dbCheck

	redisCheck := map[string]interface{}{"status": "healthy"}
	if err := h.cacheSvc.Ping(ctx); err != nil {
		redisCheck["status"] = "unhealthy"
		redisCheck["message"] = err.Error()
		overallStatus = "degraded"
	}
	checks["redis"] = redisCheck

	storageCheck := map[string]interface{}{"status": "healthy"}
	if err := h.avatarSvc.Ping(ctx); err != nil {
		storageCheck["status"] = "unhealthy"
		storageCheck["message"] = err.Error()
		overallStatus = "degraded"
	}
	checks["storage"] = storageCheck

	detailedHealth := map[string]interface{}{
		"overall_status": overallStatus,
		"checks":         checks,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        "1.0.0",
		"goroutines":     runtime.NumGoroutine(),
		"database_pool": map[string]interface{}{
			"max_conns": h.db.Config().MaxConns,
		},
	}
	if h.jobNames != nil {
		detailedHealth["background_jobs"] = h.jobNames()
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, detailedHealth)
}
