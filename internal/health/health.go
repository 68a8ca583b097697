package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-task-reminder/internal/infra/planfix"
)

// Status represents the health status of the process or a dependency.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the health check result for a single dependency.
type CheckResult struct {
	Status    Status    `json:"status"`
	LatencyMs int64     `json:"latency_ms,omitempty"`
	Error     string    `json:"error,omitempty"`
	LastOK    time.Time `json:"last_ok,omitzero"`
}

// HealthStatus represents the overall health status of the process.
type HealthStatus struct {
	Status  Status                 `json:"status"`
	Version string                 `json:"version,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// FetchReporter exposes the outcome of the last task source fetch.
type FetchReporter interface {
	Status() planfix.FetchStatus
}

// Checker reports on the checkpoint store and the task source.
type Checker struct {
	redisClient *redis.Client
	source      FetchReporter
	version     string
}

// NewChecker creates a health checker. Either dependency may be nil.
func NewChecker(redisClient *redis.Client, source FetchReporter, version string) *Checker {
	return &Checker{
		redisClient: redisClient,
		source:      source,
		version:     version,
	}
}

// Check runs all checks. A failing task source only degrades the process,
// since cycles treat it as no change.
func (c *Checker) Check(ctx context.Context) *HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:  StatusHealthy,
		Version: c.version,
		Checks:  make(map[string]CheckResult),
	}

	if c.redisClient != nil {
		start := time.Now()
		if err := c.redisClient.Ping(checkCtx).Err(); err != nil {
			status.Status = StatusUnhealthy
			status.Checks["redis"] = CheckResult{
				Status: StatusUnhealthy,
				Error:  err.Error(),
			}
		} else {
			status.Checks["redis"] = CheckResult{
				Status:    StatusHealthy,
				LatencyMs: time.Since(start).Milliseconds(),
			}
		}
	}

	if c.source != nil {
		fetch := c.source.Status()
		result := CheckResult{Status: StatusHealthy, LastOK: fetch.LastSuccess}
		if fetch.LastError != "" {
			result.Status = StatusDegraded
			result.Error = fetch.LastError
			if status.Status == StatusHealthy {
				status.Status = StatusDegraded
			}
		}
		status.Checks["task_source"] = result
	}

	return status
}

// LiveHandler returns a Gin handler for the liveness endpoint.
func (c *Checker) LiveHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReadyHandler returns a Gin handler for the readiness endpoint.
func (c *Checker) ReadyHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := c.Check(ctx.Request.Context())

		httpStatus := http.StatusOK
		if status.Status == StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}

		ctx.JSON(httpStatus, status)
	}
}
