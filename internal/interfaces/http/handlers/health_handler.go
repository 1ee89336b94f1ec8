package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/aewis/internal/application/dto"
	"github.com/turtacn/aewis/pkg/constants"
	"github.com/turtacn/aewis/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks map[string]Pinger
	log    logger.Logger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil when Redis is disabled.
func NewHealthHandler(db Pinger, redis Pinger, log logger.Logger) *HealthHandler {
	checks := map[string]Pinger{"database": db}
	if redis != nil {
		checks["redis"] = redis
	}
	return &HealthHandler{checks: checks, log: log}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Reports that the process is serving.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Service: constants.ServiceName})
}

// LivenessCheck godoc
// @Summary      Liveness Check
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	h.HealthCheck(c)
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks the database and, when enabled, Redis.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.ReadinessResponse
// @Failure      503  {object}  dto.ReadinessResponse
// @Router       /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	resp := dto.NewReadinessResponse(h.performChecks(ctx))
	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
		h.log.Warn(ctx, "Readiness check failed", logger.Any("checks", resp.Checks))
	}
	c.JSON(status, resp)
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	var wg sync.WaitGroup
	checks := make(map[string]string, len(h.checks))
	mu := &sync.Mutex{}

	wg.Add(len(h.checks))
	for name, p := range h.checks {
		go func(name string, p Pinger) {
			defer wg.Done()
			status := "ok"
			if err := p.Ping(ctx); err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()
	return checks
}

//Personal.AI order the ending
