package handlers

// This file implements the health endpoint.
//
// STATUS VALUES:
//   - healthy: every checker passed, answered with 200
//   - degraded: at least one checker failed, answered with 503
//
// Checkers run sequentially on each request. A daemon with no checkers
// configured always reports healthy.

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the health check response
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Uptime    string        `json:"uptime"`
	Checks    []HealthCheck `json:"checks,omitempty"`
}

// HealthCheck is the result of one dependency check
type HealthCheck struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Checker tests one dependency, such as the Redis pool backend. Check is
// called with a context bounded by checkTimeout.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// checkTimeout bounds each dependency check
const checkTimeout = 2 * time.Second

// HandleHealth returns the health status of the API server. Any failing
// check marks the server degraded and answers 503.
func HandleHealth(version string, startTime time.Time, checkers ...Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime).String(),
		}

		for _, checker := range checkers {
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			err := checker.Check(ctx)
			cancel()

			check := HealthCheck{
				Name:      checker.Name,
				Status:    "healthy",
				Message:   "ok",
				Timestamp: time.Now(),
			}
			if err != nil {
				check.Status = "unhealthy"
				check.Message = err.Error()
				response.Status = "degraded"
			}
			response.Checks = append(response.Checks, check)
		}

		code := http.StatusOK
		if response.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, response)
	}
}
