package handlers

// This file implements the pool diagnostics endpoints. Responses use the
// standard {"status":"success","data":...} envelope; listing responses also
// carry a count.

import (
	"context"
	"net/http"

	"github.com/concave-dev/fanout/internal/orchestrator"
	"github.com/gin-gonic/gin"
)

// PoolReporter exposes pool diagnostics.
type PoolReporter interface {
	PoolInfo(ctx context.Context) []orchestrator.PoolStatus
	ReloadPools() bool
}

// HandlePools returns pool sizes and rotation cursors for every known group.
func HandlePools(r PoolReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := r.PoolInfo(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   info,
			"count":  len(info),
		})
	}
}

// HandlePoolsReload drops cached pools.
func HandlePoolsReload(r PoolReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"purged": r.ReloadPools()},
		})
	}
}
