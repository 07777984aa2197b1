package api

// This file implements the route table of the fanout HTTP API.
//
// ROUTES:
//   - GET  /metrics: Prometheus exposition, outside the versioned prefix
//   - GET  /api/v1/health: liveness plus dependency checks
//   - GET  /api/v1/dispatch: dispatch from query parameters
//   - POST /api/v1/dispatch: dispatch from a JSON body
//   - GET  /api/v1/pools: pool sizes and rotation cursors per group
//   - POST /api/v1/pools/reload: drop cached pools so the next request reloads
//
// Every handler is built by a getHandlerX factory on Server so the handlers
// package stays free of server state.

import (
	"github.com/gin-gonic/gin"
)

// setupRoutes registers every endpoint on router. Middleware is installed
// by Handler before this runs, so it applies to all routes.
func (s *Server) setupRoutes(router *gin.Engine) {
	// Prometheus scrapes the conventional path, outside the API prefix
	router.GET("/metrics", s.getHandlerMetrics())

	v1 := router.Group("/api/v1")

	v1.GET("/health", s.getHandlerHealth())

	v1.GET("/dispatch", s.getHandlerDispatchQuery())
	v1.POST("/dispatch", s.getHandlerDispatchJSON())

	pools := v1.Group("/pools")
	{
		pools.GET("", s.getHandlerPools())
		pools.POST("/reload", s.getHandlerPoolsReload())
	}
}
