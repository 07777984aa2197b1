package api

// This file implements the gin middleware chain installed by Server.Handler.
//
// MIDDLEWARE ORDER:
//   - loggingMiddleware: one access log line per request via the logging package
//   - corsMiddleware: permissive CORS headers, short-circuits preflight requests
//   - gin.Recovery: converts handler panics into 500 responses

import (
	"time"

	"github.com/concave-dev/fanout/internal/logging"
	"github.com/gin-gonic/gin"
)

// loggingMiddleware logs each request in combined log format. Query strings
// are left out since they carry target identifiers.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		logging.Info("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Request.URL.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
		return ""
	})
}

// corsMiddleware provides CORS headers. OPTIONS requests are answered with
// 204 and never reach a handler.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type")
		c.Header("Access-Control-Max-Age", "300")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
