package api

// This file implements the HTTP server lifecycle for fanoutd.
//
// SERVER LIFECYCLE:
//  1. NewServer or NewServerWithListener captures the Config
//  2. Start binds (unless a listener was handed over) and serves in a goroutine
//  3. Shutdown drains in-flight requests until the caller's context expires
//
// TIMEOUTS:
// ReadTimeout and IdleTimeout are fixed. WriteTimeout comes from
// Config.WriteTimeout and must cover the slowest dispatch the daemon accepts,
// otherwise the response of a long dispatch is dropped after the work is done.
// A zero WriteTimeout disables the limit.

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/concave-dev/fanout/internal/api/handlers"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the fanout HTTP API server. It owns the http.Server, the listener
// and the handler dependencies: the dispatch Service, the Prometheus gatherer
// served on /metrics and the dependency checkers reported by /health.
//
// A Server is started once. Start and Shutdown are not safe for concurrent use
// with each other.
type Server struct {
	service    Service
	gatherer   prometheus.Gatherer
	checkers   []handlers.Checker
	version    string
	startTime  time.Time
	httpServer *http.Server
	listener   net.Listener
	bindAddr   string
	bindPort   int

	// Applied to the http.Server; see Config.WriteTimeout
	writeTimeout time.Duration
}

// NewServer creates a new API server instance
func NewServer(config *Config) *Server {
	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		service:   config.Service,
		gatherer:  gatherer,
		checkers:  config.Checkers,
		version:   config.Version,
		startTime: time.Now(),
		bindAddr:  config.BindAddr,
		bindPort:  config.BindPort,

		writeTimeout: config.WriteTimeout,
	}
}

// NewServerWithListener creates a server that serves on an existing
// listener instead of binding BindAddr:BindPort itself.
func NewServerWithListener(config *Config, listener net.Listener) (*Server, error) {
	if listener == nil {
		return nil, fmt.Errorf("listener cannot be nil")
	}
	s := NewServer(config)
	s.listener = listener
	return s, nil
}

// Addr returns the address the server is listening on, once started.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.bindAddr, strconv.Itoa(s.bindPort))
}

// Handler builds the gin engine with middleware and routes.
func (s *Server) Handler() http.Handler {
	router := gin.New()

	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("DEBUG", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// Start binds the listener and serves in the background. Bind errors are
// returned synchronously; serve errors after startup are only logged.
func (s *Server) Start() error {
	if s.listener == nil {
		// Bind first so address errors are reported synchronously
		listener, err := net.Listen("tcp", s.Addr())
		if err != nil {
			return fmt.Errorf("failed to bind to %s: %w", s.Addr(), err)
		}
		s.listener = listener
	}
	logging.Info("Starting HTTP API server on %s (write timeout %v)", s.Addr(), s.writeTimeout)

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("HTTP API server started successfully")
	return nil
}

// Shutdown gracefully shuts down the HTTP server. In-flight dispatches keep
// running until they finish or ctx expires. Calling Shutdown before Start is a
// no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// getHandlerHealth is a health endpoint handler factory
func (s *Server) getHandlerHealth() gin.HandlerFunc {
	return handlers.HandleHealth(s.version, s.startTime, s.checkers...)
}

// getHandlerDispatchQuery is a query dispatch endpoint handler factory
func (s *Server) getHandlerDispatchQuery() gin.HandlerFunc {
	return handlers.HandleDispatchQuery(s.service)
}

// getHandlerDispatchJSON is a JSON dispatch endpoint handler factory
func (s *Server) getHandlerDispatchJSON() gin.HandlerFunc {
	return handlers.HandleDispatchJSON(s.service)
}

// getHandlerPools is a pool diagnostics endpoint handler factory
func (s *Server) getHandlerPools() gin.HandlerFunc {
	return handlers.HandlePools(s.service)
}

// getHandlerPoolsReload is a pool reload endpoint handler factory
func (s *Server) getHandlerPoolsReload() gin.HandlerFunc {
	return handlers.HandlePoolsReload(s.service)
}

// getHandlerMetrics serves the Prometheus registry
func (s *Server) getHandlerMetrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}
