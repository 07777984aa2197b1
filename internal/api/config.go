// Package api provides the HTTP front end of the fanout daemon.
//
// The server exposes dispatch requests, pool diagnostics, health and
// Prometheus metrics over a small REST interface consumed by fanoutctl and by
// any HTTP client. Request handling is thin: input is validated and bound
// here, then handed to the orchestrator.
package api

import (
	"fmt"
	"time"

	"github.com/concave-dev/fanout/internal/api/handlers"
	"github.com/concave-dev/fanout/internal/config"
	"github.com/concave-dev/fanout/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultWriteTimeout bounds how long a response may take to be written,
// measured from the end of the request headers. A dispatch holds its
// response until every call in the batch and both counter reads are done,
// so daemons derive the real value from their call timeout and batch
// settings instead of relying on this default.
const DefaultWriteTimeout = 2 * time.Minute

// Service is what the API needs from the orchestrator.
type Service interface {
	handlers.Dispatcher
	handlers.PoolReporter
}

// Config holds the HTTP server settings and its collaborators.
type Config struct {
	BindAddr string              // HTTP server bind address (e.g., "127.0.0.1")
	BindPort int                 // HTTP server bind port
	Version  string              // Reported by the health endpoint
	Service  Service             // Executes dispatches and reports pools
	Gatherer prometheus.Gatherer // Source for /metrics; nil uses the default registry
	Checkers []handlers.Checker  // Dependency checks run by /health

	// WriteTimeout must exceed the slowest dispatch request, otherwise the
	// batch still runs but the caller sees a dropped connection. Zero
	// disables the deadline.
	WriteTimeout time.Duration
}

// DefaultConfig returns a config bound to loopback on the default port. The
// service must be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		BindAddr:     config.DefaultBindAddr,
		BindPort:     config.DefaultAPIPort,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Validate checks the bind address and that a service is wired in.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidatePortRange(c.BindPort); err != nil {
		return fmt.Errorf("bind port validation failed: %w", err)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("write timeout must not be negative, got %v", c.WriteTimeout)
	}
	if c.Service == nil {
		return fmt.Errorf("service cannot be nil")
	}
	return nil
}
