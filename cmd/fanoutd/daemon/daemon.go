// Package daemon wires the fanout components together and runs them until
// the process is signalled.
//
// Startup order: tracing, credential pools, codec, remote client, dispatch
// engine, orchestrator, then the HTTP API on a pre-bound listener. Shutdown
// runs the API drain first, then flushes pending spans and closes the pool
// backend last.
//
// WIRING:
//   - One remote.HTTPClient serves both the dispatch engine and the counter
//     reader, sharing its connection pool
//   - One codec encodes actions and decodes counter replies, sealed or not
//   - The pool router is shared by the provider and the orchestrator so pool
//     diagnostics report the same routes dispatch uses
//   - Metrics register on the default Prometheus registry served on /metrics
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/concave-dev/fanout/cmd/fanoutd/config"
	"github.com/concave-dev/fanout/cmd/fanoutd/utils"
	"github.com/concave-dev/fanout/internal/api"
	"github.com/concave-dev/fanout/internal/api/handlers"
	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/dispatch"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/measure"
	"github.com/concave-dev/fanout/internal/netutil"
	"github.com/concave-dev/fanout/internal/orchestrator"
	"github.com/concave-dev/fanout/internal/remote"
	"github.com/concave-dev/fanout/internal/selector"
	"github.com/concave-dev/fanout/internal/telemetry"
	"github.com/concave-dev/fanout/internal/version"
	"github.com/redis/go-redis/v9"
)

// minShutdownTimeout is the shortest drain period, used when the request
// budget is smaller.
const minShutdownTimeout = 30 * time.Second

// shutdownTimeout bounds how long in-flight requests get to drain. It is at
// least one request budget so a dispatch that is already running can finish
// and answer its caller.
func shutdownTimeout() time.Duration {
	return max(minShutdownTimeout, config.RequestBudget())
}

// components are the wired daemon parts the API server and shutdown need.
type components struct {
	service  *orchestrator.Service
	checkers []handlers.Checker
	closers  []func() error
}

// close runs the closers in reverse registration order
func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logging.Error("Error closing component: %v", err)
		}
	}
}

// buildProvider creates the configured pool backend wrapped in the pool
// cache. A Redis backend also contributes a health checker and a closer.
func buildProvider(router *credential.Router, comps *components) credential.Provider {
	var backend credential.Provider

	if config.Global.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Global.RedisAddr,
			Password: config.Global.RedisPassword,
			DB:       config.Global.RedisDB,
		})
		comps.checkers = append(comps.checkers, handlers.Checker{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		comps.closers = append(comps.closers, rdb.Close)

		backend = credential.NewRedisProvider(rdb, router, credential.WithKeyPrefix(config.Global.RedisPrefix))
		logging.Info("Loading credential pools from redis %s (prefix %s)", config.Global.RedisAddr, config.Global.RedisPrefix)
	} else {
		if _, err := os.Stat(config.Global.PoolDir); err != nil {
			logging.Warn("Pool directory %s is not readable yet: %v", config.Global.PoolDir, err)
		}
		backend = credential.NewFileProvider(config.Global.PoolDir, router)
		logging.Info("Loading credential pools from %s", config.Global.PoolDir)
	}

	if config.Global.PoolCacheTTL > 0 {
		logging.Info("Caching credential pools for %v", config.Global.PoolCacheTTL)
	}
	return credential.NewCachedProvider(backend, config.Global.PoolCacheTTL)
}

// buildCodec creates the wire codec, sealing payloads when key material is
// configured.
func buildCodec() (remote.Codec, error) {
	var sealer *remote.Sealer
	if config.Global.SealKey != "" {
		s, err := remote.NewSealer(config.Global.SealKey, config.Global.SealIV)
		if err != nil {
			return nil, fmt.Errorf("failed to create sealer: %w", err)
		}
		sealer = s
		logging.Info("Request payload sealing enabled")
	}
	return remote.NewProtoCodec(sealer), nil
}

// buildComponents wires everything behind the API from config.Global, which
// must already be validated.
func buildComponents() (*components, error) {
	comps := &components{}

	router, err := credential.NewRouter(config.Global.Routes, config.Global.DefaultPool, config.Global.GroupList)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool router: %w", err)
	}
	// Closers registered from here on are released on any later failure
	provider := buildProvider(router, comps)

	codec, err := buildCodec()
	if err != nil {
		comps.close()
		return nil, err
	}

	client, err := remote.NewHTTPClient(config.RemoteConfig())
	if err != nil {
		comps.close()
		return nil, fmt.Errorf("failed to create remote client: %w", err)
	}

	engine, err := dispatch.NewEngine(client, config.DispatchConfig(),
		dispatch.WithMetrics(dispatch.DefaultMetrics()))
	if err != nil {
		comps.close()
		return nil, fmt.Errorf("failed to create dispatch engine: %w", err)
	}

	// The selector owns the rotation cursors for the daemon's lifetime
	service, err := orchestrator.New(orchestrator.Config{
		Provider: provider,
		Router:   router,
		Selector: selector.New(config.Global.BatchSize),
		Reader:   measure.NewReader(client, codec),
		Engine:   engine,
		Codec:    codec,
	}, orchestrator.WithMetrics(orchestrator.DefaultMetrics()))
	if err != nil {
		comps.close()
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	comps.service = service

	logging.Info("Batch size %d, call timeout %v, max in-flight %d, rate %.1f/s",
		config.Global.BatchSize, config.Global.CallTimeout, config.Global.MaxInFlight, config.Global.Rate)
	return comps, nil
}

// buildAPIConfig converts daemon config to API config. The write timeout is
// the request budget so the slowest accepted dispatch still gets its response.
func buildAPIConfig(comps *components, port int) *api.Config {
	apiConfig := api.DefaultConfig()
	apiConfig.BindAddr = config.Global.APIAddr
	apiConfig.BindPort = port
	apiConfig.Version = version.FanoutdVersion
	apiConfig.Service = comps.service
	apiConfig.Checkers = comps.checkers
	apiConfig.WriteTimeout = config.RequestBudget()
	return apiConfig
}

// Run starts the daemon and blocks until SIGINT, SIGTERM or ctx is done.
//
// Tracing comes up first so component construction is traced. The API
// listener is pre-bound once the components exist. On shutdown in-flight
// requests get shutdownTimeout to finish, then spans are flushed and the
// components are closed.
func Run(ctx context.Context) error {
	logging.Info("Starting fanout daemon v%s", version.FanoutdVersion)

	shutdownTracing, err := telemetry.Setup(ctx, "fanoutd", version.FanoutdVersion, config.Global.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	if config.Global.OTelEndpoint != "" {
		logging.Info("Exporting traces to %s", config.Global.OTelEndpoint)
	}

	comps, err := buildComponents()
	if err != nil {
		_ = shutdownTracing(context.Background())
		return err
	}
	defer comps.close()

	listener, apiPort, err := utils.PreBindServiceListener("API",
		config.Global.IsExplicitlySet("api"), config.Global.APIAddr, config.Global.APIPort, netutil.DefaultMaxAttempts)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return err
	}
	config.Global.APIPort = apiPort

	server, err := api.NewServerWithListener(buildAPIConfig(comps, apiPort), listener)
	if err != nil {
		listener.Close()
		_ = shutdownTracing(context.Background())
		return fmt.Errorf("failed to create API server: %w", err)
	}
	if err := server.Start(); err != nil {
		_ = shutdownTracing(context.Background())
		return fmt.Errorf("failed to start API server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	logging.Success("fanout daemon listening on %s", server.Addr())
	logging.Info("Daemon running... Press Ctrl+C to shutdown")

	select {
	case sig := <-sigCh:
		logging.Info("Received signal: %v", sig)
	case <-ctx.Done():
		logging.Info("Context cancelled")
	}

	// Drain before closing pools; running dispatches still read them
	drain := shutdownTimeout()
	logging.Info("Initiating graceful shutdown (draining up to %v)...", drain)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error shutting down API server: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logging.Error("Error flushing traces: %v", err)
	}

	logging.Success("fanout daemon shutdown completed")
	return nil
}
