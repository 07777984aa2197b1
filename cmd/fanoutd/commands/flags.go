// Package commands contains Cobra CLI command definitions for fanoutd.
package commands

import (
	"github.com/concave-dev/fanout/cmd/fanoutd/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SetupFlags configures all command line flags for the daemon. Every flag
// writes straight into config.Global; FANOUT_* environment overrides are
// applied afterwards for the flags the user did not pass.
//
// FLAG GROUPS:
//   - API and logging: --api, --log-level, --log-file
//   - Dispatch: --batch-size, --call-timeout, --max-in-flight, --rate, --burst
//   - Credential pools: --pool-dir, --pool-routes, --default-pool, --groups, --redis-*
//   - Remote service: --endpoint, --group-endpoints, paths, --header, sealing, TLS
//   - Observability: --otel-endpoint
func SetupFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// API and logging flags
	flags.StringVar(&config.Global.APIAddr, "api", config.DefaultAPI,
		"Address and port for HTTP API server (e.g., "+config.DefaultAPI+")\n"+
			"If the default port is busy the next free port is used")
	flags.StringVar(&config.Global.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	flags.StringVar(&config.Global.LogFile, "log-file", "",
		"Write logs to this file instead of stdout/stderr")

	// Dispatch flags
	flags.IntVar(&config.Global.BatchSize, "batch-size", config.DefaultBatchSize,
		"Maximum number of credentials used per dispatch")
	flags.DurationVar(&config.Global.CallTimeout, "call-timeout", config.DefaultCallTimeout,
		"Deadline for each individual remote call")
	flags.IntVar(&config.Global.MaxInFlight, "max-in-flight", 0,
		"Maximum concurrent calls per dispatch (0 = one goroutine per credential)")
	flags.Float64Var(&config.Global.Rate, "rate", 0,
		"Maximum remote calls started per second across all dispatches (0 = unpaced)")
	flags.IntVar(&config.Global.Burst, "burst", config.DefaultBurst,
		"Calls allowed to start at once when --rate is set")

	// Credential pool flags
	flags.StringVar(&config.Global.PoolDir, "pool-dir", config.DefaultPoolDir,
		"Directory holding <pool>.json and <pool>_measure.json credential files")
	flags.StringVar(&config.Global.PoolRoutes, "pool-routes", config.DefaultPoolRoutes,
		"Group to pool routing table, POOL=GROUP,GROUP;POOL=GROUP")
	flags.StringVar(&config.Global.DefaultPool, "default-pool", config.DefaultPool,
		"Pool used by groups without a route")
	flags.StringVar(&config.Global.Groups, "groups", config.DefaultGroups,
		"Comma-separated groups reported by the pools endpoint")
	flags.StringVar(&config.Global.RedisAddr, "redis-addr", "",
		"Read credential pools from Redis at host:port instead of --pool-dir\n"+
			"The password is read from FANOUT_REDIS_PASSWORD")
	flags.IntVar(&config.Global.RedisDB, "redis-db", 0,
		"Redis logical database")
	flags.StringVar(&config.Global.RedisPrefix, "redis-prefix", config.DefaultRedisPrefix,
		"Redis key prefix; pools live at <prefix>:<pool>:<purpose>")
	flags.DurationVar(&config.Global.PoolCacheTTL, "pool-cache-ttl", config.DefaultPoolCacheTTL,
		"How long loaded pools are cached (0 disables caching)")

	// Remote service flags
	flags.StringVar(&config.Global.Endpoint, "endpoint", "",
		"Default base URL of the remote service (required)")
	flags.StringVar(&config.Global.GroupEndpoints, "group-endpoints", "",
		"Per-group base URLs, GROUP=URL;GROUP=URL")
	flags.StringVar(&config.Global.ActionPath, "action-path", config.DefaultActionPath,
		"Path of the remote action call")
	flags.StringVar(&config.Global.CounterPath, "counter-path", config.DefaultCounterPath,
		"Path of the remote counter read")
	flags.StringArrayVar(&config.Global.Headers, "header", nil,
		"Static header sent with every remote call, 'Name: value' (repeatable)")
	flags.StringVar(&config.Global.SealKey, "seal-key", "",
		"Hex AES key used to seal request payloads (prefer FANOUT_SEAL_KEY)")
	flags.StringVar(&config.Global.SealIV, "seal-iv", "",
		"Hex AES-CBC IV used to seal request payloads (prefer FANOUT_SEAL_IV)")
	flags.BoolVar(&config.Global.InsecureSkipVerify, "insecure-skip-verify", false,
		"Disable TLS certificate verification for remote calls")

	// Observability flags
	flags.StringVar(&config.Global.OTelEndpoint, "otel-endpoint", "",
		"OTLP/HTTP traces endpoint URL (e.g., http://127.0.0.1:4318); empty disables tracing")
}

// CheckExplicitFlags records which flags were explicitly set by the user.
// Must run before config.InitializeConfig so explicit flags win over the
// environment.
func CheckExplicitFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		config.Global.SetExplicitlySet(f.Name, f.Changed)
	})
}
