// Package config provides default configuration values shared across fanout
// components (daemon, HTTP API, dispatch engine, credential providers) so the
// daemon flags, component DefaultConfig functions and the CLI agree.
package config

import "time"

const (
	// DefaultBindAddr is the default bind address for the HTTP API.
	// Loopback keeps a fresh daemon private until explicitly exposed.
	DefaultBindAddr = "127.0.0.1"

	// DefaultAPIPort is the default HTTP API port
	DefaultAPIPort = 5001

	// DefaultLogLevel is the default log level for all components
	DefaultLogLevel = "INFO"

	// DefaultBatchSize bounds how many credentials are used per dispatch
	DefaultBatchSize = 100

	// DefaultCallTimeout is the deadline applied to every individual remote call
	DefaultCallTimeout = 10 * time.Second

	// DefaultPoolDir is where file-backed credential pools are read from
	DefaultPoolDir = "./pools"

	// DefaultPool is used for groups without an explicit route
	DefaultPool = "bd"

	// DefaultPoolRoutes mirrors the historic region layout: IND has its own
	// pool, the Americas share one, everything else falls back to DefaultPool.
	DefaultPoolRoutes = "ind=IND;br=BR,US,SAC,NA"

	// DefaultGroups lists the groups reported by the pool diagnostics endpoint
	DefaultGroups = "IND,BD,BR,US,SAC,NA"

	// DefaultRedisPrefix namespaces credential pool keys in Redis
	DefaultRedisPrefix = "fanout:pool"

	// DefaultActionPath and DefaultCounterPath are appended to the group's
	// remote base URL for dispatch and measurement calls.
	DefaultActionPath  = "/v1/action"
	DefaultCounterPath = "/v1/counter"
)
