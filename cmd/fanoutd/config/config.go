// Package config holds the fanoutd configuration: flag values, FANOUT_*
// environment overrides and the values derived from them during validation.
//
// Precedence, highest first:
//
//   - Flags explicitly set on the command line
//   - FANOUT_* environment variables (e.g. FANOUT_BATCH_SIZE=200)
//   - Flag defaults, taken from internal/config
//
// Secrets such as the seal key or the Redis password can be supplied through
// the environment only, keeping them out of process listings.
package config

import (
	"time"

	configDefaults "github.com/concave-dev/fanout/internal/config"
)

const (
	DefaultAPI          = configDefaults.DefaultBindAddr + ":5001" // Default API address
	DefaultLogLevel     = configDefaults.DefaultLogLevel           // Default log level
	DefaultBatchSize    = configDefaults.DefaultBatchSize          // Credentials per dispatch
	DefaultCallTimeout  = configDefaults.DefaultCallTimeout        // Per-call deadline
	DefaultPoolDir      = configDefaults.DefaultPoolDir            // File provider directory
	DefaultPool         = configDefaults.DefaultPool               // Pool for unrouted groups
	DefaultPoolRoutes   = configDefaults.DefaultPoolRoutes         // POOL=GROUP,... routing table
	DefaultGroups       = configDefaults.DefaultGroups             // Groups listed by /pools
	DefaultRedisPrefix  = configDefaults.DefaultRedisPrefix        // Redis key namespace
	DefaultActionPath   = configDefaults.DefaultActionPath         // Remote action path
	DefaultCounterPath  = configDefaults.DefaultCounterPath        // Remote counter path
	DefaultPoolCacheTTL = 30 * time.Second                         // Pool cache lifetime
	DefaultBurst        = 1                                        // Pacing burst
)

// Config holds all daemon configuration values
type Config struct {
	APIAddr  string // HTTP API bind address, "host:port" until validated
	APIPort  int    // HTTP API port (derived from APIAddr)
	LogLevel string // Log level: DEBUG, INFO, WARN, ERROR
	LogFile  string // Redirect all log output to this file

	// Dispatch
	BatchSize   int           // Maximum credentials per dispatch
	CallTimeout time.Duration // Deadline for each remote call
	MaxInFlight int           // Concurrent calls per dispatch, 0 = unbounded
	Rate        float64       // Calls per second across dispatches, 0 = unpaced
	Burst       int           // Calls allowed to start at once when paced

	// Credential pools
	PoolDir       string        // Directory of <pool>.json files
	PoolRoutes    string        // POOL=GROUP,GROUP;... routing table
	DefaultPool   string        // Pool for groups without a route
	Groups        string        // Comma-separated groups reported by /pools
	RedisAddr     string        // Read pools from Redis instead of files
	RedisPassword string        // Redis AUTH password (environment only)
	RedisDB       int           // Redis logical database
	RedisPrefix   string        // Redis key namespace
	PoolCacheTTL  time.Duration // Pool cache lifetime, 0 disables caching

	// Remote service
	Endpoint           string   // Default remote base URL
	GroupEndpoints     string   // GROUP=URL;... per-group base URLs
	ActionPath         string   // Path for action calls
	CounterPath        string   // Path for counter reads
	Headers            []string // Static "Name: value" headers
	SealKey            string   // Hex AES key for payload sealing
	SealIV             string   // Hex AES IV for payload sealing
	InsecureSkipVerify bool     // Disable TLS verification

	// Observability
	OTelEndpoint string // OTLP/HTTP traces endpoint URL, empty disables tracing

	// Derived during ValidateConfig
	Routes      map[string]string // Parsed PoolRoutes
	GroupList   []string          // Parsed Groups
	EndpointMap map[string]string // Parsed GroupEndpoints
	HeaderMap   map[string]string // Parsed Headers

	// Flag names explicitly set by the user
	explicit map[string]bool
}

// Global configuration instance
var Global Config

// SetExplicitlySet records whether the flag called name was set by the user.
func (c *Config) SetExplicitlySet(name string, value bool) {
	if c.explicit == nil {
		c.explicit = make(map[string]bool)
	}
	c.explicit[name] = value
}

// IsExplicitlySet reports whether the flag called name was set by the user.
// Explicit flags are not overridden by the environment.
func (c *Config) IsExplicitlySet(name string) bool {
	return c.explicit[name]
}
