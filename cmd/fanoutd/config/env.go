package config

import (
	"time"

	configDefaults "github.com/concave-dev/fanout/internal/config"
	"github.com/concave-dev/fanout/internal/logging"
)

// envConfig mirrors the overridable fields. Pointer fields stay nil when the
// variable is unset, which tells an override apart from a zero value.
type envConfig struct {
	// API and logging
	API      *string `env:"API"`
	LogLevel *string `env:"LOG_LEVEL"`
	LogFile  *string `env:"LOG_FILE"`

	// Dispatch
	BatchSize   *int           `env:"BATCH_SIZE"`
	CallTimeout *time.Duration `env:"CALL_TIMEOUT"`
	MaxInFlight *int           `env:"MAX_IN_FLIGHT"`
	Rate        *float64       `env:"RATE"`
	Burst       *int           `env:"BURST"`

	// Credential pools
	PoolDir       *string        `env:"POOL_DIR"`
	PoolRoutes    *string        `env:"POOL_ROUTES"`
	DefaultPool   *string        `env:"DEFAULT_POOL"`
	Groups        *string        `env:"GROUPS"`
	RedisAddr     *string        `env:"REDIS_ADDR"`
	RedisPassword *string        `env:"REDIS_PASSWORD"`
	RedisDB       *int           `env:"REDIS_DB"`
	RedisPrefix   *string        `env:"REDIS_PREFIX"`
	PoolCacheTTL  *time.Duration `env:"POOL_CACHE_TTL"`

	// Remote service
	Endpoint           *string  `env:"ENDPOINT"`
	GroupEndpoints     *string  `env:"GROUP_ENDPOINTS"`
	ActionPath         *string  `env:"ACTION_PATH"`
	CounterPath        *string  `env:"COUNTER_PATH"`
	Headers            []string `env:"HEADERS" envSeparator:";"`
	SealKey            *string  `env:"SEAL_KEY"`
	SealIV             *string  `env:"SEAL_IV"`
	InsecureSkipVerify *bool    `env:"INSECURE_SKIP_VERIFY"`

	// Observability
	OTelEndpoint *string `env:"OTEL_ENDPOINT"`
}

// InitializeConfig applies FANOUT_* environment overrides to Global for every
// flag the user did not set explicitly. Malformed values (a non-numeric
// FANOUT_BATCH_SIZE, an unparsable duration) fail startup instead of being
// ignored.
func InitializeConfig() error {
	var e envConfig
	if err := configDefaults.ParseEnv(&e); err != nil {
		return err
	}
	Global.applyEnv(&e)
	return nil
}

// applyEnv copies every set variable of e into c. The Redis password has no
// flag and always comes from the environment.
func (c *Config) applyEnv(e *envConfig) {
	override(c, &c.APIAddr, e.API, "api")
	override(c, &c.LogLevel, e.LogLevel, "log-level")
	override(c, &c.LogFile, e.LogFile, "log-file")
	override(c, &c.BatchSize, e.BatchSize, "batch-size")
	override(c, &c.CallTimeout, e.CallTimeout, "call-timeout")
	override(c, &c.MaxInFlight, e.MaxInFlight, "max-in-flight")
	override(c, &c.Rate, e.Rate, "rate")
	override(c, &c.Burst, e.Burst, "burst")
	override(c, &c.PoolDir, e.PoolDir, "pool-dir")
	override(c, &c.PoolRoutes, e.PoolRoutes, "pool-routes")
	override(c, &c.DefaultPool, e.DefaultPool, "default-pool")
	override(c, &c.Groups, e.Groups, "groups")
	override(c, &c.RedisAddr, e.RedisAddr, "redis-addr")
	override(c, &c.RedisPassword, e.RedisPassword, "")
	override(c, &c.RedisDB, e.RedisDB, "redis-db")
	override(c, &c.RedisPrefix, e.RedisPrefix, "redis-prefix")
	override(c, &c.PoolCacheTTL, e.PoolCacheTTL, "pool-cache-ttl")
	override(c, &c.Endpoint, e.Endpoint, "endpoint")
	override(c, &c.GroupEndpoints, e.GroupEndpoints, "group-endpoints")
	override(c, &c.ActionPath, e.ActionPath, "action-path")
	override(c, &c.CounterPath, e.CounterPath, "counter-path")
	override(c, &c.SealKey, e.SealKey, "seal-key")
	override(c, &c.SealIV, e.SealIV, "seal-iv")
	override(c, &c.InsecureSkipVerify, e.InsecureSkipVerify, "insecure-skip-verify")
	override(c, &c.OTelEndpoint, e.OTelEndpoint, "otel-endpoint")

	if len(e.Headers) > 0 && !c.IsExplicitlySet("header") {
		c.Headers = e.Headers
		logging.Debug("Environment override for header (%d entries)", len(e.Headers))
	}
}

// override copies src into dst when the variable was set and the flag was not.
func override[T any](c *Config, dst *T, src *T, flag string) {
	if src == nil {
		return
	}
	if flag != "" && c.IsExplicitlySet(flag) {
		logging.Debug("Ignoring environment override for --%s, flag was set explicitly", flag)
		return
	}
	*dst = *src
	if flag != "" {
		logging.Debug("Environment override for --%s", flag)
	}
}
