package config

// This file implements startup validation for fanoutd.
//
// VALIDATION STAGES:
//  1. Log level and API bind address
//  2. Dispatch limits: batch size, call timeout, concurrency and pacing
//  3. Credential pools: routing table, groups, Redis or file backend, cache TTL
//  4. Remote service: endpoints, headers, sealing parameters, TLS
//  5. Tracing endpoint, when set
//
// Each stage stores its parsed form on Global (Routes, GroupList, EndpointMap,
// HeaderMap) so the daemon builds components without parsing again.

import (
	"fmt"
	"time"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/dispatch"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/remote"
	"github.com/concave-dev/fanout/internal/validate"
)

const (
	// MaxBatchSize caps --batch-size.
	MaxBatchSize = 10000

	// requestMargin covers pool loads, encoding and writing the response on
	// top of the remote calls of one dispatch request.
	requestMargin = 15 * time.Second

	// longRequestWarning is the request budget above which the operator is
	// warned that callers need a matching client timeout.
	longRequestWarning = 10 * time.Minute
)

// ValidateConfig validates Global and fills in the derived fields (API port,
// parsed routes, groups, endpoints and headers). It runs after flags and
// environment overrides are applied.
func ValidateConfig() error {
	Global.LogLevel = logging.NormalizeLogLevel(Global.LogLevel)
	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	apiAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address: %w", err)
	}
	if err := validate.ValidatePortRange(apiAddr.Port); err != nil {
		return fmt.Errorf("API address requires specific port (not 0): %w", err)
	}
	Global.APIAddr = apiAddr.Host
	Global.APIPort = apiAddr.Port

	if err := validateDispatch(); err != nil {
		return err
	}
	if err := validatePools(); err != nil {
		return err
	}
	if err := validateRemote(); err != nil {
		return err
	}

	if Global.OTelEndpoint != "" {
		if err := validate.ValidateEndpointURL(Global.OTelEndpoint); err != nil {
			return fmt.Errorf("invalid otel endpoint: %w", err)
		}
	}
	return nil
}

// validateDispatch checks the dispatch limits and warns when they allow
// requests longer than longRequestWarning.
func validateDispatch() error {
	if err := validate.ValidateIntRange(Global.BatchSize, 1, MaxBatchSize, "batch size"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(Global.CallTimeout, "call timeout"); err != nil {
		return err
	}
	if err := DispatchConfig().Validate(); err != nil {
		return fmt.Errorf("invalid dispatch config: %w", err)
	}
	// Long budgets are legal but callers must be told to wait that long
	if budget := RequestBudget(); budget > longRequestWarning {
		logging.Warn("A single dispatch request may take up to %v with these settings; "+
			"clients need a timeout at least that long", budget)
	}
	return nil
}

// RequestBudget is the longest one dispatch request can take with the
// current settings: the before and after counter reads, the dispatch itself
// with every call running into the call timeout, and a fixed margin. The API
// write timeout and the shutdown drain are derived from it so a completed
// dispatch always gets its response delivered.
func RequestBudget() time.Duration {
	return 2*Global.CallTimeout +
		DispatchConfig().WorstCase(Global.BatchSize, Global.CallTimeout) +
		requestMargin
}

// validatePools parses the routing table and checks the selected backend.
func validatePools() error {
	if err := validate.PoolName(Global.DefaultPool); err != nil {
		return fmt.Errorf("invalid default pool: %w", err)
	}

	routes, err := credential.ParseRoutes(Global.PoolRoutes)
	if err != nil {
		return fmt.Errorf("invalid pool routes: %w", err)
	}
	groups, err := credential.ParseGroups(Global.Groups)
	if err != nil {
		return fmt.Errorf("invalid groups: %w", err)
	}
	if _, err := credential.NewRouter(routes, Global.DefaultPool, groups); err != nil {
		return fmt.Errorf("invalid pool routing: %w", err)
	}
	Global.Routes = routes
	Global.GroupList = groups

	// Redis replaces the file backend entirely
	if Global.RedisAddr != "" {
		if err := validate.ValidateDialAddress(Global.RedisAddr); err != nil {
			return fmt.Errorf("invalid redis address: %w", err)
		}
		if err := validate.ValidateRequiredString(Global.RedisPrefix, "redis prefix"); err != nil {
			return err
		}
		if Global.RedisDB < 0 {
			return fmt.Errorf("redis db must not be negative, got %d", Global.RedisDB)
		}
		if Global.IsExplicitlySet("pool-dir") {
			logging.Warn("--pool-dir is ignored when --redis-addr is set")
		}
	} else if err := validate.ValidateRequiredString(Global.PoolDir, "pool dir"); err != nil {
		return err
	}

	if Global.PoolCacheTTL < 0 {
		return fmt.Errorf("pool cache ttl must not be negative, got %v", Global.PoolCacheTTL)
	}
	return nil
}

// validateRemote parses per-group endpoints and static headers, then checks
// the remote client config and the seal parameters. Seal key and IV are
// all-or-nothing: one without the other is rejected rather than silently
// sending plain payloads.
func validateRemote() error {
	endpoints, err := remote.ParseEndpoints(Global.GroupEndpoints)
	if err != nil {
		return fmt.Errorf("invalid group endpoints: %w", err)
	}
	headers, err := remote.ParseHeaders(Global.Headers)
	if err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}
	Global.EndpointMap = endpoints
	Global.HeaderMap = headers

	if err := RemoteConfig().Validate(); err != nil {
		return fmt.Errorf("invalid remote config: %w", err)
	}

	if (Global.SealKey == "") != (Global.SealIV == "") {
		return fmt.Errorf("seal key and seal iv must be set together")
	}
	if Global.SealKey != "" {
		if _, err := remote.NewSealer(Global.SealKey, Global.SealIV); err != nil {
			return fmt.Errorf("invalid seal parameters: %w", err)
		}
	}

	if Global.InsecureSkipVerify {
		logging.Warn("TLS certificate verification is disabled for remote calls")
	}
	return nil
}

// DispatchConfig builds the dispatch engine config from Global. It is used
// both at startup and by RequestBudget.
func DispatchConfig() *dispatch.Config {
	cfg := dispatch.DefaultConfig()
	cfg.MaxInFlight = Global.MaxInFlight
	cfg.Rate = Global.Rate
	cfg.Burst = Global.Burst
	return cfg
}

// RemoteConfig builds the remote client config from Global. Call after
// ValidateConfig so the parsed endpoint and header maps are populated.
//
// The per-call deadline of the HTTP client is the call timeout, so counter
// reads and dispatched actions share the same limit.
func RemoteConfig() *remote.Config {
	cfg := remote.DefaultConfig()
	cfg.DefaultEndpoint = Global.Endpoint
	if Global.EndpointMap != nil {
		cfg.Endpoints = Global.EndpointMap
	}
	cfg.ActionPath = Global.ActionPath
	cfg.CounterPath = Global.CounterPath
	if Global.HeaderMap != nil {
		cfg.Headers = Global.HeaderMap
	}
	cfg.Timeout = Global.CallTimeout
	cfg.InsecureSkipVerify = Global.InsecureSkipVerify
	return cfg
}
