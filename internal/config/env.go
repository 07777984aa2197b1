// Package config holds defaults shared across fanout packages.
//
// This file implements environment variable parsing with caarlos0/env. The
// daemon's own config package declares which variables exist; this helper
// only applies the FANOUT_ prefix and wraps parse errors.
//
// PRECEDENCE:
// Explicit command line flags win over FANOUT_* variables, which win over
// built-in defaults. The caller enforces this by skipping variables whose
// flag was set explicitly.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment override read by fanoutd.
const EnvPrefix = "FANOUT_"

// ParseEnv loads FANOUT_* environment variables into target, which must be a
// pointer to a struct with `env` tags. Tags are given without the prefix.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
