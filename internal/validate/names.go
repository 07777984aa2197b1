// Package validate provides input validation shared by fanoutd, fanoutctl
// and the HTTP API.
//
// This file implements the identifier formats of groups and pools.
//
// NAMING RULES:
//   - Groups: upper case, 1-32 characters of [A-Z0-9_-], for example "IND"
//     or "US-EAST"; callers normalize before validating
//   - Pools: lower case, 1-64 characters of [a-z0-9_-], for example "br"
//
// Both start with a letter or digit, which keeps them safe as file names,
// Redis key segments and Prometheus label values.
package validate

import (
	"fmt"
	"regexp"
)

var (
	groupNameRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{0,31}$`)
	poolNameRegex  = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
)

// GroupName validates a normalized (upper case) group identifier such as
// "IND" or "US-EAST". Groups also appear as metric labels, so the alphabet and
// length are restricted.
func GroupName(name string) error {
	if name == "" {
		return fmt.Errorf("group name cannot be empty")
	}
	if !groupNameRegex.MatchString(name) {
		return fmt.Errorf("group name '%s' must be 1-32 characters of [A-Z0-9_-] starting with a letter or digit", name)
	}
	return nil
}

// PoolName validates a credential pool name. Pool names become file names
// and Redis key segments, so they are lower case and path-safe.
func PoolName(name string) error {
	if name == "" {
		return fmt.Errorf("pool name cannot be empty")
	}
	if !poolNameRegex.MatchString(name) {
		return fmt.Errorf("pool name '%s' must be 1-64 characters of [a-z0-9_-] starting with a letter or digit", name)
	}
	return nil
}
