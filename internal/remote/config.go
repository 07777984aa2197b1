// Package remote talks to the remote service that dispatched actions and
// counter reads are sent to.
//
// This file implements the remote client configuration and the parsers for
// its flag formats.
//
// ENDPOINT ROUTING:
// Every group uses DefaultEndpoint unless Endpoints names a group-specific
// base URL ("BR=https://br.example.com;IND=https://ind.example.com"). The
// action or counter path is appended to the chosen base URL.
//
// HEADERS:
// Static headers ("Name: value") are sent with every call and may replace
// the client's default Content-Type and User-Agent. The bearer token is set
// per call from the credential.
package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/concave-dev/fanout/internal/config"
	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/validate"
)

// Config holds the remote service addressing and transport settings.
type Config struct {
	DefaultEndpoint    string            // Base URL for groups without an explicit endpoint
	Endpoints          map[string]string // Per-group base URLs, keyed by normalized group
	ActionPath         string            // Path appended to the base URL for actions
	CounterPath        string            // Path appended to the base URL for counter reads
	Headers            map[string]string // Static headers sent with every call
	Timeout            time.Duration     // Deadline for each individual call
	InsecureSkipVerify bool              // Disable TLS certificate verification
}

// DefaultConfig returns a config with default paths and timeout. The
// endpoint must be supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		Endpoints:   make(map[string]string),
		ActionPath:  config.DefaultActionPath,
		CounterPath: config.DefaultCounterPath,
		Headers:     make(map[string]string),
		Timeout:     config.DefaultCallTimeout,
	}
}

// Validate checks endpoints, paths and the call timeout.
func (c *Config) Validate() error {
	if err := validate.ValidateEndpointURL(c.DefaultEndpoint); err != nil {
		return fmt.Errorf("default endpoint: %w", err)
	}
	for group, endpoint := range c.Endpoints {
		if err := validate.GroupName(group); err != nil {
			return fmt.Errorf("endpoint for %q: %w", group, err)
		}
		if err := validate.ValidateEndpointURL(endpoint); err != nil {
			return fmt.Errorf("endpoint for %s: %w", group, err)
		}
	}
	for name, path := range map[string]string{"action path": c.ActionPath, "counter path": c.CounterPath} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s must start with '/', got %q", name, path)
		}
	}
	return validate.ValidatePositiveTimeout(c.Timeout, "call timeout")
}

// EndpointFor returns the base URL serving group.
func (c *Config) EndpointFor(group string) string {
	if endpoint, ok := c.Endpoints[credential.NormalizeGroup(group)]; ok {
		return endpoint
	}
	return c.DefaultEndpoint
}

// ParseEndpoints parses "GROUP=URL;GROUP=URL" into a per-group endpoint map.
func ParseEndpoints(raw string) (map[string]string, error) {
	endpoints := make(map[string]string)
	for _, clause := range strings.Split(raw, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		group, endpoint, ok := strings.Cut(clause, "=")
		if !ok {
			return nil, fmt.Errorf("invalid endpoint %q: expected GROUP=URL", clause)
		}
		group = credential.NormalizeGroup(group)
		if _, dup := endpoints[group]; dup {
			return nil, fmt.Errorf("duplicate endpoint for group %s", group)
		}
		endpoints[group] = strings.TrimSpace(endpoint)
	}
	return endpoints, nil
}

// ParseHeaders parses "Name: value" strings into a header map.
func ParseHeaders(lines []string) (map[string]string, error) {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", line)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
