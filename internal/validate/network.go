// Package validate provides input and configuration validation for fanout,
// built on the go-playground/validator library.
//
// VALIDATION COVERAGE:
//   - Network: "host:port" bind addresses, port ranges, dial addresses
//   - Endpoints: absolute http(s) URLs for remote service routing
//   - Names: group and pool identifiers used in routing tables
//   - Config: required strings, positive durations and bounded integers
package validate

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	// Shared validator instance; built-in tags only (ip, url, hostname_port, min, max)
	validate *validator.Validate
)

func init() {
	validate = validator.New()
}

// NetworkAddress is a validated bind address with host and port components.
type NetworkAddress struct {
	Host string `validate:"required,ip"`
	Port int    `validate:"min=0,max=65535"`
}

// String returns the address in "host:port" form.
func (na NetworkAddress) String() string {
	return net.JoinHostPort(na.Host, strconv.Itoa(na.Port))
}

// ParseBindAddress parses and validates a "host:port" bind address. The host
// must be a literal IP; hostnames are rejected since the daemon binds to an
// interface, not a name.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateDialAddress validates a "host:port" address that will be dialed,
// such as the Redis pool backend. Hostnames are allowed.
func ValidateDialAddress(addr string) error {
	if err := validate.Var(addr, "required,hostname_port"); err != nil {
		return fmt.Errorf("invalid dial address '%s': %w", addr, err)
	}
	return nil
}

// ValidateEndpointURL validates an absolute http or https URL used as a remote
// service base address.
func ValidateEndpointURL(raw string) error {
	if err := validate.Var(raw, "required,http_url"); err != nil {
		return fmt.Errorf("invalid endpoint URL '%s': %w", raw, err)
	}
	return nil
}

// ValidateField validates a single value against validator tags.
//
// Example: ValidateField(8008, "required,min=1,max=65535")
func ValidateField(value any, tag string) error {
	return validate.Var(value, tag)
}

// ValidateStruct validates a struct using its `validate` tags.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}
