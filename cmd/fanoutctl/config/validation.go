package config

// This file implements flag validation for fanoutctl. Validation only checks
// local syntax; group existence is decided by the daemon.

import (
	"fmt"
	"net"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/selector"
	"github.com/concave-dev/fanout/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	if err := ValidateAPIAddress(); err != nil {
		return err
	}
	if err := ValidateOutputFormat(); err != nil {
		return err
	}
	if Global.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second")
	}
	Global.LogLevel = logging.NormalizeLogLevel(Global.LogLevel)
	return logging.ValidateLogLevel(Global.LogLevel)
}

// ValidateAPIAddress validates the --api flag. Hostnames are accepted since
// the CLI dials the address rather than binding it.
func ValidateAPIAddress() error {
	if err := validate.ValidateDialAddress(Global.APIAddr); err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address - expected format: host:port (e.g., %s)", DefaultAPIAddr)
	}

	host, _, _ := net.SplitHostPort(Global.APIAddr)
	if host == "0.0.0.0" || host == "::" {
		logging.Error("Unroutable API address '%s'", Global.APIAddr)
		return fmt.Errorf("unroutable API address - use 127.0.0.1 or a specific address")
	}
	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[Global.Output] {
		logging.Error("Invalid output format '%s' - valid formats are: table, json", Global.Output)
		return fmt.Errorf("invalid output format - valid: table, json")
	}
	return nil
}

// ValidateDispatchFlags validates the dispatch command flags and normalizes
// the group name.
func ValidateDispatchFlags(cmd *cobra.Command, args []string) error {
	if Dispatch.Target == 0 {
		return fmt.Errorf("--target is required")
	}
	Dispatch.Group = credential.NormalizeGroup(Dispatch.Group)
	if err := validate.GroupName(Dispatch.Group); err != nil {
		return fmt.Errorf("invalid --group: %w", err)
	}
	if _, err := selector.ParseMode(Dispatch.Mode); err != nil {
		return fmt.Errorf("invalid --mode: %w", err)
	}
	return nil
}
