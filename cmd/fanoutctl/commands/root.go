// Package commands provides the command tree for fanoutctl.
//
// COMMAND STRUCTURE:
//   - dispatch: run one dispatch request and print its measured delta
//   - pools: list pool sizes and rotation cursors (reload purges the cache)
//   - health: daemon health and dependency checks
package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd is the fanoutctl root command
var RootCmd = &cobra.Command{
	Use:   "fanoutctl",
	Short: "CLI for the fanout credential-batch dispatch daemon",
	Long: `fanoutctl talks to a running fanoutd over its HTTP API: it triggers
dispatch requests, inspects credential pools and checks daemon health.`,
	SilenceUsage: true,
	Example: `  # Dispatch for a target using the BR pool
  fanoutctl dispatch --target=12345 --group=BR

  # Random selection instead of the rotating window
  fanoutctl dispatch --target=12345 --group=IND --mode=random

  # Show pools, live
  fanoutctl pools --watch

  # Force pools to be re-read
  fanoutctl pools reload

  # Talk to a remote daemon, JSON output
  fanoutctl --api=10.0.0.5:5001 -o json pools`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(dispatchCmd)
	RootCmd.AddCommand(poolsCmd)
	poolsCmd.AddCommand(poolsReloadCmd)
	RootCmd.AddCommand(healthCmd)
}

// SetupGlobalFlags configures all global persistent flags. Pointers are
// passed in so the commands package does not depend on the config package.
//
// The CLI log level defaults to ERROR; it only takes effect with --verbose,
// see utils.SetupLogging.
func SetupGlobalFlags(rootCmd *cobra.Command, apiAddrPtr *string, logLevelPtr *string,
	timeoutPtr *int, verbosePtr *bool, outputPtr *string, defaultAPIAddr string, defaultTimeout int) {
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", defaultAPIAddr,
		"fanoutd API server address")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", defaultTimeout,
		"Request timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
}
