// Package commands contains all CLI command definitions for fanoutctl.
//
// This file implements the pool diagnostics commands:
//   - pools: list pool sizes per group, optionally refreshed with --watch
//   - pools reload: purge the daemon's pool cache
package commands

import (
	"github.com/spf13/cobra"
)

// poolsCmd lists credential pools per group
var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "Show credential pool sizes per group",
	Long: `Show, for every configured group, the pool it routes to, the number of
dispatch and measurement credentials, and the rotation cursor (verbose).`,
	Example: `  fanoutctl pools
  fanoutctl pools -v --watch`,
	Args: cobra.NoArgs,
}

// poolsReloadCmd purges the daemon's pool cache
var poolsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Drop cached pools so they are re-read on the next request",
	Args:  cobra.NoArgs,
}

// SetupPoolsFlags configures flags for the pools command
func SetupPoolsFlags(watchPtr *bool) {
	poolsCmd.Flags().BoolVarP(watchPtr, "watch", "w", false, "Refresh every 2 seconds")
}

// GetPoolsCommand returns the pools command for handler assignment
func GetPoolsCommand() *cobra.Command {
	return poolsCmd
}

// GetPoolsReloadCommand returns the pools reload command for handler assignment
func GetPoolsReloadCommand() *cobra.Command {
	return poolsReloadCmd
}
