// Package commands contains all CLI command definitions for fanoutctl.
//
// This file implements the health command.
package commands

import (
	"github.com/spf13/cobra"
)

// healthCmd shows daemon health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show daemon health and dependency checks",
	Long: `Query the daemon health endpoint. A daemon whose dependencies fail their
checks (for example an unreachable Redis pool backend) reports degraded.`,
	Args: cobra.NoArgs,
}

// GetHealthCommand returns the health command for handler assignment
func GetHealthCommand() *cobra.Command {
	return healthCmd
}
