// Package commands contains all CLI command definitions for fanoutctl.
//
// This file implements the dispatch command, the CLI front end of a single
// dispatch request against fanoutd.
//
// REQUIRED FLAGS:
// --target and --group must both be given. The group is normalized to upper
// case by the daemon, so --group=br and --group=BR are the same request.
//
// BLOCKING BEHAVIOR:
// The command blocks until the daemon answers, which is after every call of
// the batch has finished. The --timeout default is sized for that.
package commands

import (
	"github.com/spf13/cobra"
)

// dispatchCmd runs one dispatch request
var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run one dispatch request",
	Long: `Select a batch from the group's credential pool, fan the action out across
it and report the counter before and after.

The command waits until every call in the batch has finished.`,
	Example: `  fanoutctl dispatch --target=12345 --group=BR
  fanoutctl dispatch --target=12345 --group=BR --mode=random -o json`,
	Args: cobra.NoArgs,
}

// SetupDispatchFlags configures flags for the dispatch command
func SetupDispatchFlags(targetPtr *uint64, groupPtr *string, modePtr *string) {
	dispatchCmd.Flags().Uint64Var(targetPtr, "target", 0, "Target identifier (required)")
	dispatchCmd.Flags().StringVar(groupPtr, "group", "", "Group whose pool is used, e.g. BR (required)")
	dispatchCmd.Flags().StringVar(modePtr, "mode", "rotating", "Selection mode: rotating or random")
	_ = dispatchCmd.MarkFlagRequired("target")
	_ = dispatchCmd.MarkFlagRequired("group")
}

// GetDispatchCommand returns the dispatch command for handler assignment
func GetDispatchCommand() *cobra.Command {
	return dispatchCmd
}
