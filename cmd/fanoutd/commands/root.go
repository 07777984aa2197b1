// Package commands provides the CLI command structure for the fanout daemon.
//
// fanoutd is a single root command: flags are parsed, FANOUT_* environment
// overrides are applied to anything not set on the command line, the result
// is validated and the daemon runs until SIGINT or SIGTERM.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/concave-dev/fanout/cmd/fanoutd/config"
	"github.com/concave-dev/fanout/cmd/fanoutd/daemon"
	"github.com/concave-dev/fanout/cmd/fanoutd/utils"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/version"
	"github.com/spf13/cobra"
)

// logFileHandle is the open --log-file, closed by CleanupLogFile
var logFileHandle *os.File

// CleanupLogFile closes the log file handle if it exists
func CleanupLogFile() {
	if logFileHandle != nil {
		if err := logFileHandle.Close(); err != nil {
			// Logging may point at the file being closed
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFileHandle = nil
	}
}

// RootCmd is the fanoutd root command.
//
// STARTUP SEQUENCE:
//  1. PersistentPreRun prints the banner
//  2. PreRunE records explicit flags, applies FANOUT_* overrides, opens the
//     log file and validates the result
//  3. RunE hands over to daemon.Run until the process is signalled
var RootCmd = &cobra.Command{
	Use:   "fanoutd",
	Short: "Credential-batch rotation and concurrent dispatch daemon",
	Long: `fanoutd serves dispatch requests over HTTP. For each request it selects a
bounded batch from the group's credential pool, fans one action out across the
batch concurrently and measures a remote counter before and after to report
how many actions took effect.

Every flag can also be set through a FANOUT_* environment variable
(e.g. --batch-size and FANOUT_BATCH_SIZE). Explicit flags win.`,
	Version:      version.FanoutdVersion,
	SilenceUsage: true,
	Example: `  # File-backed pools in ./pools, one remote endpoint
  fanoutd --endpoint=https://remote.example.com

  # Redis-backed pools, per-group endpoints, paced dispatch
  fanoutd --endpoint=https://remote.example.com \
    --group-endpoints="IND=https://ind.remote.example.com" \
    --redis-addr=127.0.0.1:6379 --rate=200 --burst=50

  # Sealed payloads, key material from the environment
  FANOUT_SEAL_KEY=... FANOUT_SEAL_IV=... fanoutd --endpoint=https://remote.example.com`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.DisplayLogo(version.FanoutdVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		CheckExplicitFlags(cmd)

		// Apply the flag level first so environment parsing logs respect it
		logging.SetLevel(config.Global.LogLevel)
		if err := config.InitializeConfig(); err != nil {
			return err
		}
		logging.SetLevel(config.Global.LogLevel)

		if config.Global.LogFile != "" {
			if err := openLogFile(config.Global.LogFile); err != nil {
				return err
			}
		}

		if err := config.ValidateConfig(); err != nil {
			CleanupLogFile()
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer CleanupLogFile()
		return daemon.Run(cmd.Context())
	},
}

// openLogFile redirects all logging to path, creating parent directories.
// The file is opened in append mode so restarts keep earlier logs.
func openLogFile(path string) error {
	logDir := filepath.Dir(path)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logFileHandle = f
	logging.SetOutput(f)
	return nil
}

// SetupCommands initializes all commands and their flags
func SetupCommands() {
	SetupFlags(RootCmd)
}
