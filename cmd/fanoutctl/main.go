// Package main provides the entry point for fanoutctl, the command-line
// client of the fanout dispatch daemon.
//
// INITIALIZATION FLOW:
// 1. Command tree setup
// 2. Global and per-command flags
// 3. Handler assignment
// 4. Global flag validation on every invocation
package main

import (
	"os"

	"github.com/concave-dev/fanout/cmd/fanoutctl/commands"
	"github.com/concave-dev/fanout/cmd/fanoutctl/config"
	"github.com/concave-dev/fanout/cmd/fanoutctl/handlers"
)

// init builds the command tree and binds every flag to the config structs
func init() {
	rootCmd := commands.RootCmd

	rootCmd.Version = config.Version
	// Runs before every subcommand, including pools reload
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	commands.SetupCommands()

	commands.SetupGlobalFlags(rootCmd, &config.Global.APIAddr, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output,
		config.DefaultAPIAddr, config.DefaultTimeout)

	commands.SetupDispatchFlags(&config.Dispatch.Target, &config.Dispatch.Group, &config.Dispatch.Mode)
	commands.SetupPoolsFlags(&config.Pools.Watch)

	setupCommandHandlers()
}

// setupCommandHandlers assigns RunE functions to commands
func setupCommandHandlers() {
	dispatchCmd := commands.GetDispatchCommand()
	dispatchCmd.PreRunE = config.ValidateDispatchFlags
	dispatchCmd.RunE = handlers.HandleDispatch

	commands.GetPoolsCommand().RunE = handlers.HandlePools
	commands.GetPoolsReloadCommand().RunE = handlers.HandlePoolsReload
	commands.GetHealthCommand().RunE = handlers.HandleHealth
}

// main is the main entry point
func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
