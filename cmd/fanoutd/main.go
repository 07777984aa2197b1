// Package main implements the fanout daemon (fanoutd).
// fanoutd serves credential-batch dispatch over HTTP: each request rotates a
// batch out of a credential pool, fans one remote action per credential out
// concurrently and reports the counter delta it measured around the batch.
package main

import (
	"os"

	"github.com/concave-dev/fanout/cmd/fanoutd/commands"
)

func main() {
	commands.SetupCommands()
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
