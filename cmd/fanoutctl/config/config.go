// Package config provides configuration management for the fanoutctl CLI.
//
// Flag values are bound straight into the Global, Dispatch and Pools structs
// by the commands package and checked by the Validate* functions in
// PersistentPreRunE and PreRunE hooks.
package config

import (
	configDefaults "github.com/concave-dev/fanout/internal/config"
	"github.com/concave-dev/fanout/internal/version"
)

const (
	DefaultAPIAddr = configDefaults.DefaultBindAddr + ":5001" // Default fanoutd API address
	DefaultTimeout = 150                                      // Seconds; a dispatch waits on its whole batch
)

// Version is the fanoutctl CLI version
var Version = version.FanoutctlVersion

// Global holds the global CLI configuration
var Global struct {
	APIAddr  string // Address of the fanoutd API server
	LogLevel string // Log level for CLI operations
	Timeout  int    // Request timeout in seconds
	Verbose  bool   // Show verbose output
	Output   string // Output format: table, json
}

// Dispatch holds the dispatch command configuration
var Dispatch struct {
	Target uint64 // Target identifier passed to the remote action
	Group  string // Group whose credential pool is used
	Mode   string // Selection mode: rotating or random
}

// Pools holds the pools command configuration
var Pools struct {
	Watch bool // Refresh the pool table every few seconds
}
