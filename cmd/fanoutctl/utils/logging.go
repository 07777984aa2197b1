// Package utils provides logging setup and watch mode for fanoutctl.
package utils

import (
	"os"

	"github.com/concave-dev/fanout/cmd/fanoutctl/config"
	"github.com/concave-dev/fanout/internal/logging"
)

// SetupLogging keeps CLI output clean: only errors are logged unless
// DEBUG=true or --verbose is set.
//
// LOGGING MODES:
//   - DEBUG=true: everything, regardless of --log-level
//   - --verbose: --log-level applies as given
//   - default: ERROR only, so tables and JSON are not interleaved with logs
func SetupLogging() {
	switch {
	case os.Getenv("DEBUG") == "true":
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
	case config.Global.Verbose:
		logging.RestoreOutput()
		logging.SetLevel(config.Global.LogLevel)
	default:
		logging.SetLevel(config.Global.LogLevel)
		logging.SuppressOutput()
	}
}
