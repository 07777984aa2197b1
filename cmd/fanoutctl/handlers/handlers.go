// Package handlers provides the command handler functions for fanoutctl.
//
// Each handler sets up logging, calls the daemon through the API client and
// hands the result to the display package.
//
// ERROR HANDLING:
// Handlers return errors to cobra unchanged, so the process exits non-zero.
// A degraded daemon is not an error for the health command: the report is
// printed and a warning logged.
package handlers

import (
	"github.com/concave-dev/fanout/cmd/fanoutctl/client"
	"github.com/concave-dev/fanout/cmd/fanoutctl/config"
	"github.com/concave-dev/fanout/cmd/fanoutctl/display"
	"github.com/concave-dev/fanout/cmd/fanoutctl/utils"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/spf13/cobra"
)

// HandleDispatch handles the dispatch command: one request, waiting for the
// whole batch and both counter reads.
func HandleDispatch(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Dispatching for target %d in group %s via %s",
		config.Dispatch.Target, config.Dispatch.Group, config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	resp, err := apiClient.Dispatch(client.DispatchRequest{
		TargetID: config.Dispatch.Target,
		Group:    config.Dispatch.Group,
		Mode:     config.Dispatch.Mode,
	})
	if err != nil {
		return err
	}

	display.DisplayDispatchResult(resp)
	logging.Success("Dispatch finished: %d attempted, delta %d", resp.Dispatch.Attempted, resp.Delta)
	return nil
}

// HandlePools handles the pools command, optionally in watch mode. In watch
// mode a failed refresh is logged and the next one still runs.
func HandlePools(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	fetchAndDisplay := func() error {
		logging.Info("Fetching pools from API server: %s", config.Global.APIAddr)

		apiClient := client.CreateAPIClient()
		pools, err := apiClient.GetPools()
		if err != nil {
			return err
		}

		display.DisplayPools(pools)
		if !config.Pools.Watch {
			logging.Success("Successfully retrieved %d groups", len(pools))
		}
		return nil
	}

	return utils.RunWithWatch(fetchAndDisplay, config.Pools.Watch)
}

// HandlePoolsReload handles the pools reload command. Reloading with no
// cache configured is reported, not treated as an error.
func HandlePoolsReload(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	apiClient := client.CreateAPIClient()
	purged, err := apiClient.ReloadPools()
	if err != nil {
		return err
	}

	display.DisplayPoolsReload(purged)
	return nil
}

// HandleHealth handles the health command.
func HandleHealth(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	apiClient := client.CreateAPIClient()
	health, err := apiClient.GetHealth()
	if err != nil {
		return err
	}

	display.DisplayHealth(health)
	if health.Status != "healthy" {
		logging.Warn("Daemon reports status %s", health.Status)
	}
	return nil
}
