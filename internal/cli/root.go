package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ratelimitdemo",
		Short: "Interchangeable rate limiting algorithms with a simulation driver",
		Long: `Runs an HTTP server exposing three rate limiting algorithms (fixed
window, sliding window, token bucket) behind one API, plus a simulation
driver that replays synthetic request sequences to show how each
algorithm behaves over time.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newSimulateCmd(),
	)

	return root
}
