package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <job-id>...",
	Short: "Get job status",
	Long:  `Fetch the current status of one or more jobs once and print them.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, appOptions{component: "cli", console: os.Stderr})
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	a.track(args)
	result := a.poller.Round(ctx)
	if result.Aborted {
		return ctx.Err()
	}
	if result.Fetched == 0 && len(result.Errors) > 0 {
		return result.Errors[0]
	}

	return printJobs(os.Stdout, a, a.registry.IDs(), a.poller.Snapshot())
}
