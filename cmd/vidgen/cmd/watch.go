package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var watchUntilDone bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <job-id>...",
	Short: "Follow job status until interrupted",
	Long: `Poll one or more jobs on the configured interval and redraw their status
after every round. Press Ctrl+C to stop.

Example:
  vidgen watch 0f8fad5b-d9cb-469f-a165-70867728950e
  vidgen watch --until-done <job-id> <job-id>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchUntilDone, "until-done", false, "exit once every job is done or failed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, appOptions{component: "cli", console: os.Stderr})
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	a.track(args)
	return follow(ctx, a, watchUntilDone)
}
