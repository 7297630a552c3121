package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/psantana5/vidgen/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal front-end",
	Long: `Open an interactive form and job list in the terminal. Logs go to
log.dir only, since the screen belongs to the UI.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, appOptions{component: "tui", console: io.Discard})
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	return tui.Run(ctx, tui.Config{
		Submitter:     a.submitter,
		Registry:      a.registry,
		Poller:        a.poller,
		Locator:       a.client,
		Logger:        a.logger,
		PollInterval:  appCfg.PollInterval,
		DefaultRefine: appCfg.DefaultRefine,
	})
}
