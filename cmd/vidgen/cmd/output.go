package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/psantana5/vidgen/internal/render"
	"github.com/psantana5/vidgen/pkg/models"
)

// printJobs writes the jobs in the configured output format
func printJobs(w io.Writer, a *app, ids []string, statuses map[string]models.StatusRecord) error {
	if IsJSONOutput() {
		return render.WriteJSON(w, render.Snapshot{JobIDs: ids, Statuses: statuses})
	}
	cards := render.Cards(ids, statuses, a.client)
	if len(cards) == 1 {
		return render.WriteCard(w, cards[0])
	}
	return render.WriteTable(w, cards)
}

// follow polls the tracked jobs, redrawing after every round, until ctx is
// cancelled or, with untilDone, every job has settled.
func follow(ctx context.Context, a *app, untilDone bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := a.registry.IDs()
	var drawErr error
	onRound := func(statuses map[string]models.StatusRecord) {
		if !IsJSONOutput() {
			fmt.Print("\033[H\033[2J")
		}
		if err := printJobs(os.Stdout, a, ids, statuses); err != nil {
			drawErr = err
			cancel()
			return
		}
		if untilDone && render.Settled(ids, statuses) {
			fmt.Println("\n✓ All jobs reached a terminal state")
			cancel()
		}
	}
	err := a.newPoller(onRound).Run(ctx)
	if drawErr != nil {
		return drawErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
