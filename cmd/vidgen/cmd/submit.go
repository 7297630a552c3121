package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/psantana5/vidgen/internal/render"
	"github.com/psantana5/vidgen/internal/submit"
)

var (
	submitPrompt   string
	submitDuration int
	submitRefine   bool
	submitWait     bool
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new video generation job",
	Long: `Submit a prompt to the backend and print the new job identifier.

Example:
  vidgen submit --prompt "a cat surfing at sunset" --duration 10
  vidgen submit --prompt "a cat" --refine=false --wait`,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitPrompt, "prompt", "", "description of the video (required)")
	submitCmd.Flags().IntVar(&submitDuration, "duration", 0, "video length in seconds (default from config, normally 10)")
	submitCmd.Flags().BoolVar(&submitRefine, "refine", true, "refine the prompt with AI before generating (default from config)")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "poll the job until it is done or failed")
	submitCmd.MarkFlagRequired("prompt")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, appOptions{component: "cli", console: os.Stderr})
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	form := a.submitter.DefaultForm(appCfg.DefaultRefine)
	form.Prompt = submitPrompt
	if cmd.Flags().Changed("duration") {
		form.DurationSeconds = submitDuration
	}
	if cmd.Flags().Changed("refine") {
		form.RefineWithAI = submitRefine
	}

	_, jobID, err := a.submitter.Submit(ctx, form)
	if err != nil {
		return fmt.Errorf("%s: %w", submit.AlertText(err), err)
	}

	if submitWait {
		return follow(ctx, a, true)
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(map[string]string{"job_id": jobID}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if err := render.WriteCard(os.Stdout, render.NewCard(jobID, nil, a.client)); err != nil {
		return err
	}
	fmt.Printf("\nJob submitted successfully at %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("Follow it with: vidgen watch %s\n", jobID)
	return nil
}
