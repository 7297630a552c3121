package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/vidgen/internal/config"
)

var configOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Commands for inspecting the effective vidgen configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying defaults, the config file,
VIDGEN_* environment variables and command line flags.`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)

	configShowCmd.Flags().StringVarP(&configOutput, "output", "o", "text",
		"Output format: text, json, yaml")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	return writeConfig(os.Stdout, appCfg.Display(), configOutput, v.ConfigFileUsed())
}

func writeConfig(w io.Writer, d config.Display, format, source string) error {
	switch format {
	case "json":
		output, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(output))
		return err

	case "yaml":
		output, err := yaml.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(output)
		return err

	case "text":
		table := tablewriter.NewWriter(w)
		table.Header("Key", "Value")
		rows := [][]string{
			{"backend_url", d.BackendURL},
			{"poll_interval", d.PollInterval},
			{"poll_terminal", fmt.Sprint(d.PollTerminal)},
			{"request_timeout", d.RequestTimeout},
			{"default_duration", fmt.Sprint(d.DefaultDuration)},
			{"default_refine", fmt.Sprint(d.DefaultRefine)},
			{"listen_addr", d.ListenAddr},
			{"submit_rps", fmt.Sprint(d.SubmitRPS)},
			{"submit_burst", fmt.Sprint(d.SubmitBurst)},
			{"output", d.Output},
			{"log.level", d.Log.Level},
			{"log.format", d.Log.Format},
			{"log.dir", d.Log.Dir},
			{"tracing.enabled", fmt.Sprint(d.Tracing.Enabled)},
			{"tracing.endpoint", d.Tracing.Endpoint},
		}
		for _, row := range rows {
			if err := table.Append(row[0], row[1]); err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		if source == "" {
			source = "(none, defaults and environment only)"
		}
		_, err := fmt.Fprintf(w, "\nConfig file: %s\n", source)
		return err

	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}
