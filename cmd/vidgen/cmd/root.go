package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/vidgen/internal/config"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=..."
var version = "dev"

var (
	cfgFile      string
	backendURL   string
	outputFormat string

	v      *viper.Viper
	appCfg config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vidgen",
	Short: "Submit video generation prompts and follow their progress",
	Long: `vidgen is a front-end for a video generation backend. It submits prompts,
tracks the resulting jobs and polls their status until the videos are ready,
from the command line, a terminal UI or a browser.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vidgen/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (default from config or http://localhost:8081)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
}

// loadConfig resolves flags, VIDGEN_* env vars, the config file and defaults
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	v, err = config.NewViper(cfgFile)
	if err != nil {
		return err
	}

	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		v.Set("backend_url", backendURL)
	}
	if f := cmd.Root().PersistentFlags().Lookup("output"); f != nil && f.Changed {
		v.Set("output", outputFormat)
	}

	appCfg, err = config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return appCfg.Output == "json"
}
