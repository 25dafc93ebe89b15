package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pelusa-v/tidbid/internal/config"
)

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "tidbid",
	Short: "TidBid admin chat and client portal server",
	Long: `TidBid serves the role picker, the admin chat dashboard and the client
portal. Each browser session gets its own view router and thread store;
simulated replies are pushed to the page over a websocket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

// loadConfig returns the defaults, or the file named by --config laid
// over them.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}
