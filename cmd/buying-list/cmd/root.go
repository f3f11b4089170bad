// Package cmd implements the CLI commands for the buying-list server.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/buying-list/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "buying-list",
	Short: "Track prices for a shopping list",
	Long: "An API-first service that tracks items across shop websites, extracts\n" +
		"their current prices from page markup, keeps a price ledger per source,\n" +
		"fires price alerts, and recommends when to buy.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file path (defaults apply when empty)")

	rootCmd.AddCommand(serveCmd, migrateCmd, extractCommand(), versionCommand())
}

// Root returns the root command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
