// Package cmd implements the bl CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/buying-list/internal/api/client"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "bl",
		Short: "CLI client for the buying list",
		Long: "bl is a command-line client for the buying-list API.\n" +
			"It lets you manage items, their sources and alerts, refresh prices,\n" +
			"and read comparisons and buy recommendations from the terminal.",
		Version:      Version,
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.bl.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		Duration("timeout", 2*time.Minute, "request timeout; a full refresh can take a while")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout")))

	rootCmd.AddCommand(itemsCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(insightsCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bl")
	}

	viper.SetEnvPrefix("BL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"),
		apiclient.WithTimeout(viper.GetDuration("timeout")),
		apiclient.WithUserAgent("bl/"+Version),
	)
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
