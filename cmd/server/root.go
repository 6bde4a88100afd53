package main

import (
	"github.com/spf13/cobra"

	"github.com/jrsteele09/storefront-api/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the storefront command. With no subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Storefront API - accounts, sessions and product listings",
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	cmd.PersistentFlags().String("server.port", "3003", "HTTP listen port")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads defaults, the --config file, the environment and any flags
// set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(configFile, cmd.Flags())
}
