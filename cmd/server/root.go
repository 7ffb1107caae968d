package main

import (
	"fmt"

	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command of the accounts-api CLI.
func NewRootCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "accounts-api",
		Short: "Account, preference and token service",
		Long: `accounts-api registers users, stores their notification preferences,
verifies credentials and issues signed access tokens.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default ./config.yaml)")

	load := func() (*config.Config, error) {
		cfg, err := config.LoadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	cmd.AddCommand(newServeCmd(load))
	cmd.AddCommand(newMigrateCmd(load))
	cmd.AddCommand(newHashPasswordCmd(load))

	return cmd
}

type configLoader func() (*config.Config, error)
