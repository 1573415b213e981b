package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jsonblob/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "jsonblob",
		Short: "Jsonblob is a hosted store for anonymous JSON documents",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := setupLogging(logLevel, cfg)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newCreateCmd(cfg, &jsonOutput),
		newGetCmd(cfg),
		newUpdateCmd(cfg),
		newDeleteCmd(cfg),
		newInfoCmd(cfg, &jsonOutput),
		newCleanupCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newAdminCmd(),
	)

	return cmd
}
