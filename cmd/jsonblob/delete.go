package main

import (
	"github.com/spf13/cobra"

	"jsonblob/internal/api"
	"jsonblob/internal/config"
)

func newDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id> [<id>...]",
		Short: "Delete stored JSON documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				for _, id := range args {
					if err := client.DeleteBlob(cmd.Context(), id); err != nil {
						return err
					}
					if err := writePlain("deleted %s\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
