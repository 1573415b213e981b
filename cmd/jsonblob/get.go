package main

import (
	"github.com/spf13/cobra"

	"jsonblob/internal/api"
	"jsonblob/internal/config"
)

func newGetCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a stored JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				body, err := client.GetBlob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeDocument(body)
			})
		},
	}
}
