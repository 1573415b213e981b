package main

import (
	"github.com/spf13/cobra"

	"jsonblob/internal/api"
	"jsonblob/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server and store info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("version: %s\n", resp.Version)
				_ = writePlain("engine: %s\n", resp.Engine)
				_ = writePlain("blob_count: %d\n", resp.BlobCount)
				_ = writePlain("pending_access_writes: %d\n", resp.PendingAccessWrites)
				_ = writePlain("blob_access_ttl: %s\n", resp.BlobAccessTTL)
				_ = writePlain("cache_enabled: %t\n", resp.CacheEnabled)
				return nil
			})
		},
	}
}
