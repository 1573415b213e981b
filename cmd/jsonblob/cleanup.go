package main

import (
	"errors"

	"github.com/spf13/cobra"

	"jsonblob/internal/api"
	"jsonblob/internal/config"
)

func newCleanupCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool
	var confirm bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Sweep blobs whose last access is older than the TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun && !confirm {
				return errors.New("cleanup deletes blobs; pass --confirm, or --dry-run to preview")
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.AdminCleanup(cmd.Context(), api.CleanupRequest{DryRun: dryRun}, confirm)
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("examined: %d\n", resp.Examined)
				_ = writePlain("removed: %d\n", resp.Removed)
				_ = writePlain("dry_run: %t\n", resp.DryRun)
				for _, id := range resp.BlobIDs {
					_ = writePlain("  %s\n", id)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report expired blobs without deleting them")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm deletion of expired blobs")
	return cmd
}
