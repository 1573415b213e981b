package main

import (
	"github.com/spf13/cobra"

	"jsonblob/internal/auth"
	"jsonblob/internal/config"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative helpers",
	}

	cmd.AddCommand(newAdminHashTokenCmd())
	return cmd
}

func newAdminHashTokenCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-token <token>",
		Short: "Hash an admin token for the admin_token_hash config key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			if err := auth.ValidateToken(token); err != nil {
				return err
			}

			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}

			if write {
				path, err := config.Path()
				if err != nil {
					return err
				}
				if err := config.SetKey(path, "admin_token_hash", hash); err != nil {
					return err
				}
				return writePlain("wrote admin_token_hash to %s\n", path)
			}

			return writePlain("%s\n", hash)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "store the hash in the config file")
	return cmd
}
