package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jsonblob/internal/api"
	"jsonblob/internal/config"
)

func newUpdateCmd(cfg *config.Config) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "update <id> [<document>]",
		Short: "Replace a stored JSON document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readUpdateInput(filePath, args)
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				updated, err := client.UpdateBlob(cmd.Context(), args[0], body)
				if err != nil {
					return err
				}
				return writeDocument(updated)
			})
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "read the document from a file")
	return cmd
}

func readUpdateInput(filePath string, args []string) (string, error) {
	if filePath != "" && len(args) > 1 {
		return "", errors.New("pass the document as an argument or via --file, not both")
	}
	if len(args) > 1 {
		return args[1], nil
	}
	if filePath != "" {
		payload, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(payload), nil
	}

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(payload)) == "" {
		return "", errors.New("no document given (argument, --file, or stdin)")
	}
	return string(payload), nil
}
