package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jsonblob/internal/api"
	"jsonblob/internal/config"
)

type createCmdOptions struct {
	filePath string
	fromYAML bool
}

func newCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &createCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create [<document>]",
		Short: "Store a new JSON document",
		Long: `Store a new JSON document and print its id.

The document is taken from the argument, from --file, or from stdin
when neither is given. With --yaml the input is parsed as YAML and
converted to JSON before upload.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, cfg, opts, jsonOutput, args)
		},
	}

	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "read the document from a file")
	cmd.Flags().BoolVar(&opts.fromYAML, "yaml", false, "treat the input as YAML and convert it to JSON")
	return cmd
}

func runCreate(cmd *cobra.Command, cfg *config.Config, opts *createCmdOptions, jsonOutput *bool, args []string) error {
	body, err := readCreateInput(opts, args)
	if err != nil {
		return err
	}
	if opts.fromYAML {
		body, err = yamlToJSON(body)
		if err != nil {
			return err
		}
	}

	return withClient(cfg, func(client *api.Client) error {
		id, err := client.CreateBlob(cmd.Context(), body)
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(map[string]string{"id": id})
		}
		return writePlain("%s\n", id)
	})
}

func readCreateInput(opts *createCmdOptions, args []string) (string, error) {
	if opts.filePath != "" && len(args) > 0 {
		return "", errors.New("pass the document as an argument or via --file, not both")
	}
	if len(args) > 0 {
		return args[0], nil
	}
	if opts.filePath != "" {
		payload, err := os.ReadFile(opts.filePath)
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

func yamlToJSON(input string) (string, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		return "", fmt.Errorf("parse yaml: %w", err)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("convert yaml to json: %w", err)
	}
	return string(payload), nil
}
