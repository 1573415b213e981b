package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"time"

	"jsonblob/internal/api"
	"jsonblob/internal/config"
)

const (
	startupDeadline = 3 * time.Second
	startupPoll     = 100 * time.Millisecond
	probeTimeout    = 500 * time.Millisecond
)

func withClient(cfg *config.Config, fn func(*api.Client) error) error {
	client := api.NewClient(cfg.APIURL)

	stop, err := ensureServer(cfg, client)
	if err != nil {
		return err
	}
	if stop != nil {
		defer stop()
	}

	return fn(client)
}

// serverState classifies whatever answers at the API URL.
type serverState int

const (
	serverDown serverState = iota
	serverReady
	serverForeign
)

// checkServer probes the info endpoint. Only a response that decodes into
// an info document with an engine counts as one of ours; anything else
// speaking HTTP on the port belongs to some other process.
func checkServer(client *api.Client) serverState {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	info, err := client.GetInfo(ctx)
	if err == nil {
		if info.Engine != "" {
			return serverReady
		}
		return serverForeign
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return serverDown
	}
	return serverForeign
}

// ensureServer makes sure a server is reachable, starting a background one
// when nothing is listening. The returned stop function, when non-nil,
// kills the background server after the command finishes.
func ensureServer(cfg *config.Config, client *api.Client) (func(), error) {
	switch checkServer(client) {
	case serverReady:
		return nil, nil
	case serverForeign:
		return nil, fmt.Errorf("%s is answering but is not a jsonblob server", cfg.APIURL)
	}

	cmd, err := spawnServer(cfg)
	if err != nil {
		return nil, err
	}
	stop := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	deadline := time.Now().Add(startupDeadline)
	for time.Now().Before(deadline) {
		switch checkServer(client) {
		case serverReady:
			return stop, nil
		case serverForeign:
			stop()
			return nil, fmt.Errorf("%s was claimed by another process during startup", cfg.APIURL)
		}
		time.Sleep(startupPoll)
	}

	stop()
	return nil, fmt.Errorf("server at %s did not come up within %s", cfg.APIURL, startupDeadline)
}

// spawnServer starts this binary's srv command with the caller's storage
// selection so the background server opens the same database.
func spawnServer(cfg *config.Config) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	env := append(os.Environ(),
		"JSONBLOB_API_URL="+cfg.APIURL,
		"JSONBLOB_DB="+cfg.DBPath,
		"JSONBLOB_ENGINE="+cfg.Engine,
	)
	if cfg.Mongo.URI != "" {
		env = append(env, "JSONBLOB_MONGO_URI="+cfg.Mongo.URI)
	}

	cmd := exec.Command(exe, "srv")
	cmd.Env = env
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start background server: %w", err)
	}
	return cmd, nil
}
