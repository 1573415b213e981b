package main

import (
	"context"
	"errors"
	"net"

	"jsonblob/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized", "forbidden":
			lines = append(lines, "hint: verify JSONBLOB_ADMIN_TOKEN matches the configured admin_token_hash.")
		case "not_found":
			lines = append(lines, "hint: the blob may have expired; unread blobs are removed after the access TTL.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify JSONBLOB_API_URL points to a jsonblob server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase JSONBLOB_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a jsonblob server is running at JSONBLOB_API_URL.",
			"hint: start a local server manually with: jsonblob srv",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
