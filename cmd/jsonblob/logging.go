package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"jsonblob/internal/config"
)

const logLevelEnvKey = "JSONBLOB_LOG_LEVEL"

// levelNames maps accepted level spellings onto slog levels. Numeric slog
// offsets are also accepted for finer control.
var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// setupLogging installs the process-wide slog logger. The level comes from
// the --log-level flag, then JSONBLOB_LOG_LEVEL, then the config file, in
// that order. A bad flag value aborts the command; a bad env or config
// value degrades to the default level with a warning so the command itself
// still runs.
func setupLogging(flagLevel string, cfg *config.Config) (string, error) {
	candidates := []struct {
		source string
		value  string
	}{
		{"flag", flagLevel},
		{"env " + logLevelEnvKey, os.Getenv(logLevelEnvKey)},
		{"config", cfg.LogLevel},
	}

	for _, c := range candidates {
		value := strings.TrimSpace(c.value)
		if value == "" {
			continue
		}

		level, err := parseLogLevel(value)
		if err != nil {
			if c.source == "flag" {
				return "", fmt.Errorf("invalid --log-level %q", c.value)
			}
			installLogger(levelNames[config.DefaultLogLevel])
			return fmt.Sprintf("warning: ignoring bad %s level %q; using %s", c.source, c.value, config.DefaultLogLevel), nil
		}

		installLogger(level)
		return "", nil
	}

	installLogger(levelNames[config.DefaultLogLevel])
	return "", nil
}

func parseLogLevel(value string) (slog.Level, error) {
	if level, ok := levelNames[strings.ToLower(value)]; ok {
		return level, nil
	}
	if offset, err := strconv.Atoi(value); err == nil {
		return slog.Level(offset), nil
	}
	return 0, fmt.Errorf("unknown log level %q", value)
}

func installLogger(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
