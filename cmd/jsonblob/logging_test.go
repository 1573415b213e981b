package main

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"jsonblob/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"4", slog.Level(4)},
		{"-4", slog.Level(-4)},
	}
	for _, tc := range cases {
		got, err := parseLogLevel(tc.input)
		if err != nil {
			t.Fatalf("parseLogLevel(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q): expected %v, got %v", tc.input, tc.want, got)
		}
	}

	if _, err := parseLogLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func enabled(level slog.Level) bool {
	return slog.Default().Enabled(context.Background(), level)
}

func TestSetupLoggingPrecedence(t *testing.T) {
	t.Setenv(logLevelEnvKey, "error")
	cfg := &config.Config{LogLevel: "warn"}

	// Flag beats env and config.
	if _, err := setupLogging("debug", cfg); err != nil {
		t.Fatalf("setup with flag: %v", err)
	}
	if !enabled(slog.LevelDebug) {
		t.Fatal("expected flag level debug to win")
	}

	// Env beats config.
	if _, err := setupLogging("", cfg); err != nil {
		t.Fatalf("setup with env: %v", err)
	}
	if enabled(slog.LevelWarn) || !enabled(slog.LevelError) {
		t.Fatal("expected env level error to win over config")
	}

	// Config is the fallback.
	t.Setenv(logLevelEnvKey, "")
	if _, err := setupLogging("", cfg); err != nil {
		t.Fatalf("setup with config: %v", err)
	}
	if enabled(slog.LevelInfo) || !enabled(slog.LevelWarn) {
		t.Fatal("expected config level warn")
	}
}

func TestSetupLoggingDefaultsWhenUnset(t *testing.T) {
	t.Setenv(logLevelEnvKey, "")

	warning, err := setupLogging("", &config.Config{})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if warning != "" {
		t.Fatalf("unexpected warning %q", warning)
	}
	if enabled(slog.LevelDebug) || !enabled(slog.LevelInfo) {
		t.Fatal("expected the default info level")
	}
}

func TestSetupLoggingWarnsOnBadEnv(t *testing.T) {
	t.Setenv(logLevelEnvKey, "bogus")

	warning, err := setupLogging("", &config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(warning, "bogus") {
		t.Fatalf("expected warning naming the bad value, got %q", warning)
	}
	if !enabled(slog.LevelInfo) {
		t.Fatal("expected fallback to the default level")
	}
}

func TestSetupLoggingRejectsBadFlag(t *testing.T) {
	if _, err := setupLogging("bogus", &config.Config{}); err == nil {
		t.Fatal("expected error for invalid flag level")
	}
}
