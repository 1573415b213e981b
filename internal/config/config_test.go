package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	freq, err := cfg.CleanupFrequencyDuration()
	if err != nil {
		t.Fatalf("cleanup frequency: %v", err)
	}
	if freq != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", freq)
	}

	ttl, err := cfg.BlobAccessTTLDuration()
	if err != nil {
		t.Fatalf("access ttl: %v", err)
	}
	if ttl != 90*24*time.Hour {
		t.Fatalf("expected 90 days, got %v", ttl)
	}
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	cfg := Default()
	cfg.Engine = "dynamo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

func TestValidateMongoRequiresURI(t *testing.T) {
	cfg := Default()
	cfg.Engine = EngineMongo
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for mongo engine without uri")
	}

	cfg.Mongo.URI = "mongodb://127.0.0.1:27017"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsBadDurations(t *testing.T) {
	cfg := Default()
	cfg.CleanupFrequency = "soon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unparseable cleanup_frequency")
	}

	cfg = Default()
	cfg.BlobAccessTTL = "-1h"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative blob_access_ttl")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
api_url = "http://127.0.0.1:9999"
engine = "sqlite"
cleanup_frequency = "30m"

[redis]
enabled = true
addr = "127.0.0.1:6380"
`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configDirEnvKey, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9999" {
		t.Fatalf("expected api_url from file, got %q", cfg.APIURL)
	}
	if cfg.CleanupFrequency != "30m" {
		t.Fatalf("expected cleanup_frequency 30m, got %q", cfg.CleanupFrequency)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "127.0.0.1:6380" {
		t.Fatalf("expected redis section from file, got %+v", cfg.Redis)
	}
	// Unset keys keep their defaults.
	if cfg.BlobAccessTTL != DefaultBlobAccessTTL {
		t.Fatalf("expected default access ttl, got %q", cfg.BlobAccessTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv("JSONBLOB_API_URL", "http://127.0.0.1:7412")
	t.Setenv("JSONBLOB_ENGINE", "mongo")
	t.Setenv("JSONBLOB_MONGO_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("JSONBLOB_REDIS_ADDR", "127.0.0.1:6390")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:7412" {
		t.Fatalf("expected env api_url, got %q", cfg.APIURL)
	}
	if cfg.Engine != EngineMongo {
		t.Fatalf("expected env engine, got %q", cfg.Engine)
	}
	if cfg.Mongo.URI != "mongodb://127.0.0.1:27017" {
		t.Fatalf("expected env mongo uri, got %q", cfg.Mongo.URI)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "127.0.0.1:6390" {
		t.Fatalf("expected env redis addr to enable the cache, got %+v", cfg.Redis)
	}
}

func TestSetKeyWritesNestedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)

	if err := SetKey(path, "engine", "mongo"); err != nil {
		t.Fatalf("set engine: %v", err)
	}
	if err := SetKey(path, "mongo.uri", "mongodb://127.0.0.1:27017"); err != nil {
		t.Fatalf("set mongo.uri: %v", err)
	}
	if err := SetKey(path, "redis.enabled", "true"); err != nil {
		t.Fatalf("set redis.enabled: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Engine != EngineMongo {
		t.Fatalf("expected engine mongo, got %q", cfg.Engine)
	}
	if cfg.Mongo.URI != "mongodb://127.0.0.1:27017" {
		t.Fatalf("expected mongo uri, got %q", cfg.Mongo.URI)
	}
	if !cfg.Redis.Enabled {
		t.Fatal("expected redis.enabled true")
	}
}

func TestSetKeyValidatesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)

	if err := SetKey(path, "bogus_key", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := SetKey(path, "engine", "dynamo"); err == nil {
		t.Fatal("expected error for unknown engine value")
	}
	if err := SetKey(path, "cleanup_frequency", "often"); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
	if err := SetKey(path, "redis.enabled", "sometimes"); err == nil {
		t.Fatal("expected error for non-boolean value")
	}
}
