package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:7411"
	DefaultEngine     = "sqlite"
	DefaultDBFileName = ".jsonblob.db"

	DefaultCleanupFrequency = "2h"
	DefaultBlobAccessTTL    = "2160h" // 90 days
	DefaultLogLevel         = "info"

	DefaultMongoDatabase   = "jsonblob"
	DefaultMongoCollection = "blobs"

	DefaultRedisAddr = "127.0.0.1:6379"
	DefaultRedisTTL  = "1h"

	EngineSQLite = "sqlite"
	EngineMongo  = "mongo"

	configDirEnvKey = "JSONBLOB_CONFIG_DIR"
	configFileName  = ".jsonblob.toml"
)

// MongoConfig configures the MongoDB storage engine.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// RedisConfig configures the optional blob read cache.
type RedisConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
	TTL     string `toml:"ttl"`
}

// Config defines runtime configuration for jsonblob.
type Config struct {
	APIURL           string      `toml:"api_url"`
	Engine           string      `toml:"engine"`
	DBPath           string      `toml:"db_path"`
	CleanupFrequency string      `toml:"cleanup_frequency"`
	BlobAccessTTL    string      `toml:"blob_access_ttl"`
	LogLevel         string      `toml:"log_level"`
	AdminTokenHash   string      `toml:"admin_token_hash"`
	Mongo            MongoConfig `toml:"mongo"`
	Redis            RedisConfig `toml:"redis"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:           DefaultAPIURL,
		Engine:           DefaultEngine,
		DBPath:           "",
		CleanupFrequency: DefaultCleanupFrequency,
		BlobAccessTTL:    DefaultBlobAccessTTL,
		LogLevel:         "",
		Mongo: MongoConfig{
			Database:   DefaultMongoDatabase,
			Collection: DefaultMongoCollection,
		},
		Redis: RedisConfig{
			Addr: DefaultRedisAddr,
			TTL:  DefaultRedisTTL,
		},
	}
}

// CleanupFrequencyDuration parses the cleanup period.
func (c *Config) CleanupFrequencyDuration() (time.Duration, error) {
	return parsePositiveDuration("cleanup_frequency", c.CleanupFrequency)
}

// BlobAccessTTLDuration parses the access TTL.
func (c *Config) BlobAccessTTLDuration() (time.Duration, error) {
	return parsePositiveDuration("blob_access_ttl", c.BlobAccessTTL)
}

// RedisTTLDuration parses the cache TTL.
func (c *Config) RedisTTLDuration() (time.Duration, error) {
	return parsePositiveDuration("redis.ttl", c.Redis.TTL)
}

// Validate checks engine selection and duration fields.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineSQLite, EngineMongo:
	default:
		return fmt.Errorf("unknown engine %q (expected %s or %s)", c.Engine, EngineSQLite, EngineMongo)
	}
	if c.Engine == EngineMongo && strings.TrimSpace(c.Mongo.URI) == "" {
		return fmt.Errorf("mongo.uri is required when engine is %s", EngineMongo)
	}
	if _, err := c.CleanupFrequencyDuration(); err != nil {
		return err
	}
	if _, err := c.BlobAccessTTLDuration(); err != nil {
		return err
	}
	if c.Redis.Enabled {
		if _, err := c.RedisTTLDuration(); err != nil {
			return err
		}
	}
	return nil
}

func parsePositiveDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

// Path returns the path of the config file that Load consults.
func Path() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// Load reads config from the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if apiURL := os.Getenv("JSONBLOB_API_URL"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv("JSONBLOB_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if engine := os.Getenv("JSONBLOB_ENGINE"); engine != "" {
		cfg.Engine = engine
	}
	if uri := os.Getenv("JSONBLOB_MONGO_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if addr := os.Getenv("JSONBLOB_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}

	return &cfg, nil
}

var allowedKeys = []string{
	"api_url",
	"engine",
	"db_path",
	"cleanup_frequency",
	"blob_access_ttl",
	"log_level",
	"admin_token_hash",
	"mongo.uri",
	"mongo.database",
	"mongo.collection",
	"redis.enabled",
	"redis.addr",
	"redis.ttl",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "engine":
		return c.Engine, nil
	case "db_path":
		return c.DBPath, nil
	case "cleanup_frequency":
		return c.CleanupFrequency, nil
	case "blob_access_ttl":
		return c.BlobAccessTTL, nil
	case "log_level":
		return c.LogLevel, nil
	case "admin_token_hash":
		return c.AdminTokenHash, nil
	case "mongo.uri":
		return c.Mongo.URI, nil
	case "mongo.database":
		return c.Mongo.Database, nil
	case "mongo.collection":
		return c.Mongo.Collection, nil
	case "redis.enabled":
		return strconv.FormatBool(c.Redis.Enabled), nil
	case "redis.addr":
		return c.Redis.Addr, nil
	case "redis.ttl":
		return c.Redis.TTL, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "cleanup_frequency", "blob_access_ttl", "redis.ttl":
		if _, err := parsePositiveDuration(key, value); err != nil {
			return nil, err
		}
		return value, nil
	case "engine":
		if value != EngineSQLite && value != EngineMongo {
			return nil, fmt.Errorf("engine must be %s or %s", EngineSQLite, EngineMongo)
		}
		return value, nil
	case "redis.enabled":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
