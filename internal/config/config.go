// Package config loads the hf command configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BuildConfig configures package builds.
type BuildConfig struct {
	Compression string        `yaml:"compression"`
	Workers     int64         `yaml:"workers"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CacheConfig configures the block cache in front of remote packages.
type CacheConfig struct {
	Bytes     int64 `yaml:"bytes"`
	BlockSize int64 `yaml:"block_size"`
}

// MinIOConfig holds MinIO connection details. Credentials are read from the
// named environment variables.
type MinIOConfig struct {
	AccessKeyEnv string `yaml:"access_key_env"`
	SecretKeyEnv string `yaml:"secret_key_env"`
	Secure       bool   `yaml:"secure"`
}

// RemoteConfig selects the blob store packages are published to and read from.
type RemoteConfig struct {
	Type     string       `yaml:"type"` // "s3" or "minio"
	Bucket   string       `yaml:"bucket"`
	Prefix   string       `yaml:"prefix"`
	Region   string       `yaml:"region"`
	Endpoint string       `yaml:"endpoint"`
	MinIO    *MinIOConfig `yaml:"minio,omitempty"`
}

// RegistryConfig configures the DynamoDB version registry. An empty table
// disables registration.
type RegistryConfig struct {
	Table string `yaml:"table"`
}

// Config is the root configuration structure.
type Config struct {
	LogLevel           string         `yaml:"log_level"`
	LogFormat          string         `yaml:"log_format"`
	MaterializeTimeout time.Duration  `yaml:"materialize_timeout"`
	IOBytesPerSec      int64          `yaml:"io_bytes_per_sec"`
	Build              BuildConfig    `yaml:"build"`
	Cache              CacheConfig    `yaml:"cache"`
	Remote             RemoteConfig   `yaml:"remote"`
	Registry           RegistryConfig `yaml:"registry"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	return cfg, cfg.Validate()
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// DefaultPath returns ./hf.yaml if present, else ~/.config/hf/config.yaml.
func DefaultPath() string {
	if _, err := os.Stat("hf.yaml"); err == nil {
		return "hf.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "hf.yaml"
	}
	return filepath.Join(home, ".config", "hf", "config.yaml")
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	switch c.Remote.Type {
	case "", "s3", "minio":
	default:
		return fmt.Errorf("config: unknown remote type %q", c.Remote.Type)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("config: build.workers must be positive")
	}
	if c.IOBytesPerSec < 0 || c.Cache.Bytes < 0 {
		return fmt.Errorf("config: negative limit")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Build.Compression == "" {
		cfg.Build.Compression = "zstd"
	}
	if cfg.Build.Workers == 0 {
		cfg.Build.Workers = 4
	}
	if cfg.Remote.Type == "minio" {
		if cfg.Remote.MinIO == nil {
			cfg.Remote.MinIO = &MinIOConfig{}
		}
		if cfg.Remote.MinIO.AccessKeyEnv == "" {
			cfg.Remote.MinIO.AccessKeyEnv = "MINIO_ACCESS_KEY"
		}
		if cfg.Remote.MinIO.SecretKeyEnv == "" {
			cfg.Remote.MinIO.SecretKeyEnv = "MINIO_SECRET_KEY"
		}
	}
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("HF_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("HF_BUCKET"); ok {
		cfg.Remote.Bucket = v
	}
	if v, ok := os.LookupEnv("HF_PREFIX"); ok {
		cfg.Remote.Prefix = v
	}
	if v, ok := os.LookupEnv("HF_ENDPOINT"); ok {
		cfg.Remote.Endpoint = v
	}
	if v, ok := os.LookupEnv("HF_REGISTRY_TABLE"); ok {
		cfg.Registry.Table = v
	}
	if v, ok := os.LookupEnv("HF_IO_BYTES_PER_SEC"); ok {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.IOBytesPerSec = n
		}
	}
}

// MinIOCredentials resolves the MinIO access and secret keys from the
// environment.
func (c *Config) MinIOCredentials() (string, string, error) {
	m := c.Remote.MinIO
	if m == nil {
		return "", "", errors.New("config: remote.minio is not set")
	}
	access, secret := os.Getenv(m.AccessKeyEnv), os.Getenv(m.SecretKeyEnv)
	if access == "" || secret == "" {
		return "", "", fmt.Errorf("config: %s and %s must be set", m.AccessKeyEnv, m.SecretKeyEnv)
	}
	return access, secret, nil
}
