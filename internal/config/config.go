package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tasktrack/internal/api"
)

const (
	FileName = "tasktrack.yml"

	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"

	DefaultBaseURL   = api.DefaultBaseURL
	DefaultWebAddr   = "127.0.0.1:8080"
	DefaultRedisAddr = "localhost:6379"
	DefaultPrefix    = "tasktrack:"
)

// Config models tasktrack.yml.
type Config struct {
	API struct {
		BaseURL string `yaml:"base_url" json:"base_url"`
	} `yaml:"api" json:"api"`
	Storage struct {
		Driver string      `yaml:"driver" json:"driver"`
		Redis  RedisConfig `yaml:"redis" json:"redis"`
	} `yaml:"storage" json:"storage"`
	Web struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"web" json:"web"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password,omitempty" json:"-"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with tt config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	cfg, err := Load(workspace)
	if err != nil {
		if _, statErr := os.Stat(Path(workspace)); os.IsNotExist(statErr) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil {
			return fmt.Errorf("config.api.base_url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config.api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
		}
	}
	switch c.Storage.Driver {
	case "", DriverSQLite, DriverMemory:
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("config.storage.redis.addr is required for the redis driver")
		}
		if c.Storage.Redis.DB < 0 {
			return fmt.Errorf("config.storage.redis.db must not be negative")
		}
	default:
		return fmt.Errorf("config.storage.driver must be one of sqlite, redis, memory; got %q", c.Storage.Driver)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Fields left out
// keep their defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write stores the default config in workspace unless one already exists.
func Write(workspace string, force bool) (string, error) {
	path := Path(workspace)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config %s already exists; pass --force to overwrite", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, err
	}
	return path, os.WriteFile(path, []byte(GenerateDefault()), 0o644)
}

const defaultTemplate = `api:
  base_url: ` + DefaultBaseURL + `

storage:
  # sqlite keeps the session in .tasktrack/tasktrack.db; memory forgets it on exit.
  driver: sqlite
  redis:
    addr: ` + DefaultRedisAddr + `
    db: 0
    prefix: "` + DefaultPrefix + `"

web:
  addr: ` + DefaultWebAddr + `
`
