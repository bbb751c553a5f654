// Package config handles loading and parsing the portal configuration.
// It supports two sources for the file location (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env:"..." tag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends understood by StorageConfig.Backend.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`
	API        APIConfig     `yaml:"api"`
	Storage    StorageConfig `yaml:"storage"`
	Redis      RedisConfig   `yaml:"redis"`
	Cookie     CookieConfig  `yaml:"cookie"`
	Guard      GuardConfig   `yaml:"guard"`
}

// HTTPServer holds settings specific to the portal's own HTTP server.
type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// APIConfig points the portal at the remote exam REST API.
type APIConfig struct {
	StudentBaseURL string `yaml:"student_base_url" env:"API_STUDENT_BASE_URL" env-default:"http://localhost:8000/api"`
	AdminBaseURL   string `yaml:"admin_base_url" env:"API_ADMIN_BASE_URL" env-default:"http://localhost:8000/api"`

	// Timeout bounds every outbound call. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"0s"`
}

// StorageConfig selects where browser profiles keep their tokens.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"sqlite"`

	// Path is the filesystem path to the SQLite .db file.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/portal.db"`
}

type RedisConfig struct {
	Addr     string `yaml:"address" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type CookieConfig struct {
	Secure bool `yaml:"secure" env:"COOKIE_SECURE" env-default:"false"`
}

// GuardConfig tunes the route guards.
type GuardConfig struct {
	// Wait is how long a guarded page waits for the first auth check
	// before it renders the loading placeholder instead.
	Wait time.Duration `yaml:"wait" env:"GUARD_WAIT" env-default:"2s"`
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is not set: use --config flag or CONFIG_PATH env var")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (valid: sqlite, redis, memory)", c.Storage.Backend)
	}
	if c.API.StudentBaseURL == "" || c.API.AdminBaseURL == "" {
		return errors.New("api base urls must not be empty")
	}
	return nil
}

// MustLoad reads, validates, and returns the portal config.
// If it returns, the config is valid; otherwise the process exits.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
