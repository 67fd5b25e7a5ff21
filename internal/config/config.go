// Package config provides configuration management for Gridium.
//
// Configuration is loaded in the following order (later sources override
// earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml,
//     ~/.gridium/config.yaml, /etc/gridium/config.yaml)
//  3. .env files
//  4. Environment variables (GD_ prefix)
//
// Environment variables use the GD_ prefix with underscores for nested
// keys:
//   - GD_SERVER_PORT=9090
//   - GD_GRID_HEALTH_CHECK_INTERVAL=10s
//   - GD_SECURITY_AUTH_ENABLED=true
//
// The worker pool itself is described in a separate YAML file (see
// LoadWorkers), pointed at by grid.workers_file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gridium.
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server"`

	// Grid contains scheduler and health-monitor settings
	Grid GridConfig `mapstructure:"grid"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging"`

	// Security contains auth and rate limiting settings
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the server listen port (default: 4444)
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Debug enables debug logging and echo debug mode
	Debug bool `mapstructure:"debug"`

	// TLSEnabled enables HTTPS
	TLSEnabled bool `mapstructure:"tls_enabled"`

	// TLSCert is the path to the TLS certificate file
	TLSCert string `mapstructure:"tls_cert"`

	// TLSKey is the path to the TLS private key file
	TLSKey string `mapstructure:"tls_key"`
}

// GridConfig contains scheduler and health-monitor settings.
type GridConfig struct {
	// WorkersFile is the YAML file listing the workers of this grid
	WorkersFile string `mapstructure:"workers_file"`

	// HealthCheckInterval is how often every host is refreshed
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`

	// HealthCheckTimeout bounds a single worker health probe
	HealthCheckTimeout time.Duration `mapstructure:"health_check_timeout"`

	// SessionTimeout bounds a session creation call against a worker
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`

	// Output is the log output destination (stdout, file)
	Output string `mapstructure:"output"`
}

// SecurityConfig contains auth and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AuthEnabled enables JWT authentication for API callers
	AuthEnabled bool `mapstructure:"auth_enabled"`

	// JWTSecret is the secret key for signing caller tokens
	JWTSecret string `mapstructure:"jwt_secret"`

	// JWTExpiration is the caller token expiration duration
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`

	// AgentTokenSecret is the secret key for worker-agent tokens
	AgentTokenSecret string `mapstructure:"agent_token_secret"`
}

// WorkerEntry describes one worker of the grid in the workers file.
type WorkerEntry struct {
	// ID is the worker's stable unique identifier
	ID string `yaml:"id" validate:"required"`

	// URL is the worker agent's API root
	URL string `yaml:"url" validate:"required,url"`

	// Token is an optional bearer token for the worker agent API
	Token string `yaml:"token"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.gridium")
		v.AddConfigPath("/etc/gridium")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("GD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadWorkers reads and validates the workers file. A missing file is an
// error; an empty list is not (a grid can start with zero workers and have
// them registered later).
func LoadWorkers(path string) ([]WorkerEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workers file: %w", err)
	}

	var doc struct {
		Workers []WorkerEntry `yaml:"workers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing workers file %s: %w", path, err)
	}

	validate := validator.New()
	seen := make(map[string]bool, len(doc.Workers))
	for i, entry := range doc.Workers {
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("workers file %s entry %d: %w", path, i, err)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("workers file %s: duplicate worker id %q", path, entry.ID)
		}
		seen[entry.ID] = true
	}
	return doc.Workers, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 4444)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.tls_enabled", false)

	v.SetDefault("grid.workers_file", "workers.yaml")
	v.SetDefault("grid.health_check_interval", "30s")
	v.SetDefault("grid.health_check_timeout", "5s")
	v.SetDefault("grid.session_timeout", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.auth_enabled", false)
	v.SetDefault("security.jwt_secret", "change-me-in-production")
	v.SetDefault("security.jwt_expiration", "24h")
	v.SetDefault("security.agent_token_secret", "change-me-in-production")
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if cfg.Grid.WorkersFile == "" {
		return fmt.Errorf("grid workers_file is required")
	}
	if cfg.Grid.HealthCheckInterval <= 0 {
		return fmt.Errorf("grid health_check_interval must be positive")
	}
	if cfg.Server.TLSEnabled && (cfg.Server.TLSCert == "" || cfg.Server.TLSKey == "") {
		return fmt.Errorf("tls_cert and tls_key are required when tls is enabled")
	}

	return nil
}

// Get returns the last configuration loaded by Load.
func Get() *Config {
	return cfg
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
