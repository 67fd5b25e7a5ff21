package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// Test Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default server host '0.0.0.0', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 4444 {
		t.Errorf("Expected default server port 4444, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Debug != false {
		t.Errorf("Expected default debug false, got %v", cfg.Server.Debug)
	}

	// Test Grid defaults
	if cfg.Grid.WorkersFile != "workers.yaml" {
		t.Errorf("Expected default workers file 'workers.yaml', got '%s'", cfg.Grid.WorkersFile)
	}
	if cfg.Grid.HealthCheckInterval != 30*time.Second {
		t.Errorf("Expected default health check interval 30s, got %v", cfg.Grid.HealthCheckInterval)
	}
	if cfg.Grid.HealthCheckTimeout != 5*time.Second {
		t.Errorf("Expected default health check timeout 5s, got %v", cfg.Grid.HealthCheckTimeout)
	}
	if cfg.Grid.SessionTimeout != 60*time.Second {
		t.Errorf("Expected default session timeout 60s, got %v", cfg.Grid.SessionTimeout)
	}

	// Test Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging format 'json', got '%s'", cfg.Logging.Format)
	}

	// Test Security defaults
	if cfg.Security.RateLimit != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.Security.RateLimit)
	}
	if cfg.Security.AuthEnabled != false {
		t.Errorf("Expected default auth_enabled false, got %v", cfg.Security.AuthEnabled)
	}
	if cfg.Security.JWTExpiration != 24*time.Hour {
		t.Errorf("Expected default jwt expiration 24h, got %v", cfg.Security.JWTExpiration)
	}
}

// TestLoadFromFile tests loading configuration from a YAML file.
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  host: 127.0.0.1
  port: 9090
grid:
  workers_file: /etc/gridium/workers.yaml
  health_check_interval: 10s
security:
  auth_enabled: true
  rate_limit: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected server host '127.0.0.1', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected server port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Grid.WorkersFile != "/etc/gridium/workers.yaml" {
		t.Errorf("Expected workers file '/etc/gridium/workers.yaml', got '%s'", cfg.Grid.WorkersFile)
	}
	if cfg.Grid.HealthCheckInterval != 10*time.Second {
		t.Errorf("Expected health check interval 10s, got %v", cfg.Grid.HealthCheckInterval)
	}
	if !cfg.Security.AuthEnabled {
		t.Error("Expected auth_enabled true")
	}
	if cfg.Security.RateLimit != 50 {
		t.Errorf("Expected rate limit 50, got %d", cfg.Security.RateLimit)
	}
	// Untouched sections keep their defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
}

// TestEnvironmentOverride tests that GD_ environment variables override files.
func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("GD_SERVER_PORT", "5555")
	t.Setenv("GD_GRID_HEALTH_CHECK_INTERVAL", "7s")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 5555 {
		t.Errorf("Expected env override port 5555, got %d", cfg.Server.Port)
	}
	if cfg.Grid.HealthCheckInterval != 7*time.Second {
		t.Errorf("Expected env override interval 7s, got %v", cfg.Grid.HealthCheckInterval)
	}
}

// TestValidation tests that invalid configurations are rejected.
func TestValidation(t *testing.T) {
	t.Run("invalid port", func(t *testing.T) {
		t.Setenv("GD_SERVER_PORT", "70000")
		if _, err := Load("nonexistent.yaml"); err == nil {
			t.Error("Expected error for port 70000")
		}
	})

	t.Run("tls without cert", func(t *testing.T) {
		t.Setenv("GD_SERVER_TLS_ENABLED", "true")
		if _, err := Load("nonexistent.yaml"); err == nil {
			t.Error("Expected error for TLS without cert/key")
		}
	})
}

// TestLoadWorkers tests parsing and validating the workers file.
func TestLoadWorkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workers.yaml")

	content := `
workers:
  - id: worker-1
    url: http://10.0.0.7:4441
    token: secret-1
  - id: worker-2
    url: http://10.0.0.8:4441
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write workers file: %v", err)
	}

	workers, err := LoadWorkers(path)
	if err != nil {
		t.Fatalf("Failed to load workers: %v", err)
	}

	if len(workers) != 2 {
		t.Fatalf("Expected 2 workers, got %d", len(workers))
	}
	if workers[0].ID != "worker-1" {
		t.Errorf("Expected first worker id 'worker-1', got '%s'", workers[0].ID)
	}
	if workers[0].Token != "secret-1" {
		t.Errorf("Expected first worker token 'secret-1', got '%s'", workers[0].Token)
	}
	if workers[1].Token != "" {
		t.Errorf("Expected second worker token empty, got '%s'", workers[1].Token)
	}
}

// TestLoadWorkersErrors tests workers file failure modes.
func TestLoadWorkersErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadWorkers(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("Expected error for missing workers file")
		}
	})

	t.Run("missing url", func(t *testing.T) {
		path := filepath.Join(dir, "no-url.yaml")
		os.WriteFile(path, []byte("workers:\n  - id: worker-1\n"), 0o644)
		if _, err := LoadWorkers(path); err == nil {
			t.Error("Expected error for worker without url")
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		path := filepath.Join(dir, "dup.yaml")
		content := `
workers:
  - id: worker-1
    url: http://10.0.0.7:4441
  - id: worker-1
    url: http://10.0.0.8:4441
`
		os.WriteFile(path, []byte(content), 0o644)
		if _, err := LoadWorkers(path); err == nil {
			t.Error("Expected error for duplicate worker id")
		}
	})

	t.Run("empty list", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		os.WriteFile(path, []byte("workers: []\n"), 0o644)
		workers, err := LoadWorkers(path)
		if err != nil {
			t.Fatalf("Unexpected error for empty workers list: %v", err)
		}
		if len(workers) != 0 {
			t.Errorf("Expected 0 workers, got %d", len(workers))
		}
	})
}
