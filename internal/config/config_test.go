package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default server host '0.0.0.0', got '%s'", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected default read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Debug {
		t.Errorf("Expected default debug false, got %v", cfg.Server.Debug)
	}

	// Storage defaults
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Expected default backend %q, got %q", BackendMemory, cfg.Storage.Backend)
	}
	if cfg.CouchDB.URL != "http://localhost:5984" {
		t.Errorf("Expected default couchdb url 'http://localhost:5984', got '%s'", cfg.CouchDB.URL)
	}
	if cfg.CouchDB.Database != "hostjobs" {
		t.Errorf("Expected default database 'hostjobs', got '%s'", cfg.CouchDB.Database)
	}

	// Dispatch defaults
	if cfg.Dispatch.Concurrency != 8 {
		t.Errorf("Expected default dispatch concurrency 8, got %d", cfg.Dispatch.Concurrency)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging format 'json', got '%s'", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default logging output 'stdout', got '%s'", cfg.Logging.Output)
	}

	// Security defaults
	if cfg.Security.RateLimit != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.Security.RateLimit)
	}
	if len(cfg.Security.AllowedOrigins) != 1 || cfg.Security.AllowedOrigins[0] != "*" {
		t.Errorf("Expected default allowed origins ['*'], got %v", cfg.Security.AllowedOrigins)
	}
	if cfg.Security.AuthEnabled {
		t.Errorf("Expected default auth_enabled false, got %v", cfg.Security.AuthEnabled)
	}
	if cfg.Security.JWTExpiration != 24*time.Hour {
		t.Errorf("Expected default jwt expiration 24h, got %v", cfg.Security.JWTExpiration)
	}

	// Client defaults
	if cfg.Client.APIURL != "http://localhost:8080" {
		t.Errorf("Expected default api url 'http://localhost:8080', got '%s'", cfg.Client.APIURL)
	}
	if cfg.Client.Timeout != 30*time.Second {
		t.Errorf("Expected default client timeout 30s, got %v", cfg.Client.Timeout)
	}
}

// TestDefaultMatchesLoad tests that Default agrees with Load without sources.
func TestDefaultMatchesLoad(t *testing.T) {
	d := Default()
	if d.Server.Port != 8080 || d.Storage.Backend != BackendMemory || d.Dispatch.Concurrency != 8 {
		t.Errorf("Unexpected defaults: %+v", d)
	}
}

// TestLoadFile tests that values from a YAML file override the defaults.
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9191
storage:
  backend: couchdb
couchdb:
  database: lab_hosts
dispatch:
  concurrency: 3
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Expected port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != BackendCouchDB {
		t.Errorf("Expected backend couchdb, got %q", cfg.Storage.Backend)
	}
	if cfg.CouchDB.Database != "lab_hosts" {
		t.Errorf("Expected database 'lab_hosts', got '%s'", cfg.CouchDB.Database)
	}
	if cfg.Dispatch.Concurrency != 3 {
		t.Errorf("Expected concurrency 3, got %d", cfg.Dispatch.Concurrency)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected format 'text', got '%s'", cfg.Logging.Format)
	}
	// untouched keys keep their defaults
	if cfg.CouchDB.URL != "http://localhost:5984" {
		t.Errorf("Expected default couchdb url, got '%s'", cfg.CouchDB.URL)
	}
}

// TestLoadInvalidFile tests that a broken file is reported.
func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [port"), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed config file, got nil")
	}
}

// TestValidation tests the configuration validation logic.
func TestValidation(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Storage:  StorageConfig{Backend: BackendMemory},
			Dispatch: DispatchConfig{Concurrency: 4},
			Logging:  LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
		errMsg    string
	}{
		{
			name:   "valid configuration",
			mutate: func(*Config) {},
		},
		{
			name:      "invalid port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name:      "invalid port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			expectErr: true,
			errMsg:    "invalid server port",
		},
		{
			name:      "unknown backend",
			mutate:    func(c *Config) { c.Storage.Backend = "etcd" },
			expectErr: true,
			errMsg:    "unknown storage backend",
		},
		{
			name: "couchdb without url",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendCouchDB
				c.CouchDB = CouchDBConfig{Database: "hostjobs"}
			},
			expectErr: true,
			errMsg:    "couchdb url is required",
		},
		{
			name: "couchdb without database",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendCouchDB
				c.CouchDB = CouchDBConfig{URL: "http://localhost:5984"}
			},
			expectErr: true,
			errMsg:    "couchdb database is required",
		},
		{
			name:      "memory backend ignores couchdb settings",
			mutate:    func(c *Config) { c.CouchDB = CouchDBConfig{} },
			expectErr: false,
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Dispatch.Concurrency = 0 },
			expectErr: true,
			errMsg:    "dispatch concurrency must be positive",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			expectErr: true,
			errMsg:    "unknown logging level",
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			expectErr: true,
			errMsg:    "unknown logging format",
		},
		{
			name: "auth without secret",
			mutate: func(c *Config) {
				c.Security.AuthEnabled = true
				c.Security.JWTSecret = ""
			},
			expectErr: true,
			errMsg:    "jwt secret is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validate(c)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

// TestEnvironmentVariableOverride tests that environment variables override config values.
func TestEnvironmentVariableOverride(t *testing.T) {
	t.Setenv("HJ_SERVER_PORT", "9999")
	t.Setenv("HJ_SERVER_HOST", "127.0.0.1")
	t.Setenv("HJ_SERVER_DEBUG", "true")
	t.Setenv("HJ_DISPATCH_CONCURRENCY", "16")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999 from environment, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host '127.0.0.1' from environment, got '%s'", cfg.Server.Host)
	}
	if !cfg.Server.Debug {
		t.Errorf("Expected debug true from environment, got %v", cfg.Server.Debug)
	}
	if cfg.Dispatch.Concurrency != 16 {
		t.Errorf("Expected concurrency 16 from environment, got %d", cfg.Dispatch.Concurrency)
	}
}

// TestEnvironmentVariableInvalid tests that invalid env values are rejected by validation.
func TestEnvironmentVariableInvalid(t *testing.T) {
	t.Setenv("HJ_STORAGE_BACKEND", "etcd")

	if _, err := Load("nonexistent.yaml"); err == nil {
		t.Error("Expected error for unknown backend from environment, got nil")
	}
}

// TestGet tests the global config getter.
func TestGet(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	retrieved := Get()
	if retrieved == nil {
		t.Fatal("Get() returned nil")
	}
	if retrieved.Server.Port != 8080 {
		t.Errorf("Expected port 8080 from Get(), got %d", retrieved.Server.Port)
	}
}
