package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file. Environment variable
// references of the form ${VAR} are expanded before parsing.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	expanded := expandEnvVars(data)

	cfg := Defaults()
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", absPath, err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Fingerprint the raw file so operators can tell which config a running
	// instance was started with.
	sum := blake3.Sum256(data)
	cfg.Checksum = hex.EncodeToString(sum[:])

	return cfg, nil
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// applyDefaults fills zero values left after unmarshal with defaults.
// yaml.Unmarshal into a pre-populated struct keeps non-zero defaults for
// absent keys, but explicit zero values (e.g. history_size: 0) are rewritten.
func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.Service.Name == "" {
		cfg.Service.Name = d.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = d.Service.LogLevel
	}
	if cfg.Service.DispatchWait <= 0 {
		cfg.Service.DispatchWait = d.Service.DispatchWait
	}
	if cfg.Ledger.HistorySize <= 0 {
		cfg.Ledger.HistorySize = d.Ledger.HistorySize
	}
	if cfg.Ledger.QueueSize <= 0 {
		cfg.Ledger.QueueSize = d.Ledger.QueueSize
	}
	if cfg.Bridge.Listen == "" {
		cfg.Bridge.Listen = d.Bridge.Listen
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = d.API.Listen
	}
}

// PIDLockPath returns the pid lock location for this config, defaulting to the
// system temp directory when unset.
func (c *Config) PIDLockPath() string {
	if c.Service.PIDFile != "" {
		return c.Service.PIDFile
	}
	return filepath.Join(os.TempDir(), c.Service.Name+".pid")
}

func validate(cfg *Config) error {
	if cfg.Bridge.Listen == cfg.API.Listen && cfg.API.Enabled {
		return fmt.Errorf("bridge and api cannot share listen address %q", cfg.Bridge.Listen)
	}
	if cfg.API.Enabled && cfg.API.Auth.APIKey == "" {
		return fmt.Errorf("api.auth.api_key is required when the API is enabled")
	}
	return nil
}
