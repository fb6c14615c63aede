package config

import "time"

// Config represents the complete blockgate configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	API     APIConfig     `yaml:"api,omitempty"`

	// Checksum is the BLAKE3 hash of the raw config file, computed at load
	// time. Not part of the YAML document.
	Checksum string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name         string        `yaml:"name"`
	LogLevel     string        `yaml:"log_level"`
	PIDFile      string        `yaml:"pid_file,omitempty"`
	DispatchWait time.Duration `yaml:"dispatch_wait"`
}

// LedgerConfig defines command ledger sizing.
type LedgerConfig struct {
	HistorySize int `yaml:"history_size"`
	QueueSize   int `yaml:"queue_size"`
}

// BridgeConfig defines the executor-facing WebSocket server settings.
type BridgeConfig struct {
	Listen string `yaml:"listen"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings.
type APIAuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// Defaults returns a Config populated with default values.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:         "blockgate",
			LogLevel:     "INFO",
			DispatchWait: time.Second,
		},
		Ledger: LedgerConfig{
			HistorySize: 1000,
			QueueSize:   1024,
		},
		Bridge: BridgeConfig{
			Listen: ":8765",
		},
		API: APIConfig{
			Enabled: true,
			Listen:  ":8000",
		},
	}
}
