// Package config loads server settings from JSON config files, merged
// defaults → global → workspace.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	DefaultBaudRate      = 115200
	DefaultSerialTimeout = 2
	DefaultGateWidth     = 4

	configDirName       = ".arduino-mcp"
	globalConfigDirName = "arduino-mcp"
	configFileName      = "config.json"
)

// Config holds all arduino-mcp settings.
type Config struct {
	// Workspace overrides the working directory for arduino-cli runs.
	// The WORKSPACE environment variable takes precedence over this.
	Workspace string `json:"workspace,omitempty"`
	// CLIBin names the toolchain executable; default "arduino-cli".
	CLIBin string `json:"cli_bin,omitempty"`
	// SerialBaudRate is the monitor-mode default baud rate.
	SerialBaudRate int `json:"serial_baud_rate,omitempty"`
	// SerialTimeoutSeconds is the default serial read deadline.
	SerialTimeoutSeconds float64 `json:"serial_timeout_seconds,omitempty"`
	// CacheTTLSeconds expires port→FQBN cache entries; 0 keeps them for
	// the life of the process.
	CacheTTLSeconds int `json:"cache_ttl_seconds,omitempty"`
	// GateWidth bounds concurrent blocking operations.
	GateWidth int `json:"gate_width,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		SerialBaudRate:       DefaultBaudRate,
		SerialTimeoutSeconds: DefaultSerialTimeout,
		GateWidth:            DefaultGateWidth,
	}
}

// Load reads and merges global and workspace configs.
// Order: defaults → global (~/.config/arduino-mcp/config.json) →
// workspace (<workspaceRoot>/.arduino-mcp/config.json).
func Load(workspaceRoot string) Config {
	cfg := Defaults()

	if home, err := os.UserHomeDir(); err == nil {
		mergeFromFile(&cfg, filepath.Join(home, ".config", globalConfigDirName, configFileName))
	}

	if workspaceRoot != "" {
		mergeFromFile(&cfg, filepath.Join(workspaceRoot, configDirName, configFileName))
	}

	return cfg
}

// Save writes the config to the workspace .arduino-mcp/config.json, or to
// the global config if global is true.
func Save(cfg Config, workspaceRoot string, global bool) error {
	var dir string
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".config", globalConfigDirName)
	} else {
		dir = filepath.Join(workspaceRoot, configDirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, configFileName), data, 0o644)
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return
	}

	if fileCfg.Workspace != "" {
		cfg.Workspace = fileCfg.Workspace
	}
	if fileCfg.CLIBin != "" {
		cfg.CLIBin = fileCfg.CLIBin
	}
	if fileCfg.SerialBaudRate != 0 {
		cfg.SerialBaudRate = fileCfg.SerialBaudRate
	}
	if fileCfg.SerialTimeoutSeconds != 0 {
		cfg.SerialTimeoutSeconds = fileCfg.SerialTimeoutSeconds
	}
	if fileCfg.CacheTTLSeconds != 0 {
		cfg.CacheTTLSeconds = fileCfg.CacheTTLSeconds
	}
	if fileCfg.GateWidth != 0 {
		cfg.GateWidth = fileCfg.GateWidth
	}
}
