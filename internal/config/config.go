package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = ".config/mcpcored"
	configFileName = "config.json"
)

// ConfigPath returns the default full path to the config file.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load reads the configuration from the default path, returning a config
// with documented defaults if the file doesn't exist.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.SupportedProtocolVersions) == 0 {
		cfg.SupportedProtocolVersions = []string{DefaultProtocolVersion, LegacyProtocolVersion}
	}
	if cfg.SessionIdleTimeoutMS == 0 {
		cfg.SessionIdleTimeoutMS = DefaultSessionIdleTimeoutMS
	}
	if cfg.OutboundRequestDefaultTimeoutMS == 0 {
		cfg.OutboundRequestDefaultTimeoutMS = DefaultOutboundRequestTimeoutMS
	}

	return &cfg, nil
}

// Save writes the configuration to the default path atomically (temp file +
// rename), matching the pattern used for the rest of this repository's
// on-disk state.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to an explicit path atomically.
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("rename config: %w", err)
	}

	return nil
}
