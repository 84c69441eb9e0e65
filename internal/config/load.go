package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration with priority: defaults < file < flags.
// f may be nil when no flags were registered.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	configPath := ""
	if f != nil {
		configPath = f.ConfigPath()
	}
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if f != nil {
		f.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./geoglobe.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns $XDG_CONFIG_HOME/geoglobe, falling back to ~/.config/geoglobe.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "geoglobe")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "geoglobe")
	}
	return filepath.Join(os.TempDir(), "geoglobe")
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
