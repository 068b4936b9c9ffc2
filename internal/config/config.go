package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file.
const FileName = "perkwise.yaml"

// Config represents the top-level perkwise.yaml configuration.
type Config struct {
	User   UserConfig   `yaml:"user"`
	Store  StoreConfig  `yaml:"store"`
	Import ImportConfig `yaml:"import"`
	Scan   ScanConfig   `yaml:"scan"`
	Log    LogConfig    `yaml:"log"`
}

// UserConfig identifies the owning user.
type UserConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ImportConfig controls CSV transaction imports.
type ImportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// ScanConfig bounds backfill runs.
type ScanConfig struct {
	BatchLimit int `yaml:"batch_limit"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a perkwise.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(userID, userName string) *Config {
	return &Config{
		User: UserConfig{
			ID:   userID,
			Name: userName,
		},
		Store: StoreConfig{
			Path: "data/perkwise.db",
		},
		Import: ImportConfig{
			Dir:    "import",
			Format: "chase",
		},
		Scan: ScanConfig{
			BatchLimit: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
