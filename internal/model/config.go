package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Filter is the default task filter ("all", "blocked",
	// "completed", "in-progress").
	Filter string `mapstructure:"filter" yaml:"filter"`

	// SortBy is the default sort key ("created", "title", "status").
	SortBy string `mapstructure:"sort_by" yaml:"sort_by"`
}

// PlanConfig holds floor-plan grid dimensions in character cells.
type PlanConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DBPath is the SQLite database file location. Empty means the
	// default path next to the config file.
	DBPath  string        `mapstructure:"db_path" yaml:"db_path"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Plan    PlanConfig    `mapstructure:"plan" yaml:"plan"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/sitetracker/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "sitetracker", "config.yaml")
}

// DefaultDBPath returns the default SQLite database location,
// located at ~/.config/sitetracker/sitetracker.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "sitetracker.db")
	}
	return filepath.Join(home, ".config", "sitetracker", "sitetracker.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		DBPath: DefaultDBPath(),
		Display: DisplayConfig{
			Filter: "all",
			SortBy: "created",
		},
		Plan: PlanConfig{
			Width:  48,
			Height: 16,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("db_path", DefaultDBPath())
	v.SetDefault("display.filter", "all")
	v.SetDefault("display.sort_by", "created")
	v.SetDefault("plan.width", 48)
	v.SetDefault("plan.height", 16)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Plan.Width <= 0 {
		cfg.Plan.Width = 48
	}
	if cfg.Plan.Height <= 0 {
		cfg.Plan.Height = 16
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("db_path", cfg.DBPath)
	v.Set("display", cfg.Display)
	v.Set("plan", cfg.Plan)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
