package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "pgglance"

// Config holds all application configuration
type Config struct {
	UI        UIConfig        `mapstructure:"ui" yaml:"ui"`
	Monitor   MonitorConfig   `mapstructure:"monitor" yaml:"monitor"`
	Recording RecordingConfig `mapstructure:"recording" yaml:"recording"`
}

type UIConfig struct {
	GraphMarker GraphMarker `mapstructure:"graph_marker" yaml:"graph_marker"`
	ColorTheme  ColorTheme  `mapstructure:"color_theme" yaml:"color_theme"`
	ShowEmojis  bool        `mapstructure:"show_emojis" yaml:"show_emojis"`
}

type MonitorConfig struct {
	RefreshIntervalSecs int     `mapstructure:"refresh_interval_secs" yaml:"refresh_interval_secs"`
	WarnDurationSecs    float64 `mapstructure:"warn_duration_secs" yaml:"warn_duration_secs"`
	DangerDurationSecs  float64 `mapstructure:"danger_duration_secs" yaml:"danger_duration_secs"`
	HistoryLength       int     `mapstructure:"history_length" yaml:"history_length"`
}

type RecordingConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	RetentionSecs int    `mapstructure:"retention_secs" yaml:"retention_secs"`
	Dir           string `mapstructure:"dir" yaml:"dir"`
}

// Bounds enforced by Normalize and by the config overlay.
const (
	MinRefreshSecs   = 1
	MaxRefreshSecs   = 60
	MinWarnSecs      = 0.1
	MaxDangerSecs    = 300.0
	MinRetentionSecs = 600
	MaxRetentionSecs = 86400
)

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			GraphMarker: MarkerBraille,
			ColorTheme:  ThemeTokyoNight,
			ShowEmojis:  false,
		},
		Monitor: MonitorConfig{
			RefreshIntervalSecs: 2,
			WarnDurationSecs:    1.0,
			DangerDurationSecs:  10.0,
			HistoryLength:       120,
		},
		Recording: RecordingConfig{
			Enabled:       true,
			RetentionSecs: 3600,
			Dir:           "",
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("ui.graph_marker", string(MarkerBraille))
	v.SetDefault("ui.color_theme", string(ThemeTokyoNight))
	v.SetDefault("ui.show_emojis", false)
	v.SetDefault("monitor.refresh_interval_secs", 2)
	v.SetDefault("monitor.warn_duration_secs", 1.0)
	v.SetDefault("monitor.danger_duration_secs", 10.0)
	v.SetDefault("monitor.history_length", 120)
	v.SetDefault("recording.enabled", true)
	v.SetDefault("recording.retention_secs", 3600)
	v.SetDefault("recording.dir", "")

	return v
}

// Load loads configuration from the standard search paths
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")

	// 1. User config directory
	if configDir, err := GetConfigPath(); err == nil {
		v.AddConfigPath(configDir)
	}
	// 2. Current directory
	v.AddConfigPath(".")
	// 3. Default config directory
	v.AddConfigPath("./config")

	// It's okay if the file doesn't exist, we have defaults
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFile loads configuration from an explicit file
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Normalize clamps numeric settings into range and resets unknown enum values.
func (c *Config) Normalize() {
	defaults := GetDefaults()
	if !c.UI.GraphMarker.valid() {
		c.UI.GraphMarker = defaults.UI.GraphMarker
	}
	if !c.UI.ColorTheme.valid() {
		c.UI.ColorTheme = defaults.UI.ColorTheme
	}
	c.Monitor.RefreshIntervalSecs = clamp(c.Monitor.RefreshIntervalSecs, MinRefreshSecs, MaxRefreshSecs)
	c.Monitor.DangerDurationSecs = clamp(c.Monitor.DangerDurationSecs, MinWarnSecs, MaxDangerSecs)
	c.Monitor.WarnDurationSecs = clamp(c.Monitor.WarnDurationSecs, MinWarnSecs, c.Monitor.DangerDurationSecs)
	if c.Monitor.HistoryLength < 1 {
		c.Monitor.HistoryLength = defaults.Monitor.HistoryLength
	}
	c.Recording.RetentionSecs = clamp(c.Recording.RetentionSecs, MinRetentionSecs, MaxRetentionSecs)
}

func clamp[T int | float64](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

// Save writes the configuration to the user config directory
func (c *Config) Save() error {
	dir, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}
	return c.SaveTo(filepath.Join(dir, "config.yaml"))
}

// SaveTo writes the configuration as YAML to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}
