// Package config handles configuration management for pathwatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Project ProjectConfig `mapstructure:"project"`
	Tracker TrackerConfig `mapstructure:"tracker"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ProjectConfig holds project-related configuration.
type ProjectConfig struct {
	// Root is the absolute path all tracked paths are relative to.
	Root string `mapstructure:"root"`

	// OutputDir is the build output directory, ignored automatically.
	OutputDir string `mapstructure:"output_dir"`
}

// TrackerConfig holds tracker configuration.
type TrackerConfig struct {
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
}

// WatcherConfig holds file watcher configuration.
type WatcherConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMS int  `mapstructure:"debounce_ms"`
}

// ServerConfig holds HTTP/WebSocket server configuration.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from files and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pathwatch")
		v.AddConfigPath("/etc/pathwatch")
	}

	v.SetEnvPrefix("PATHWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.root", "")
	v.SetDefault("project.output_dir", "public")

	v.SetDefault("tracker.ignore_patterns", DefaultIgnorePatterns)

	v.SetDefault("watcher.enabled", true)
	v.SetDefault("watcher.debounce_ms", 100)

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8311)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// postProcess applies post-processing to configuration.
func postProcess(cfg *Config) error {
	if cfg.Project.Root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		cfg.Project.Root = cwd
	}

	absPath, err := filepath.Abs(cfg.Project.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg.Project.Root = absPath

	return nil
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Watcher.DebounceMS < 0 {
		return fmt.Errorf("watcher.debounce_ms must not be negative")
	}
	if cfg.Server.Enabled {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("server.port must be between 1 and 65535")
		}
	}
	if strings.Contains(cfg.Project.OutputDir, "..") {
		return fmt.Errorf("project.output_dir must stay inside the project root")
	}
	return nil
}

// GetConfigDir returns the user config directory for pathwatch.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".pathwatch"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
