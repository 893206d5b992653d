package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pathwatch/internal/config"
)

var (
	configInitLocal bool
	configInitForce bool
)

// configCmd displays or manages configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display and manage configuration",
	Long: `Display and manage pathwatch configuration.

Without subcommands, shows the current effective configuration.

Examples:
  pathwatch config         # Show current config
  pathwatch config init    # Create config file with defaults`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		printConfig(cfg)
		return nil
	},
}

// configInitCmd creates a config file with defaults.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with default settings",
	Long: `Create a config file with default settings.

By default, creates ~/.pathwatch/config.yaml.
Use --local to create ./config.yaml in the current directory.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitLocal, "local", false, "create ./config.yaml instead of ~/.pathwatch/config.yaml")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	var configPath string
	if configInitLocal {
		configPath = "config.yaml"
	} else {
		dir, err := config.EnsureConfigDir()
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	defaults := map[string]interface{}{
		"project": map[string]interface{}{
			"root":       "",
			"output_dir": "public",
		},
		"tracker": map[string]interface{}{
			"ignore_patterns": config.DefaultIgnorePatterns,
		},
		"watcher": map[string]interface{}{
			"enabled":     true,
			"debounce_ms": 100,
		},
		"server": map[string]interface{}{
			"enabled": true,
			"host":    "127.0.0.1",
			"port":    8311,
		},
		"logging": map[string]interface{}{
			"level":  "info",
			"format": "console",
		},
	}

	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}

func printConfig(cfg *config.Config) {
	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("Project Root:    %s\n", cfg.Project.Root)
	fmt.Printf("Output Dir:      %s\n", cfg.Project.OutputDir)
	fmt.Printf("Ignore Patterns: %d configured\n", len(cfg.Tracker.IgnorePatterns))
	fmt.Printf("Watcher Enabled: %t\n", cfg.Watcher.Enabled)
	fmt.Printf("Debounce (ms):   %d\n", cfg.Watcher.DebounceMS)
	fmt.Printf("Server Enabled:  %t\n", cfg.Server.Enabled)
	fmt.Printf("Server Address:  %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Log Level:       %s\n", cfg.Logging.Level)
}
