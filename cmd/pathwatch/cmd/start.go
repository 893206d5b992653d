package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pathwatch/internal/app"
	"pathwatch/internal/config"
)

var (
	startRoot string
	startPort int
)

// startCmd represents the start command.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the pathwatch daemon",
	Long: `Start the pathwatch daemon: scan the project root to establish the
tracking baseline, watch the filesystem for changes, and serve the HTTP and
WebSocket APIs.

Example:
  pathwatch start
  pathwatch start --root /path/to/project
  pathwatch start --port 8311`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startRoot, "root", "", "project root to track (default: current directory)")
	startCmd.Flags().IntVar(&startPort, "port", 0, "server port for HTTP and WebSocket (default: 8311)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with flags
	if startRoot != "" {
		abs, err := filepath.Abs(startRoot)
		if err != nil {
			return fmt.Errorf("invalid --root: %w", err)
		}
		cfg.Project.Root = abs
	}
	if startPort != 0 {
		cfg.Server.Port = startPort
	}

	// Re-validate after overrides
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg)

	log.Info().
		Str("version", version).
		Str("root", cfg.Project.Root).
		Int("port", cfg.Server.Port).
		Msg("starting pathwatch")

	application, err := app.New(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("application error: %w", err)
	}

	log.Info().Msg("pathwatch stopped")
	return nil
}
