package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientcmd "github.com/rivenlabs/pulse/internal/cmd/client"
	serverrun "github.com/rivenlabs/pulse/internal/cmd/server"
	cfgpkg "github.com/rivenlabs/pulse/internal/config"
	pebblestore "github.com/rivenlabs/pulse/internal/storage/pebble"
	logpkg "github.com/rivenlabs/pulse/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// Respect PULSE_LOG_LEVEL for both CLI and server start output.
	level := os.Getenv("PULSE_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger.
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Pulse event delivery CLI",
		Long:  "Pulse is a local event-delivery service. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start pulse server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			configPath, _ := cmd.Flags().GetString("config")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			authDisabled, _ := cmd.Flags().GetBool("no-auth")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg := cfgpkg.Default()
			if configPath != "" {
				loaded, err := cfgpkg.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			cfgpkg.FromEnv(&cfg)

			// Flags override config file and environment.
			if cmd.Flags().Changed("http") {
				cfg.HTTPAddr = httpAddr
			} else if cfg.HTTPAddr != "" {
				httpAddr = cfg.HTTPAddr
			}
			if dataDir == "" {
				dataDir = cfg.DataDir
			}
			if cmd.Flags().Changed("fsync") {
				cfg.Fsync = fsyncMode
			} else if cfg.Fsync != "" {
				fsyncMode = cfg.Fsync
			}
			if cmd.Flags().Changed("fsync-interval-ms") {
				cfg.FsyncIntervalMs = fsyncIntervalMs
			} else if cfg.FsyncIntervalMs > 0 {
				fsyncIntervalMs = cfg.FsyncIntervalMs
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if logFormat != "" {
				cfg.LogFormat = logFormat
			}
			if authDisabled {
				cfg.Auth.Disabled = true
			}

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", "127.0.0.1:7517", "HTTP listen address (loopback only)")
	serverStartCmd.Flags().String("config", "", "Config file path (JSON or YAML)")
	serverStartCmd.Flags().String("fsync", "interval", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", os.Getenv("PULSE_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("PULSE_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().Bool("no-auth", false, "Disable token auth (local development only)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// event commands (in internal/cmd/client)
	rootCmd.AddCommand(clientcmd.NewEventsCommand(apiURL))

	// auth token commands
	rootCmd.AddCommand(clientcmd.NewAuthCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("PULSE_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:7517"
}
