package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/look-mcp/internal/captures"
	"github.com/ironsheep/look-mcp/internal/config"
	"github.com/ironsheep/look-mcp/internal/screen"
	"github.com/ironsheep/look-mcp/internal/server"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	// stdout carries the protocol; logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	capturesDir, err := filepath.Abs(cfg.CapturesDir)
	if err != nil {
		return fmt.Errorf("invalid captures directory: %w", err)
	}

	command := cfg.CaptureCommand
	if len(command) == 0 {
		command = screen.DefaultCommand(runtime.GOOS, exec.LookPath)
	}
	if len(command) == 0 {
		logger.Warn("No screen capture command found; look_at_screen will fail until one is configured",
			"env", config.EnvCaptureCommand)
	}

	mech := &screen.CommandMechanism{
		Args:           command,
		SuccessPattern: cfg.SuccessPattern,
		Logger:         logger,
	}

	srv, err := server.New(server.Options{
		Dir:       captures.NewDir(capturesDir, captures.WithLogger(logger)),
		Capturer:  screen.NewInvoker(mech, cfg.CaptureTimeout, logger),
		Retention: cfg.Retention,
		Version:   Version,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("look-mcp server running",
		"version", Version,
		"captures", capturesDir,
		"command", command,
		"retention", cfg.Retention)

	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// loadConfig layers flags that were set explicitly over the file and
// environment configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("captures-dir") {
		cfg.CapturesDir, _ = flags.GetString("captures-dir")
	}
	if flags.Changed("capture-command") {
		cfg.CaptureCommand, _ = flags.GetStringSlice("capture-command")
	}
	if flags.Changed("retention") {
		cfg.Retention, _ = flags.GetDuration("retention")
	}
	if flags.Changed("capture-timeout") {
		cfg.CaptureTimeout, _ = flags.GetDuration("capture-timeout")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
