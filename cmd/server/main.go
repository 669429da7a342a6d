// Package main is the entry point for the tasklist server.
//
// main stays minimal: load config, set up logging, create the data
// directory, hand off to internal/server. All actual logic lives in
// imported packages so it can be tested without an entry point.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/tasklist/internal/config"
	"github.com/sakif/tasklist/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't set up yet; this is the one place stderr is fine.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Debug logging in development, Info in production.
	level := slog.LevelDebug
	if cfg.Production() {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// config.Load already refuses to start production without a real
	// secret; in development it substitutes a known key, which must be
	// impossible to miss in the logs.
	if cfg.UsingDevSecret() {
		logger.Warn("JWT_SECRET not set — using the insecure development signing key; tokens are forgeable",
			slog.String("env", cfg.AppEnv),
		)
	}

	// mkdir -p for the database file's directory (no-op for :memory:).
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		DBPath:    cfg.DBPath,
		JWTSecret: cfg.JWTSecret,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
