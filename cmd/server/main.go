package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/JaimeStill/pdf-image-server/internal/config"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "pdf-image-server",
		Usage: "Serve the embedded image of a PDF page as PNG",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML configuration file (default: ./config.toml if present)",
				Sources: cli.EnvVars("SERVICE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory documents are served from (overrides documents.root)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("service failed", "error", err)
		if errors.Is(err, config.ErrRootUnresolvable) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// Flags take precedence over the environment, which Finalize applies.
	if root := cmd.String("root"); root != "" {
		if err := os.Setenv(config.EnvDocumentsRoot, root); err != nil {
			return err
		}
	}

	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("config finalize failed: %w", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("service init failed: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("service start failed: %w", err)
	}

	<-ctx.Done()

	if err := srv.Shutdown(cfg.Server.ShutdownTimeoutDuration()); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	srv.runtime.Logger.Info("service stopped gracefully")
	return nil
}
