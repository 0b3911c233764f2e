package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpadapter "resume-builder/internal/adapter/http"
	"resume-builder/internal/app"
	"resume-builder/internal/config"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:           "resume-server",
		Short:         "Serve the resume form, PDF generation and suggestion endpoints",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// RESUME_* variables may come from a local .env file
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Log, os.Stdout)
			slog.SetDefault(logger)

			if err := run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("server stopped with error", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (default: search standard locations)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c, err := app.Build(cfg, logger, reg)
	if err != nil {
		return err
	}

	srv := httpadapter.NewServer(cfg, httpadapter.Deps{
		Resume:   httpadapter.NewHandler(c.Pipeline, logger),
		AI:       httpadapter.NewAIHandler(c.Enhancer, c.Heuristic),
		Gatherer: reg,
		Health:   func() fiber.Map { return c.EnhancerState() },
		Logger:   logger,
	})

	logger.Info("starting resume-builder",
		"addr", cfg.Server.Addr(),
		"page_size", cfg.Export.PageSize,
		"remote_enhancer", cfg.Enhancer.Remote.Enabled,
		"rate_limit", cfg.RateLimit.Enabled)

	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(cfg.Server.Addr()) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Export.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
