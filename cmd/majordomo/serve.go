package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/majordomo-labs/majordomo/internal/adapter"
	"github.com/majordomo-labs/majordomo/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start Majordomo as a long-running service",
	Long:  `Runs the HTTP API and any enabled platform adapters until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cfg, true)
		if err != nil {
			return err
		}
		defer p.Close()

		srv, err := server.New(cfg.Server, p.router, p.audit)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var adapters []adapter.InputAdapter
		if cfg.Adapters.Telegram.Enabled {
			tg, err := adapter.NewTelegramAdapter(cfg.Adapters.Telegram, p.router)
			if err != nil {
				return fmt.Errorf("configure telegram adapter: %w", err)
			}
			adapters = append(adapters, tg)
		}

		for _, a := range adapters {
			if err := a.Start(ctx); err != nil {
				return fmt.Errorf("start %s adapter: %w", a.Name(), err)
			}
		}

		srv.Start()
		slog.Info("Majordomo serving", "port", cfg.Server.Port, "adapters", len(adapters))

		<-ctx.Done()
		slog.Info("Shutting down")

		shutdownCtx := context.Background()
		for _, a := range adapters {
			if err := a.Stop(shutdownCtx); err != nil {
				slog.Error("Adapter stop failed", "adapter", a.Name(), "error", err)
			}
		}
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		slog.Info("Majordomo stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("adapters.telegram.enabled", false, "Enable the Telegram adapter (overrides config)")
}
