package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harrylevesque/idqr/internal/api"
	"github.com/harrylevesque/idqr/internal/config"
	"github.com/harrylevesque/idqr/internal/payload"
	"github.com/harrylevesque/idqr/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	svc := api.NewService(
		payload.NewParser(payload.WithExtraFields(cfg.Parser.KeepExtraFields)),
		api.Options{MaxPayloadBytes: cfg.Server.MaxPayloadBytes, Logger: logger.Logger},
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(svc),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("[idqr.server]",
		slog.String("event_type", "HTTP.server.started"),
		slog.String("addr", cfg.Server.Addr),
	)

	for {
		select {
		case <-hup:
			if err := logger.Reopen(); err != nil {
				logger.Error("[idqr.server] Log reopen failed", "err", err)
			}
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info("[idqr.server]", slog.String("event_type", "stopping.HTTP.server"))

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http shutdown error: %w", err)
			}
			return nil
		}
	}
}
