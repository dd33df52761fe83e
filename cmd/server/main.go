package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"goblog-api/internal/bootstrap"
	"goblog-api/internal/config"
	"goblog-api/internal/logger"
	httptransport "goblog-api/internal/transport/http"
)

func main() {
	flags := pflag.NewFlagSet("goblog-api", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to the TOML config file (defaults to $CONFIG_FILE or configs/config.toml)")
	shutdownTimeout := flags.Duration("shutdown-timeout", 5*time.Second, "grace period for in-flight requests on shutdown")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("close resources failed")
		}
	}()

	router := httptransport.NewRouter(app)
	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	waitForShutdown(ctx, server, serveErr, *shutdownTimeout, log)
}

func waitForShutdown(ctx context.Context, server *http.Server, serveErr <-chan error, timeout time.Duration, log zerolog.Logger) {
	select {
	case err, ok := <-serveErr:
		if ok {
			log.Error().Err(err).Msg("server failed")
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info().Msg("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
