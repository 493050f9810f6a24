package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "lecturehall/internal/adapters/http"
	wssignal "lecturehall/internal/adapters/signal"
	"lecturehall/internal/app"
	"lecturehall/internal/backend"
	"lecturehall/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	registry := app.NewRegistry()
	publisher := app.NewPublisher(registry, app.SimplePolicy{})
	relay := app.NewRelay(registry, publisher, app.RelayOptions{
		Scope:       app.Scope(cfg.Relay.Scope),
		ChatHistory: cfg.Relay.ChatHistory,
		Strict:      cfg.Relay.Strict,
	})
	bk := backend.NewClient(cfg.Backend.Endpoint, cfg.Backend.FunctionKey, cfg.Backend.Timeout)
	ctrl := wssignal.NewSignalWSController(cfg, registry, relay, bk)

	r := router.SetupRouter(ctx, cfg, ctrl, relay, bk)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("lecturehall server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
