package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"memory-match/api"
	"memory-match/auth"
	"memory-match/config"
	"memory-match/game"
	"memory-match/loghandler"
	"memory-match/metrics"
	"memory-match/names"
	"memory-match/storage"
	"memory-match/ws"
)

const shutdownTimeout = 5 * time.Second

// server bundles everything the HTTP side needs.
type server struct {
	hub     *ws.Hub
	handler http.Handler
}

// newServer wires the hub, API and metrics. store may be nil.
func newServer(cfg *config.Config, store *storage.Store, validator *auth.Validator, reg *prometheus.Registry) *server {
	recorder := metrics.NewRecorder(reg)

	hub := ws.NewHub(cfg.SessionOptions())
	hub.Auth = validator
	hub.Telemetry = recorder

	var history storage.HistoryStore
	if store != nil {
		history = store
		hub.History = store
		hub.Names = func(id string) game.NameStore { return store.Scope(id) }
	} else {
		book := names.NewBook()
		hub.Names = func(id string) game.NameStore { return book.Scope(id) }
	}

	h := api.NewHandler(validator, history)
	return &server{
		hub:     hub,
		handler: newRouter(h, hub, metrics.Handler(reg)),
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, cfg.SlogLevel())))

	validator, err := auth.NewValidator(cfg.AuthBaseURL)
	if err != nil {
		return err
	}
	if validator.Enabled() {
		slog.Info("auth configured", "tag", "main", "base_url", cfg.AuthBaseURL)
	} else {
		slog.Info("AUTH_BASE_URL is not set; history is unavailable and auth messages are rejected", "tag", "main")
	}

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()
	if store == nil {
		slog.Info("DATABASE_URL is not set; names are kept in memory and rounds are not recorded", "tag", "main")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := newServer(cfg, store, validator, reg)
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WSPort),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       10 * time.Minute,
	}

	slog.Info("configuration", "tag", "main", "pairs", cfg.PairCount,
		"reveal_delay_ms", cfg.RevealDelayMS, "game_over_delay_ms", cfg.GameOverDelayMS, "port", cfg.WSPort)

	errs := make(chan error, 1)
	go func() {
		slog.Info("memory-match server listening", "tag", "main", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "tag", "main")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
