package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/pterm/pterm"

	"memory-match/config"
	"memory-match/game"
	"memory-match/names"
	"memory-match/storage"
	"memory-match/terminal"
)

// terminalSessionID scopes remembered names for terminal play.
const terminalSessionID = "terminal"

func runPlay(ctx context.Context, cfg *config.Config) error {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelWarn)
	if cfg.SlogLevel() <= slog.LevelDebug {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDebug)
	}
	slog.SetDefault(slog.New(pterm.NewSlogHandler(logger)))

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Warn("database unavailable; names are kept in memory", "tag", "terminal", "err", err)
	}
	defer store.Close()

	var nameStore game.NameStore = names.NewMemory()
	if store != nil {
		nameStore = store.Scope(terminalSessionID)
	}

	sess, err := game.NewSession(terminalSessionID, cfg.SessionOptions(), nil, nameStore)
	if err != nil {
		return err
	}
	if store != nil {
		sess.OnRoundEnd = func(result game.RoundResult, d time.Duration) {
			rec := storage.RoundRecord{SessionID: terminalSessionID, Result: result, PairCount: cfg.PairCount, Duration: d}
			recordCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := store.RecordRound(recordCtx, rec); err != nil {
				slog.Warn("record round failed", "tag", "terminal", "err", err)
			}
		}
	}

	host := terminal.NewHost(sess, terminal.NewPrompter(), os.Stdout)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sess.Run(ctx)

	err = host.Play(ctx)
	cancel()
	<-sess.Done()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
