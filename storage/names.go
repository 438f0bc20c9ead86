package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// NameStore is a game.NameStore backed by the player_names table, scoped to
// one host session. Query errors are logged and treated as a missing name.
type NameStore struct {
	store     *Store
	sessionID string
}

// Scope returns the name store for sessionID. It is usable on a nil *Store,
// where it remembers nothing.
func (s *Store) Scope(sessionID string) *NameStore {
	return &NameStore{store: s, sessionID: sessionID}
}

func (n *NameStore) enabled() bool {
	return n != nil && n.store != nil && n.store.pool != nil
}

func (n *NameStore) Get(key string) (string, bool) {
	if !n.enabled() {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), nameTimeout)
	defer cancel()
	var value string
	err := n.store.pool.QueryRow(ctx,
		`SELECT value FROM player_names WHERE session_id = $1 AND key = $2`,
		n.sessionID, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("load player name", "tag", "storage", "session", n.sessionID, "key", key, "err", err)
		}
		return "", false
	}
	return value, true
}

func (n *NameStore) Set(key, value string) {
	if !n.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), nameTimeout)
	defer cancel()
	_, err := n.store.pool.Exec(ctx, `
		INSERT INTO player_names (session_id, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		n.sessionID, key, value)
	if err != nil {
		slog.Warn("save player name", "tag", "storage", "session", n.sessionID, "key", key, "err", err)
	}
}

func (n *NameStore) Remove(key string) {
	if !n.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), nameTimeout)
	defer cancel()
	_, err := n.store.pool.Exec(ctx,
		`DELETE FROM player_names WHERE session_id = $1 AND key = $2`,
		n.sessionID, key)
	if err != nil {
		slog.Warn("remove player name", "tag", "storage", "session", n.sessionID, "key", key, "err", err)
	}
}
