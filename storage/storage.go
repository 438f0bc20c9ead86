package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memory-match/game"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS round_history (
	id            UUID PRIMARY KEY,
	played_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	host_user_id  TEXT NOT NULL DEFAULT '',
	session_id    TEXT NOT NULL DEFAULT '',
	player1_name  TEXT NOT NULL,
	player2_name  TEXT NOT NULL,
	player1_score INT NOT NULL,
	player2_score INT NOT NULL,
	pair_count    INT NOT NULL,
	winner        SMALLINT,
	duration_ms   BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_round_history_host ON round_history(host_user_id);
CREATE TABLE IF NOT EXISTS player_stats (
	display_name TEXT PRIMARY KEY,
	wins         INT NOT NULL DEFAULT 0,
	losses       INT NOT NULL DEFAULT 0,
	draws        INT NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_player_stats_wins ON player_stats(wins DESC);
CREATE TABLE IF NOT EXISTS player_names (
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (session_id, key)
);
`

// nameTimeout bounds each name store query; NameStore has no context of its own.
const nameTimeout = 2 * time.Second

// Store persists round history, per-name stats and remembered names.
// A nil *Store is valid: writes are dropped and reads return empty results.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the tables exist.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// RoundRecord is one finished round as written to round_history.
type RoundRecord struct {
	ID         string
	HostUserID string
	SessionID  string
	Result     game.RoundResult
	PairCount  int
	Duration   time.Duration
}

// statsDelta returns the (wins, losses, draws) increments for seat tag.
func statsDelta(w game.Winner, tag game.PlayerTag) (wins, losses, draws int) {
	winner, ok := w.Tag()
	switch {
	case !ok:
		return 0, 0, 1
	case winner == tag:
		return 1, 0, 0
	default:
		return 0, 1, 0
	}
}

// winnerColumn maps a winner to the round_history.winner value: 1, 2 or NULL for a tie.
func winnerColumn(w game.Winner) *int {
	tag, ok := w.Tag()
	if !ok {
		return nil
	}
	n := int(tag) + 1
	return &n
}

// RecordRound inserts the round and updates both players' stats in one transaction.
// An empty rec.ID is replaced with a new UUID.
func (s *Store) RecordRound(ctx context.Context, rec RoundRecord) error {
	if s == nil || s.pool == nil {
		return nil
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	r := rec.Result
	_, err = tx.Exec(ctx, `
		INSERT INTO round_history (id, host_user_id, session_id, player1_name, player2_name, player1_score, player2_score, pair_count, winner, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.HostUserID, rec.SessionID, r.Names[game.Player1], r.Names[game.Player2],
		r.Scores[game.Player1], r.Scores[game.Player2], rec.PairCount, winnerColumn(r.Winner), rec.Duration.Milliseconds())
	if err != nil {
		return err
	}

	for _, tag := range []game.PlayerTag{game.Player1, game.Player2} {
		w, l, d := statsDelta(r.Winner, tag)
		_, err = tx.Exec(ctx, `
			INSERT INTO player_stats (display_name, wins, losses, draws) VALUES ($1, $2, $3, $4)
			ON CONFLICT (display_name) DO UPDATE SET
				wins = player_stats.wins + EXCLUDED.wins,
				losses = player_stats.losses + EXCLUDED.losses,
				draws = player_stats.draws + EXCLUDED.draws,
				updated_at = now()`,
			r.Names[tag], w, l, d)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// RoundSummary is a single row for the history API.
type RoundSummary struct {
	ID           string `json:"id"`
	PlayedAt     string `json:"played_at"` // ISO8601
	Player1Name  string `json:"player1_name"`
	Player2Name  string `json:"player2_name"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
	PairCount    int    `json:"pair_count"`
	Winner       string `json:"winner"` // "player1", "player2" or "tie"
	DurationMS   int64  `json:"duration_ms"`
}

// ListByHost returns the rounds hosted by userID, newest first.
func (s *Store) ListByHost(ctx context.Context, userID string, limit int) ([]RoundSummary, error) {
	if s == nil || s.pool == nil {
		return []RoundSummary{}, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, played_at, player1_name, player2_name, player1_score, player2_score, pair_count, winner, duration_ms
		FROM round_history
		WHERE host_user_id = $1
		ORDER BY played_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RoundSummary{}
	for rows.Next() {
		var r RoundSummary
		var playedAt time.Time
		var winner *int
		if err := rows.Scan(&r.ID, &playedAt, &r.Player1Name, &r.Player2Name, &r.Player1Score, &r.Player2Score, &r.PairCount, &winner, &r.DurationMS); err != nil {
			return nil, err
		}
		r.PlayedAt = playedAt.UTC().Format(time.RFC3339)
		r.Winner = game.Tie.String()
		if winner != nil {
			r.Winner = game.PlayerTag(*winner - 1).String()
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LeaderboardEntry is a single row for the leaderboard API.
type LeaderboardEntry struct {
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
}

// ListLeaderboard returns entries ordered by wins DESC, with optional limit and offset.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return []LeaderboardEntry{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx, `
		SELECT display_name, wins, losses, draws
		FROM player_stats
		ORDER BY wins DESC, draws DESC, losses ASC, display_name ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.DisplayName, &e.Wins, &e.Losses, &e.Draws); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetStats returns one name's entry, or (nil, nil) if the name never played.
func (s *Store) GetStats(ctx context.Context, displayName string) (*LeaderboardEntry, error) {
	if s == nil || s.pool == nil || displayName == "" {
		return nil, nil
	}
	var e LeaderboardEntry
	err := s.pool.QueryRow(ctx, `
		SELECT display_name, wins, losses, draws
		FROM player_stats
		WHERE display_name = $1`,
		displayName).Scan(&e.DisplayName, &e.Wins, &e.Losses, &e.Draws)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
