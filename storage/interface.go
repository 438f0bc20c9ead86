package storage

import (
	"context"

	"memory-match/game"
)

// HistoryStore abstracts persistence for round history and the leaderboard.
// Implementations can be swapped for testing (mocks) or different backends.
type HistoryStore interface {
	// Read
	ListByHost(ctx context.Context, userID string, limit int) ([]RoundSummary, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)
	GetStats(ctx context.Context, displayName string) (*LeaderboardEntry, error)

	// Write
	RecordRound(ctx context.Context, rec RoundRecord) error

	// Lifecycle
	Close()
}

// Ensure *Store implements HistoryStore at compile time.
var _ HistoryStore = (*Store)(nil)

// Ensure *NameStore implements game.NameStore at compile time.
var _ game.NameStore = (*NameStore)(nil)
