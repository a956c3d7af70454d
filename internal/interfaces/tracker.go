package interfaces

import (
	"context"
	"time"

	"totw-tracker/internal/types"
)

// PlayerFilter selects which players are eligible for ranking
type PlayerFilter func(types.PlayerStats) bool

// RefreshResult describes the outcome of refreshing one squad
type RefreshResult struct {
	Squad     string
	Players   []types.PlayerStats
	FromCache bool
	Attempted int
	// Warnings lists cache files that could not be read and were
	// treated as empty.
	Warnings []string
}

// BulkSummary describes a refresh over every known squad
type BulkSummary struct {
	Refreshed []string
	Skipped   []string
	Failed    []string
	Warnings  []string
}

// Tracker is the only entry point presentation code uses to reach the caches
type Tracker interface {
	GetSquadList(ctx context.Context) ([]string, error)
	Rediscover(ctx context.Context) (int, error)
	RefreshSquad(ctx context.Context, name string) (RefreshResult, error)
	RefreshAll(ctx context.Context) (BulkSummary, error)
	GetTop(ctx context.Context, name string, n int, filters ...PlayerFilter) ([]types.PlayerStats, error)
}

// SnapshotRecorder stores the stats produced by each completed refresh
type SnapshotRecorder interface {
	Record(ctx context.Context, squad string, checkedAt time.Time, players []types.PlayerStats) error
}
