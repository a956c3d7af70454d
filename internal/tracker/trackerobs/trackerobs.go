package trackerobs

import (
	"context"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
	"totw-tracker/internal/trace"
	"totw-tracker/internal/types"
)

type observableTracker struct {
	tracker interfaces.Tracker
}

var _ interfaces.Tracker = (*observableTracker)(nil)

func Wrap(tracker interfaces.Tracker) interfaces.Tracker {
	return &observableTracker{
		tracker: tracker,
	}
}

func (ot *observableTracker) GetSquadList(ctx context.Context) ([]string, error) {
	ctx, span := trace.StartSpan(ctx, "tracker.GetSquadList")
	defer span.End()

	names, err := ot.tracker.GetSquadList(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to list squads", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Squads listed",
		"count", len(names),
	)

	return names, nil
}

func (ot *observableTracker) Rediscover(ctx context.Context) (int, error) {
	ctx, span := trace.StartSpan(ctx, "tracker.Rediscover")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Rediscovering squads")

	added, err := ot.tracker.Rediscover(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Squad rediscovery failed", err)
		return 0, err
	}

	logger.InfoSkip(ctx, 1, "Squad rediscovery completed",
		"added", added,
	)

	return added, nil
}

func (ot *observableTracker) RefreshSquad(ctx context.Context, name string) (interfaces.RefreshResult, error) {
	ctx, span := trace.StartSpan(ctx, "tracker.RefreshSquad")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Refreshing squad",
		"squad", name,
	)

	res, err := ot.tracker.RefreshSquad(ctx, name)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Squad refresh failed", err,
			"squad", name,
		)
		return res, err
	}

	if res.FromCache {
		logger.InfoSkip(ctx, 1, "Squad is fresh, served from cache",
			"squad", name,
			"players", len(res.Players),
		)
		return res, nil
	}

	logger.InfoSkip(ctx, 1, "Squad refreshed",
		"squad", name,
		"attempted", res.Attempted,
		"with_stats", len(res.Players),
	)

	return res, nil
}

func (ot *observableTracker) RefreshAll(ctx context.Context) (interfaces.BulkSummary, error) {
	ctx, span := trace.StartSpan(ctx, "tracker.RefreshAll")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting refresh of all squads")

	summary, err := ot.tracker.RefreshAll(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Bulk refresh failed", err,
			"refreshed", len(summary.Refreshed),
		)
		return summary, err
	}

	logger.InfoSkip(ctx, 1, "Bulk refresh completed",
		"refreshed", len(summary.Refreshed),
		"skipped", len(summary.Skipped),
		"failed", len(summary.Failed),
	)

	return summary, nil
}

func (ot *observableTracker) GetTop(ctx context.Context, name string, n int, filters ...interfaces.PlayerFilter) ([]types.PlayerStats, error) {
	ctx, span := trace.StartSpan(ctx, "tracker.GetTop")
	defer span.End()

	top, err := ot.tracker.GetTop(ctx, name, n, filters...)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to rank squad", err,
			"squad", name,
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Squad ranked",
		"squad", name,
		"requested", n,
		"returned", len(top),
		"filters", len(filters),
	)

	return top, nil
}
