package trackerobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
	"totw-tracker/internal/types"
)

type stubTracker struct {
	refresh interfaces.RefreshResult
	err     error
	filters int
}

func (s *stubTracker) GetSquadList(ctx context.Context) ([]string, error) {
	return []string{"TOTW 1"}, s.err
}

func (s *stubTracker) Rediscover(ctx context.Context) (int, error) {
	return 2, s.err
}

func (s *stubTracker) RefreshSquad(ctx context.Context, name string) (interfaces.RefreshResult, error) {
	return s.refresh, s.err
}

func (s *stubTracker) RefreshAll(ctx context.Context) (interfaces.BulkSummary, error) {
	return interfaces.BulkSummary{Refreshed: []string{"TOTW 1"}}, s.err
}

func (s *stubTracker) GetTop(ctx context.Context, name string, n int, filters ...interfaces.PlayerFilter) ([]types.PlayerStats, error) {
	s.filters = len(filters)
	if s.err != nil {
		return nil, s.err
	}
	return []types.PlayerStats{{Player: "A"}}, nil
}

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.UseCore(core, false)
	t.Cleanup(func() { logger.UseCore(zapcore.NewNopCore(), false) })
	return logs
}

func TestRefreshSquadLogsOutcome(t *testing.T) {
	logs := observe(t)
	stub := &stubTracker{refresh: interfaces.RefreshResult{Squad: "TOTW 1", Attempted: 11, Players: make([]types.PlayerStats, 9)}}

	res, err := Wrap(stub).RefreshSquad(context.Background(), "TOTW 1")
	require.NoError(t, err)
	assert.Equal(t, 11, res.Attempted)

	done := logs.FilterMessage("Squad refreshed").AllUntimed()
	require.Len(t, done, 1)
	assert.EqualValues(t, 9, done[0].ContextMap()["with_stats"])
}

func TestRefreshSquadFromCache(t *testing.T) {
	logs := observe(t)
	stub := &stubTracker{refresh: interfaces.RefreshResult{Squad: "TOTW 1", FromCache: true}}

	_, err := Wrap(stub).RefreshSquad(context.Background(), "TOTW 1")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Squad is fresh, served from cache").Len())
}

func TestErrorsArePassedThrough(t *testing.T) {
	logs := observe(t)
	boom := errors.New("boom")
	wrapped := Wrap(&stubTracker{err: boom})
	ctx := context.Background()

	_, err := wrapped.GetSquadList(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = wrapped.RefreshAll(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = wrapped.GetTop(ctx, "TOTW 1", 5)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 3, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestGetTopForwardsFilters(t *testing.T) {
	observe(t)
	stub := &stubTracker{}
	keep := func(types.PlayerStats) bool { return true }

	top, err := Wrap(stub).GetTop(context.Background(), "TOTW 1", 5, keep, keep)
	require.NoError(t, err)
	assert.Len(t, top, 1)
	assert.Equal(t, 2, stub.filters)
}
