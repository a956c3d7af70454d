package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"totw-tracker/internal/types"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func openTest(t *testing.T) *History {
	t.Helper()
	h, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestRecordAndPlayerHistory(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()
	first := time.Date(2025, time.October, 16, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	alpha := types.PlayerStats{
		Player: "Alpha",
		Stats: types.Stats{
			ProfitMarginPct: f64(185.71),
			TrendPct:        f64(200),
			Raw: types.RawStats{
				TrendValue: 200, Highest: 300, Lowest: 100,
				AvgBelowTrend: i64(100), AvgAboveTrend: i64(300), ProfitMargin: i64(195),
			},
		},
	}
	flat := types.PlayerStats{
		Player: "Flat",
		Stats:  types.Stats{Raw: types.RawStats{TrendValue: 50_000, Highest: 50_000, Lowest: 50_000}},
	}

	require.NoError(t, h.Record(ctx, "TOTW 1", first, []types.PlayerStats{alpha, flat}))
	alpha.Stats.Raw.TrendValue = 250
	require.NoError(t, h.Record(ctx, "TOTW 1", second, []types.PlayerStats{alpha}))

	got, err := h.PlayerHistory(ctx, "Alpha", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, second, got[0].CheckedAt, "newest first")
	require.Equal(t, int64(250), got[0].TrendValue)
	require.Equal(t, int64(200), got[1].TrendValue)
	require.Equal(t, "TOTW 1", got[1].Squad)
	require.NotNil(t, got[1].ProfitMargin)
	require.Equal(t, int64(195), *got[1].ProfitMargin)
	require.NotNil(t, got[1].ProfitMarginPct)
	require.Equal(t, 185.71, *got[1].ProfitMarginPct)

	got, err = h.PlayerHistory(ctx, "Flat", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].AvgBelowTrend)
	require.Nil(t, got[0].ProfitMargin)
	require.Nil(t, got[0].TrendPct)
}

func TestPlayerHistoryLimitAndUnknown(t *testing.T) {
	h := openTest(t)
	ctx := context.Background()
	at := time.Date(2025, time.October, 16, 12, 0, 0, 0, time.UTC)

	p := types.PlayerStats{Player: "Beta", Stats: types.Stats{Raw: types.RawStats{TrendValue: 1}}}
	for i := 0; i < 5; i++ {
		require.NoError(t, h.Record(ctx, "TOTW 2", at.Add(time.Duration(i)*time.Minute), []types.PlayerStats{p}))
	}

	got, err := h.PlayerHistory(ctx, "Beta", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	got, err = h.PlayerHistory(ctx, "Nobody", 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestRecordEmptyIsNoop(t *testing.T) {
	h := openTest(t)
	require.NoError(t, h.Record(context.Background(), "TOTW 3", time.Now(), nil))
}
