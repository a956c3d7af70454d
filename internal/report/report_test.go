package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/types"
)

func f64(v float64) *float64 { return &v }

func noColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestPercent(t *testing.T) {
	noColor(t)

	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{f64(12.5), "🔺 12.50%"},
		{f64(-3.25), "🔻 3.25%"},
		{f64(0), "0.00%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent() = %q, expected %q", got, tt.want)
		}
	}
}

func TestPercentColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	assert.Contains(t, Percent(f64(1)), "\x1b[")
}

func TestTopPlayers(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer

	TopPlayers(&buf, "TOTW 1", []types.PlayerStats{
		{Player: "Alpha", Stats: types.Stats{TrendValue: "200", Highest: "300", Lowest: "100", ProfitMargin: "195", ProfitMarginPct: f64(185.71), TrendPct: f64(200)}},
		{Player: "Beta", Stats: types.Stats{TrendValue: "50K"}},
	})

	out := buf.String()
	assert.Contains(t, out, "TOTW 1")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "🔺 185.71%")
	assert.Contains(t, out, "N/A")
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Beta"))
}

func TestTopPlayersEmpty(t *testing.T) {
	var buf bytes.Buffer
	TopPlayers(&buf, "TOTW 9", nil)
	assert.Equal(t, "No players with a profit margin in TOTW 9\n", buf.String())
}

func TestSquadsAndSummary(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer

	Squads(&buf, []string{"TOTW 1", "TOTW 2"})
	assert.Contains(t, buf.String(), "TOTW 2")

	buf.Reset()
	Summary(&buf, interfaces.BulkSummary{Refreshed: []string{"TOTW 1"}, Skipped: []string{"TOTW 2"}, Failed: []string{"TOTW 3"}})
	out := buf.String()
	assert.Contains(t, out, "refreshed")
	assert.Contains(t, out, "failed")
	assert.Contains(t, strings.ToLower(out), "1 refreshed, 1 fresh, 1 failed")
}

func TestHistory(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	margin := int64(1_500)

	History(&buf, "Alpha", []types.PlayerSnapshot{{
		Squad:        "TOTW 1",
		Player:       "Alpha",
		CheckedAt:    time.Date(2025, time.October, 16, 12, 0, 0, 0, time.UTC),
		TrendValue:   150_000,
		Highest:      200_000,
		Lowest:       120_000,
		ProfitMargin: &margin,
	}})

	out := buf.String()
	assert.Contains(t, out, "150K")
	assert.Contains(t, out, "2K")
	assert.Contains(t, out, "TOTW 1")

	buf.Reset()
	History(&buf, "Ghost", nil)
	assert.Equal(t, "No history for Ghost\n", buf.String())
}
