package report

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/magnitude"
	"totw-tracker/internal/types"
)

const notAvailable = "N/A"

var (
	up   = color.New(color.FgHiGreen).SprintFunc()
	down = color.New(color.FgHiRed).SprintFunc()
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// TopPlayers renders a ranked list of players
func TopPlayers(w io.Writer, squad string, players []types.PlayerStats) {
	if len(players) == 0 {
		fmt.Fprintf(w, "No players with a profit margin in %s\n", squad)
		return
	}

	t := newTable(w)
	t.SetTitle("Top %d players by profit margin: %s", len(players), squad)
	t.AppendHeader(table.Row{"#", "Player", "Trend", "Trend %", "Avg Buy Now", "Highest", "Lowest", "Avg Below", "Avg Above", "Profit", "Profit %"})
	for i, p := range players {
		s := p.Stats
		t.AppendRow(table.Row{
			i + 1,
			p.Player,
			orNA(s.TrendValue),
			Percent(s.TrendPct),
			orNA(s.AverageBuyNow),
			orNA(s.Highest),
			orNA(s.Lowest),
			orNA(s.AvgBelowTrend),
			orNA(s.AvgAboveTrend),
			orNA(s.ProfitMargin),
			Percent(s.ProfitMarginPct),
		})
	}
	t.Render()
}

// Squads renders the known squad names
func Squads(w io.Writer, names []string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Squad"})
	for i, name := range names {
		t.AppendRow(table.Row{i + 1, name})
	}
	t.Render()
}

// Summary renders the outcome of a bulk refresh
func Summary(w io.Writer, s interfaces.BulkSummary) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Squad", "Result"})
	for _, name := range s.Refreshed {
		t.AppendRow(table.Row{name, "refreshed"})
	}
	for _, name := range s.Skipped {
		t.AppendRow(table.Row{name, "fresh"})
	}
	for _, name := range s.Failed {
		t.AppendRow(table.Row{name, down("failed")})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%d refreshed, %d fresh, %d failed", len(s.Refreshed), len(s.Skipped), len(s.Failed))})
	t.Render()
}

// History renders a player's snapshots, newest first
func History(w io.Writer, player string, snaps []types.PlayerSnapshot) {
	if len(snaps) == 0 {
		fmt.Fprintf(w, "No history for %s\n", player)
		return
	}

	t := newTable(w)
	t.SetTitle("History: %s", player)
	t.AppendHeader(table.Row{"Checked", "Squad", "Trend", "Trend %", "Highest", "Lowest", "Profit", "Profit %"})
	for _, s := range snaps {
		t.AppendRow(table.Row{
			s.CheckedAt.Local().Format("2006-01-02 15:04"),
			s.Squad,
			orNA(magnitude.MustFormat(s.TrendValue)),
			Percent(s.TrendPct),
			orNA(magnitude.MustFormat(s.Highest)),
			orNA(magnitude.MustFormat(s.Lowest)),
			orNA(magnitude.FormatOptional(s.ProfitMargin)),
			Percent(s.ProfitMarginPct),
		})
	}
	t.Render()
}

// Percent renders a change with a colored arrow; nil is N/A
func Percent(v *float64) string {
	switch {
	case v == nil:
		return notAvailable
	case *v > 0:
		return up(fmt.Sprintf("🔺 %.2f%%", *v))
	case *v < 0:
		return down(fmt.Sprintf("🔻 %.2f%%", math.Abs(*v)))
	default:
		return "0.00%"
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
