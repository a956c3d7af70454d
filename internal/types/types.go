package types

import "time"

// PlayerRef is a player discovered on a squad page but not yet aggregated.
type PlayerRef struct {
	Name string `json:"Player"`
	URL  string `json:"URL"`
}

// SquadRecord is one discovered squad. LastChecked stays nil until the
// first completed refresh.
type SquadRecord struct {
	URL         string      `json:"url"`
	LastChecked *string     `json:"last_checked"`
	Players     []PlayerRef `json:"players"`
}

// SquadCache maps squad display name to its record.
type SquadCache map[string]SquadRecord

// PlayerStats is the aggregated sale-history result for one player.
type PlayerStats struct {
	Player string `json:"player"`
	Stats  Stats  `json:"stats"`
}

// Stats carries display strings for the presentation layer and the raw
// amounts they were rendered from. Empty display strings mean "no data".
type Stats struct {
	TrendValue      string   `json:"trend_value"`
	AverageBuyNow   string   `json:"average_buy_now,omitempty"`
	Highest         string   `json:"highest"`
	Lowest          string   `json:"lowest"`
	AvgBelowTrend   string   `json:"avg_below_trend,omitempty"`
	AvgAboveTrend   string   `json:"avg_above_trend,omitempty"`
	ProfitMargin    string   `json:"profit_margin,omitempty"`
	ProfitMarginPct *float64 `json:"profit_margin_pct"`
	TrendPct        *float64 `json:"trend_pct"`
	Raw             RawStats `json:"raw"`
}

// RawStats holds unformatted coin amounts. Nil means absent, which is
// distinct from a real zero.
type RawStats struct {
	TrendValue    int64  `json:"trend_value"`
	Highest       int64  `json:"highest"`
	Lowest        int64  `json:"lowest"`
	AvgBelowTrend *int64 `json:"avg_below_trend"`
	AvgAboveTrend *int64 `json:"avg_above_trend"`
	ProfitMargin  *int64 `json:"profit_margin"`
}

// PlayerStatsCache maps squad name to the stats of its players.
type PlayerStatsCache map[string][]PlayerStats

// PlayerSnapshot is one historical stats row for a player.
type PlayerSnapshot struct {
	Squad           string
	Player          string
	CheckedAt       time.Time
	TrendValue      int64
	Highest         int64
	Lowest          int64
	AvgBelowTrend   *int64
	AvgAboveTrend   *int64
	ProfitMargin    *int64
	ProfitMarginPct *float64
	TrendPct        *float64
}
