// Package analyzer ranks cached player statistics.
package analyzer

import (
	"sort"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/types"
)

// TopByProfit returns up to n players ordered by descending raw profit
// margin. Players without a margin, or rejected by any filter, are left
// out. Equal margins keep their cached order.
func TopByProfit(players []types.PlayerStats, n int, filters ...interfaces.PlayerFilter) []types.PlayerStats {
	qualified := make([]types.PlayerStats, 0, len(players))
	for _, p := range players {
		if p.Stats.Raw.ProfitMargin == nil {
			continue
		}
		if !passes(p, filters) {
			continue
		}
		qualified = append(qualified, p)
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return *qualified[i].Stats.Raw.ProfitMargin > *qualified[j].Stats.Raw.ProfitMargin
	})

	if n >= 0 && len(qualified) > n {
		qualified = qualified[:n]
	}
	return qualified
}

// LowTrend keeps players whose trend value is below threshold
func LowTrend(threshold int64) interfaces.PlayerFilter {
	return func(p types.PlayerStats) bool {
		return p.Stats.Raw.TrendValue < threshold
	}
}

func passes(p types.PlayerStats, filters []interfaces.PlayerFilter) bool {
	for _, f := range filters {
		if f != nil && !f(p) {
			return false
		}
	}
	return true
}
