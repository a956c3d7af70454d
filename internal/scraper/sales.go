package scraper

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"totw-tracker/internal/magnitude"
	"totw-tracker/internal/types"
)

const (
	// saleDateLayout is how sale timestamps appear in the table, without a year
	saleDateLayout = "Jan 2, 3:04 PM"

	// feeFactor models the 5% marketplace fee on the buy side
	feeFactor = 1.05
)

// SalesURL maps a player page URL to its sale-history page
func SalesURL(playerURL, platform string) string {
	return strings.ReplaceAll(playerURL, "/player/", "/sales/") + "?platform=" + platform
}

// ParseSalePrices returns, in table order, the prices of sales dated at or
// after cutoff. Rows are dropped on a missing or stale date before their
// price is looked at. A missing table or column yields nil.
func ParseSalePrices(doc *goquery.Document, tableSel string, cutoff, now time.Time) []int64 {
	table := doc.Find(tableSel).First()
	if table.Length() == 0 {
		return nil
	}

	dateIdx, soldIdx := -1, -1
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(th.Text())) {
		case "date":
			if dateIdx < 0 {
				dateIdx = i
			}
		case "sold for":
			if soldIdx < 0 {
				soldIdx = i
			}
		}
	})
	if dateIdx < 0 || soldIdx < 0 {
		return nil
	}

	var prices []int64
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if dateIdx >= cells.Length() || soldIdx >= cells.Length() {
			return
		}

		span := cells.Eq(dateIdx).Find("span").First()
		if span.Length() == 0 {
			return
		}
		soldAt, ok := parseSaleDate(span.Text(), now)
		if !ok || soldAt.Before(cutoff) {
			return
		}

		if price, ok := magnitude.Parse(cells.Eq(soldIdx).Text()); ok {
			prices = append(prices, price)
		}
	})

	return prices
}

// parseSaleDate reads a year-less sale timestamp in now's location. The
// year is taken from now; a result in the future belongs to last year.
func parseSaleDate(s string, now time.Time) (time.Time, bool) {
	t, err := time.ParseInLocation(saleDateLayout, normalizeText(s), now.Location())
	if err != nil {
		return time.Time{}, false
	}
	t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if t.After(now) {
		t = t.AddDate(-1, 0, 0)
	}
	return t, true
}

// ComputeStats aggregates sale prices in table order. It reports false when
// there are no prices.
func ComputeStats(player string, prices []int64) (types.PlayerStats, bool) {
	if len(prices) == 0 {
		return types.PlayerStats{}, false
	}

	var sum int64
	highest, lowest := prices[0], prices[0]
	for _, p := range prices {
		sum += p
		highest = max(highest, p)
		lowest = min(lowest, p)
	}
	trend := sum / int64(len(prices))

	var below, above []int64
	for _, p := range prices {
		switch {
		case p < trend:
			below = append(below, p)
		case p > trend:
			above = append(above, p)
		}
	}
	avgBelow := mean(below)
	avgAbove := mean(above)

	raw := types.RawStats{
		TrendValue:    trend,
		Highest:       highest,
		Lowest:        lowest,
		AvgBelowTrend: avgBelow,
		AvgAboveTrend: avgAbove,
	}

	var profitPct *float64
	if avgBelow != nil && avgAbove != nil {
		buy := float64(*avgBelow) * feeFactor
		diff := float64(*avgAbove) - buy
		margin := int64(math.Floor(diff))
		raw.ProfitMargin = &margin
		pct := round2(diff / buy * 100)
		profitPct = &pct
	}

	var trendPct *float64
	if first, last := prices[0], prices[len(prices)-1]; first != 0 {
		pct := round2(float64(last-first) / float64(first) * 100)
		trendPct = &pct
	}

	return types.PlayerStats{
		Player: player,
		Stats: types.Stats{
			TrendValue:      magnitude.MustFormat(raw.TrendValue),
			AverageBuyNow:   magnitude.FormatOptional(raw.AvgAboveTrend),
			Highest:         magnitude.MustFormat(raw.Highest),
			Lowest:          magnitude.MustFormat(raw.Lowest),
			AvgBelowTrend:   magnitude.FormatOptional(raw.AvgBelowTrend),
			AvgAboveTrend:   magnitude.FormatOptional(raw.AvgAboveTrend),
			ProfitMargin:    magnitude.FormatOptional(raw.ProfitMargin),
			ProfitMarginPct: profitPct,
			TrendPct:        trendPct,
			Raw:             raw,
		},
	}, true
}

// mean is the truncated integer mean, nil for an empty partition
func mean(values []int64) *int64 {
	if len(values) == 0 {
		return nil
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	m := sum / int64(len(values))
	return &m
}

// round2 rounds from the exact binary value with ties to even, so 0.625
// becomes 0.62 and 2.675 (stored just below) becomes 2.67.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
