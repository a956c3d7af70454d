package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"totw-tracker/internal/freshness"
	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
	"totw-tracker/internal/store"
	"totw-tracker/internal/types"
)

// ErrEmptyListing means the squad listing page yielded no squads
var ErrEmptyListing = errors.New("no squads found on listing page")

// Scraper reads squad, roster and sale-history pages through a fetch session
type Scraper struct {
	cfg store.ScraperConfig
}

// New creates a scraper for the configured marketplace
func New(cfg store.ScraperConfig) *Scraper {
	return &Scraper{cfg: cfg}
}

// FetchSquads renders the squad listing and discovers squads on it
func (s *Scraper) FetchSquads(ctx context.Context, sess interfaces.FetchSession) (types.SquadCache, error) {
	doc, err := sess.Render(ctx, s.cfg.SquadsURL, s.cfg.Selectors.SquadLink)
	if err != nil {
		return nil, fmt.Errorf("render squad listing: %w", err)
	}

	squads := DiscoverSquads(doc, s.cfg.BaseURL, s.cfg.Selectors)
	if len(squads) == 0 {
		return nil, ErrEmptyListing
	}

	logger.Info(ctx, "Discovered squads", "count", len(squads))
	return squads, nil
}

// FetchSquadPlayers renders a squad page and reads its roster
func (s *Scraper) FetchSquadPlayers(ctx context.Context, sess interfaces.FetchSession, squadURL string) ([]types.PlayerRef, error) {
	doc, err := sess.Render(ctx, squadURL, s.cfg.Selectors.PlayerCard)
	if err != nil {
		return nil, fmt.Errorf("render squad page: %w", err)
	}

	players := DiscoverPlayers(doc, s.cfg.BaseURL, s.cfg.Selectors, MaxSquadPlayers)
	logger.Debug(ctx, "Discovered players", "url", squadURL, "count", len(players))
	return players, nil
}

// FetchPlayerStats aggregates the last day of sales for one player. Any
// fetch failure is logged and reported as ok == false.
func (s *Scraper) FetchPlayerStats(ctx context.Context, sess interfaces.FetchSession, ref types.PlayerRef, now time.Time) (types.PlayerStats, bool) {
	url := SalesURL(ref.URL, s.cfg.Platform)

	doc, err := sess.Render(ctx, url, s.cfg.Selectors.SalesTable)
	if err != nil {
		logger.Warn(ctx, "Failed to fetch sales", "player", ref.Name, "url", url, "error", err)
		return types.PlayerStats{}, false
	}

	prices := ParseSalePrices(doc, s.cfg.Selectors.SalesTable, freshness.Cutoff(now), now)
	stats, ok := ComputeStats(ref.Name, prices)
	if !ok {
		logger.Debug(ctx, "No recent sales", "player", ref.Name)
		return types.PlayerStats{}, false
	}
	return stats, true
}
