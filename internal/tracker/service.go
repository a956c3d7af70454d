// Package tracker owns both caches and keeps squad statistics up to date
// with as little fetching as the freshness window allows.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"totw-tracker/internal/analyzer"
	"totw-tracker/internal/cache"
	"totw-tracker/internal/freshness"
	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
	"totw-tracker/internal/scraper"
	"totw-tracker/internal/store"
	"totw-tracker/internal/types"
)

var (
	// ErrUnknownSquad means the requested squad is not in the squad cache
	ErrUnknownSquad = errors.New("unknown squad")
	// ErrNoCachedData means the squad exists but has never been refreshed
	ErrNoCachedData = errors.New("no cached data for squad")
	// ErrNoSquads means no squads are cached and none could be discovered
	ErrNoSquads = errors.New("no squads available")
	// ErrRosterUnavailable means a squad's players could not be discovered
	ErrRosterUnavailable = errors.New("squad roster unavailable")
)

// cacheWarnings collects unreadable-cache faults that did not stop the
// operation. A nil collector discards them; the store has logged them.
type cacheWarnings []string

func (w *cacheWarnings) add(err error) {
	if w == nil || err == nil {
		return
	}
	*w = append(*w, err.Error())
}

// Service is the single writer of the squad and player stats caches
type Service struct {
	cfg      *store.Config
	fetcher  interfaces.PageFetcher
	caches   *cache.Store
	scraper  *scraper.Scraper
	recorder interfaces.SnapshotRecorder
	now      func() time.Time

	mu sync.Mutex
}

var _ interfaces.Tracker = (*Service)(nil)

// Option customizes a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder receives the stats of every completed refresh
func WithRecorder(r interfaces.SnapshotRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func New(cfg *store.Config, fetcher interfaces.PageFetcher, caches *cache.Store, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		fetcher: fetcher,
		caches:  caches,
		scraper: scraper.New(cfg.Scraper),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSquadList returns cached squad names in sorted order, discovering
// squads first when the cache is empty.
func (s *Service) GetSquadList(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newLazySession(s.fetcher)
	defer sess.close(ctx)

	squads, err := s.ensureSquads(ctx, sess, nil)
	if err != nil {
		return nil, err
	}
	return squadNames(squads), nil
}

// Rediscover re-reads the squad listing and adds squads not yet cached.
// Existing records are left untouched.
func (s *Service) Rediscover(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newLazySession(s.fetcher)
	defer sess.close(ctx)

	squads := s.loadSquads(ctx, nil)
	discovered, err := s.discoverSquads(ctx, sess)
	if err != nil {
		return 0, err
	}

	added := 0
	for name, rec := range discovered {
		if _, ok := squads[name]; ok {
			continue
		}
		squads[name] = rec
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := s.caches.SaveSquads(ctx, squads); err != nil {
		return 0, fmt.Errorf("save squads: %w", err)
	}
	logger.Info(ctx, "Added new squads", "added", added, "total", len(squads))
	return added, nil
}

// RefreshSquad returns cached stats while the squad is fresh, otherwise
// re-aggregates every player and rewrites both caches.
func (s *Service) RefreshSquad(ctx context.Context, name string) (interfaces.RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newLazySession(s.fetcher)
	defer sess.close(ctx)

	var warns cacheWarnings
	squads, err := s.ensureSquads(ctx, sess, &warns)
	if err != nil {
		return interfaces.RefreshResult{Warnings: warns}, err
	}
	if _, ok := squads[name]; !ok {
		return interfaces.RefreshResult{Warnings: warns}, fmt.Errorf("%w: %q", ErrUnknownSquad, name)
	}

	stats := s.loadPlayerStats(ctx, &warns)
	res, err := s.refresh(ctx, sess, squads, stats, name)
	res.Warnings = warns
	return res, err
}

// RefreshAll refreshes every known squad one at a time. Each squad is
// written to both caches before the next one starts.
func (s *Service) RefreshAll(ctx context.Context) (interfaces.BulkSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newLazySession(s.fetcher)
	defer sess.close(ctx)

	var summary interfaces.BulkSummary
	var warns cacheWarnings

	squads, err := s.ensureSquads(ctx, sess, &warns)
	if err != nil {
		summary.Warnings = warns
		return summary, err
	}
	stats := s.loadPlayerStats(ctx, &warns)
	summary.Warnings = warns

	for _, name := range squadNames(squads) {
		res, err := s.refresh(ctx, sess, squads, stats, name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			logger.Warn(ctx, "Skipping squad", "squad", name, "error", err)
			summary.Failed = append(summary.Failed, name)
			continue
		}
		if res.FromCache {
			summary.Skipped = append(summary.Skipped, name)
		} else {
			summary.Refreshed = append(summary.Refreshed, name)
		}
	}

	return summary, nil
}

// GetTop ranks a squad's cached players. It never fetches.
func (s *Service) GetTop(ctx context.Context, name string, n int, filters ...interfaces.PlayerFilter) ([]types.PlayerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		n = s.cfg.Ranking.TopN
	}

	stats := s.loadPlayerStats(ctx, nil)
	players, ok := stats[name]
	if !ok {
		if _, known := s.loadSquads(ctx, nil)[name]; !known {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSquad, name)
		}
		return nil, fmt.Errorf("%w: %q", ErrNoCachedData, name)
	}

	return analyzer.TopByProfit(players, n, filters...), nil
}

// refresh runs the Cached/Refreshing decision for one squad and updates
// squads and stats in place.
func (s *Service) refresh(ctx context.Context, sess *lazySession, squads types.SquadCache, stats types.PlayerStatsCache, name string) (interfaces.RefreshResult, error) {
	rec := squads[name]
	now := s.now()

	if freshness.IsFresh(rec.LastChecked, s.cfg.SquadWindow(), now) {
		if cached, ok := stats[name]; ok {
			logger.Debug(ctx, "Squad is fresh, using cache", "squad", name, "last_checked", *rec.LastChecked)
			return interfaces.RefreshResult{Squad: name, Players: cached, FromCache: true}, nil
		}
	}

	fs, err := sess.get(ctx)
	if err != nil {
		return interfaces.RefreshResult{}, fmt.Errorf("open fetch session: %w", err)
	}

	roster := rec.Players
	if len(roster) == 0 {
		roster, err = s.scraper.FetchSquadPlayers(ctx, fs, rec.URL)
		if err != nil {
			return interfaces.RefreshResult{}, fmt.Errorf("%w: %q: %v", ErrRosterUnavailable, name, err)
		}
	}

	timer := logger.StartOperation(ctx, "refresh_squad", "squad", name, "players", len(roster))
	players := s.aggregate(timer.GetContext(), fs, roster, now)
	if err := ctx.Err(); err != nil {
		timer.EndWithError(err)
		return interfaces.RefreshResult{}, err
	}
	timer.End("with_stats", len(players))

	checked := freshness.FormatTimestamp(now)
	rec.Players = roster
	rec.LastChecked = &checked
	squads[name] = rec
	stats[name] = players

	if err := s.caches.SavePlayerStats(ctx, stats); err != nil {
		return interfaces.RefreshResult{}, fmt.Errorf("save player stats: %w", err)
	}
	if err := s.caches.SaveSquads(ctx, squads); err != nil {
		return interfaces.RefreshResult{}, fmt.Errorf("save squads: %w", err)
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, name, now, players); err != nil {
			logger.Warn(ctx, "Failed to record snapshot", "squad", name, "error", err)
		}
	}

	return interfaces.RefreshResult{Squad: name, Players: players, Attempted: len(roster)}, nil
}

// aggregate fetches every player's sales through a bounded pool and waits
// for all of them. Results keep roster order; failed players are dropped.
func (s *Service) aggregate(ctx context.Context, fs interfaces.FetchSession, roster []types.PlayerRef, now time.Time) []types.PlayerStats {
	results := make([]*types.PlayerStats, len(roster))

	var g errgroup.Group
	g.SetLimit(max(s.cfg.Scraper.MaxConcurrency, 1))
	for i, ref := range roster {
		i, ref := i, ref
		g.Go(func() error {
			if ps, ok := s.scraper.FetchPlayerStats(ctx, fs, ref, now); ok {
				results[i] = &ps
			}
			return nil
		})
	}
	_ = g.Wait()

	players := make([]types.PlayerStats, 0, len(roster))
	for _, ps := range results {
		if ps != nil {
			players = append(players, *ps)
		}
	}
	return players
}

// ensureSquads loads the squad cache and populates it from the listing
// page when it is empty.
func (s *Service) ensureSquads(ctx context.Context, sess *lazySession, warns *cacheWarnings) (types.SquadCache, error) {
	squads := s.loadSquads(ctx, warns)
	if len(squads) > 0 {
		return squads, nil
	}

	discovered, err := s.discoverSquads(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.caches.SaveSquads(ctx, discovered); err != nil {
		return nil, fmt.Errorf("save squads: %w", err)
	}
	return discovered, nil
}

func (s *Service) discoverSquads(ctx context.Context, sess *lazySession) (types.SquadCache, error) {
	fs, err := sess.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSquads, err)
	}
	squads, err := s.scraper.FetchSquads(ctx, fs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSquads, err)
	}
	return squads, nil
}

// loadSquads degrades an unreadable cache to empty and hands the fault
// to warns.
func (s *Service) loadSquads(ctx context.Context, warns *cacheWarnings) types.SquadCache {
	squads, err := s.caches.LoadSquads(ctx)
	warns.add(err)
	return squads
}

func (s *Service) loadPlayerStats(ctx context.Context, warns *cacheWarnings) types.PlayerStatsCache {
	stats, err := s.caches.LoadPlayerStats(ctx)
	warns.add(err)
	return stats
}

func squadNames(squads types.SquadCache) []string {
	names := make([]string, 0, len(squads))
	for name := range squads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
