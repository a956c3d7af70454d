package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"totw-tracker/internal/logger"
	"totw-tracker/internal/types"
)

// ErrCorrupt is returned alongside an empty container when a cache file
// exists but cannot be read or decoded. It is a warning, not a failure.
var ErrCorrupt = errors.New("cache file unreadable")

// Store persists JSON documents as files in one directory
type Store struct {
	dir             string
	squadFile       string
	playerStatsFile string
	mu              sync.RWMutex
}

// NewStore creates a store rooted at dir using the given file names for
// the squad and player-stats caches
func NewStore(dir, squadFile, playerStatsFile string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{
		dir:             dir,
		squadFile:       squadFile,
		playerStatsFile: playerStatsFile,
	}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

// Load decodes the document stored under key into v. A missing file leaves
// v untouched and returns nil; an unreadable one returns ErrCorrupt.
func (s *Store) Load(ctx context.Context, key string, v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		logger.Warn(ctx, "Cache file unreadable, starting empty", "key", key, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn(ctx, "Cache file corrupt, starting empty", "key", key, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// Save writes v under key as indented JSON, replacing the previous file.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}

	logger.Debug(ctx, "Cache saved", "key", key, "bytes", len(data))
	return nil
}

// LoadSquads always returns a usable cache; the error, if any, is ErrCorrupt.
func (s *Store) LoadSquads(ctx context.Context) (types.SquadCache, error) {
	var squads types.SquadCache
	err := s.Load(ctx, s.squadFile, &squads)
	if err != nil || squads == nil {
		squads = types.SquadCache{}
	}
	return squads, err
}

func (s *Store) SaveSquads(ctx context.Context, squads types.SquadCache) error {
	return s.Save(ctx, s.squadFile, squads)
}

// LoadPlayerStats always returns a usable cache; the error, if any, is ErrCorrupt.
func (s *Store) LoadPlayerStats(ctx context.Context) (types.PlayerStatsCache, error) {
	var stats types.PlayerStatsCache
	err := s.Load(ctx, s.playerStatsFile, &stats)
	if err != nil || stats == nil {
		stats = types.PlayerStatsCache{}
	}
	return stats, err
}

func (s *Store) SavePlayerStats(ctx context.Context, stats types.PlayerStatsCache) error {
	return s.Save(ctx, s.playerStatsFile, stats)
}
