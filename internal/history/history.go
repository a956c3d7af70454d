// Package history keeps every refreshed player's statistics in SQLite so
// prices can be compared across refreshes.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"totw-tracker/internal/interfaces"
	"totw-tracker/internal/logger"
	"totw-tracker/internal/types"
)

//go:embed schema.sql
var schema string

// History is a SQLite-backed SnapshotRecorder
type History struct {
	db *sql.DB
}

var _ interfaces.SnapshotRecorder = (*History)(nil)

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &History{db: db}, nil
}

// Record appends one row per player in a single transaction
func (h *History) Record(ctx context.Context, squad string, checkedAt time.Time, players []types.PlayerStats) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `insert into player_snapshot (
		squad, player, checked_at, trend_value, highest, lowest,
		avg_below_trend, avg_above_trend, profit_margin, profit_margin_pct, trend_pct
	) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		raw := p.Stats.Raw
		_, err := stmt.ExecContext(ctx,
			squad, p.Player, checkedAt.Unix(), raw.TrendValue, raw.Highest, raw.Lowest,
			nullInt(raw.AvgBelowTrend), nullInt(raw.AvgAboveTrend), nullInt(raw.ProfitMargin),
			nullFloat(p.Stats.ProfitMarginPct), nullFloat(p.Stats.TrendPct),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot for %s: %w", p.Player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	logger.Debug(ctx, "Snapshot recorded", "squad", squad, "players", len(players))
	return nil
}

// PlayerHistory returns up to limit snapshots of player, newest first
func (h *History) PlayerHistory(ctx context.Context, player string, limit int) ([]types.PlayerSnapshot, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx, `select
		squad, player, checked_at, trend_value, highest, lowest,
		avg_below_trend, avg_above_trend, profit_margin, profit_margin_pct, trend_pct
	from player_snapshot
	where player = ?
	order by checked_at desc, id desc
	limit ?`, player, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", player, err)
	}
	defer rows.Close()

	snapshots := []types.PlayerSnapshot{}
	for rows.Next() {
		var (
			s                    types.PlayerSnapshot
			checkedAt            int64
			below, above, margin sql.NullInt64
			marginPct, trendPct  sql.NullFloat64
		)
		err := rows.Scan(
			&s.Squad, &s.Player, &checkedAt, &s.TrendValue, &s.Highest, &s.Lowest,
			&below, &above, &margin, &marginPct, &trendPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		s.CheckedAt = time.Unix(checkedAt, 0).UTC()
		s.AvgBelowTrend = intPtr(below)
		s.AvgAboveTrend = intPtr(above)
		s.ProfitMargin = intPtr(margin)
		s.ProfitMarginPct = floatPtr(marginPct)
		s.TrendPct = floatPtr(trendPct)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}
	return snapshots, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
