package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crucial707/vigil/internal/models"
)

// DashboardRepo computes read-only counts over the other collections.
// Nothing is cached; every call hits the store.
type DashboardRepo struct {
	DB *sql.DB
}

func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{DB: db}
}

func (r *DashboardRepo) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("dashboard count: %w", err)
	}
	return n, nil
}

// GuardStats returns the guard's own counts since the given day start.
func (r *DashboardRepo) GuardStats(ctx context.Context, guardID string, since time.Time) (models.GuardStats, error) {
	var s models.GuardStats
	var err error

	if s.OccurrencesToday, err = r.count(ctx,
		`SELECT COUNT(*) FROM occurrences WHERE reporter_id = $1 AND created_at >= $2`, guardID, since); err != nil {
		return s, err
	}
	if s.RoundsToday, err = r.count(ctx,
		`SELECT COUNT(*) FROM rounds WHERE guard_id = $1 AND created_at >= $2`, guardID, since); err != nil {
		return s, err
	}
	activeRounds, err := r.count(ctx,
		`SELECT COUNT(*) FROM rounds WHERE guard_id = $1 AND status IN ('started', 'in_progress')`, guardID)
	if err != nil {
		return s, err
	}
	activeShifts, err := r.count(ctx,
		`SELECT COUNT(*) FROM shifts WHERE guard_id = $1 AND status = 'active'`, guardID)
	if err != nil {
		return s, err
	}
	s.ActiveRound = activeRounds > 0
	s.ActiveShift = activeShifts > 0
	return s, nil
}

// Overview returns the supervisor/administrator counts since the given day start.
func (r *DashboardRepo) Overview(ctx context.Context, since time.Time) (models.OverviewStats, error) {
	var s models.OverviewStats
	var err error

	if s.OccurrencesToday, err = r.count(ctx,
		`SELECT COUNT(*) FROM occurrences WHERE created_at >= $1`, since); err != nil {
		return s, err
	}
	if s.RoundsToday, err = r.count(ctx,
		`SELECT COUNT(*) FROM rounds WHERE created_at >= $1`, since); err != nil {
		return s, err
	}
	if s.OpenOccurrences, s.CriticalOpenOccurrences, s.ActiveRounds, s.ActiveShifts, err = r.Gauges(ctx); err != nil {
		return s, err
	}
	if s.ActiveGuards, err = r.count(ctx,
		`SELECT COUNT(DISTINCT guard_id) FROM shifts WHERE status = 'active'`); err != nil {
		return s, err
	}
	if s.TotalActiveUsers, err = r.count(ctx,
		`SELECT COUNT(*) FROM users WHERE active = TRUE`); err != nil {
		return s, err
	}
	return s, nil
}

// Gauges returns the point-in-time counts exported as metrics:
// open occurrences, critical open occurrences, active rounds, active shifts.
func (r *DashboardRepo) Gauges(ctx context.Context) (open, criticalOpen, activeRounds, activeShifts int, err error) {
	if open, err = r.count(ctx,
		`SELECT COUNT(*) FROM occurrences WHERE resolved = FALSE`); err != nil {
		return
	}
	if criticalOpen, err = r.count(ctx,
		`SELECT COUNT(*) FROM occurrences WHERE resolved = FALSE AND priority = 'critical'`); err != nil {
		return
	}
	if activeRounds, err = r.count(ctx,
		`SELECT COUNT(*) FROM rounds WHERE status IN ('started', 'in_progress')`); err != nil {
		return
	}
	activeShifts, err = r.count(ctx,
		`SELECT COUNT(*) FROM shifts WHERE status = 'active'`)
	return
}

// StartOfDayUTC returns midnight UTC of t's day.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
