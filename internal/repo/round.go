package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/vigil/internal/models"
	"github.com/lib/pq"
)

const roundColumns = `id, guard_id, guard_name, started_at, ended_at, status, visited_locations, notes, incident_count, created_at`

// RoundRepo persists patrol rounds.
type RoundRepo struct {
	DB *sql.DB
}

func NewRoundRepo(db *sql.DB) *RoundRepo {
	return &RoundRepo{DB: db}
}

func scanRound(row interface{ Scan(...any) error }) (*models.Round, error) {
	rd := &models.Round{}
	err := row.Scan(
		&rd.ID,
		&rd.GuardID,
		&rd.GuardName,
		&rd.StartedAt,
		&rd.EndedAt,
		&rd.Status,
		pq.Array(&rd.VisitedLocations),
		&rd.Notes,
		&rd.IncidentCount,
		&rd.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rd.VisitedLocations = nonNil(rd.VisitedLocations)
	return rd, nil
}

// Start opens a round for guard. The partial unique index on active rounds
// makes the insert a no-op when the guard already has one; that case is
// reported as ErrActiveRound.
func (r *RoundRepo) Start(ctx context.Context, guard *models.User, visited []string, notes string, at time.Time) (*models.Round, error) {
	query := `
		INSERT INTO rounds (id, guard_id, guard_name, started_at, status, visited_locations, notes)
		VALUES ($1, $2, $3, $4, 'started', $5, $6)
		ON CONFLICT (guard_id) WHERE status IN ('started', 'in_progress') DO NOTHING
		RETURNING ` + roundColumns

	rd, err := scanRound(r.DB.QueryRowContext(ctx, query,
		newID(), guard.ID, guard.Name, at, pq.Array(nonNil(visited)), notes,
	))
	if errors.Is(err, ErrNotFound) || isUniqueViolation(err) {
		return nil, ErrActiveRound
	}
	return rd, err
}

// GetByID returns one round or ErrNotFound.
func (r *RoundRepo) GetByID(ctx context.Context, id string) (*models.Round, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanRound(r.DB.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id))
}

// ActiveForGuard returns the guard's started/in-progress round or ErrNotFound.
func (r *RoundRepo) ActiveForGuard(ctx context.Context, guardID string) (*models.Round, error) {
	return scanRound(r.DB.QueryRowContext(ctx,
		`SELECT `+roundColumns+` FROM rounds WHERE guard_id = $1 AND status IN ('started', 'in_progress')`,
		guardID,
	))
}

// List returns rounds newest first, restricted to guardID when non-empty.
func (r *RoundRepo) List(ctx context.Context, guardID string, limit, offset int) ([]models.Round, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if guardID != "" {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+roundColumns+` FROM rounds WHERE guard_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			guardID, limit, offset,
		)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+roundColumns+` FROM rounds ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Round{}
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rd)
	}
	return list, rows.Err()
}

// Close moves an active round to status (completed or interrupted) and stamps
// its end time. A round that is no longer active yields ErrNotActive.
func (r *RoundRepo) Close(ctx context.Context, id, status string, at time.Time) (*models.Round, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE rounds
		SET status = $1, ended_at = $2
		WHERE id = $3 AND status IN ('started', 'in_progress')
		RETURNING ` + roundColumns
	rd, err := scanRound(r.DB.QueryRowContext(ctx, query, status, at, id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotActive
	}
	return rd, err
}

// IncrementIncidents bumps the incident counter of the guard's active round, if any.
func (r *RoundRepo) IncrementIncidents(ctx context.Context, guardID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE rounds SET incident_count = incident_count + 1, status = 'in_progress' WHERE guard_id = $1 AND status IN ('started', 'in_progress')`,
		guardID,
	)
	return err
}
