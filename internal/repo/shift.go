package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/vigil/internal/models"
)

const shiftColumns = `id, guard_id, guard_name, started_at, ended_at, status, location, notes, created_at`

// ShiftRepo persists guard shifts.
type ShiftRepo struct {
	DB *sql.DB
}

func NewShiftRepo(db *sql.DB) *ShiftRepo {
	return &ShiftRepo{DB: db}
}

func scanShift(row interface{ Scan(...any) error }) (*models.Shift, error) {
	s := &models.Shift{}
	err := row.Scan(&s.ID, &s.GuardID, &s.GuardName, &s.StartedAt, &s.EndedAt, &s.Status, &s.Location, &s.Notes, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanShifts(rows *sql.Rows) ([]models.Shift, error) {
	defer rows.Close()
	list := []models.Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// Start opens an active shift for guard, or returns ErrActiveShift when the
// guard already has one. Independent of rounds.
func (r *ShiftRepo) Start(ctx context.Context, guard *models.User, location, notes string, at time.Time) (*models.Shift, error) {
	query := `
		INSERT INTO shifts (id, guard_id, guard_name, started_at, status, location, notes)
		VALUES ($1, $2, $3, $4, 'active', $5, $6)
		ON CONFLICT (guard_id) WHERE status = 'active' DO NOTHING
		RETURNING ` + shiftColumns

	s, err := scanShift(r.DB.QueryRowContext(ctx, query, newID(), guard.ID, guard.Name, at, location, notes))
	if errors.Is(err, ErrNotFound) || isUniqueViolation(err) {
		return nil, ErrActiveShift
	}
	return s, err
}

// GetByID returns one shift or ErrNotFound.
func (r *ShiftRepo) GetByID(ctx context.Context, id string) (*models.Shift, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanShift(r.DB.QueryRowContext(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id))
}

// ActiveForGuard returns the guard's active shift or ErrNotFound.
func (r *ShiftRepo) ActiveForGuard(ctx context.Context, guardID string) (*models.Shift, error) {
	return scanShift(r.DB.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE guard_id = $1 AND status = 'active'`,
		guardID,
	))
}

// List returns shifts newest first, restricted to guardID when non-empty.
func (r *ShiftRepo) List(ctx context.Context, guardID string, limit, offset int) ([]models.Shift, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if guardID != "" {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+shiftColumns+` FROM shifts WHERE guard_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			guardID, limit, offset,
		)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+shiftColumns+` FROM shifts ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset,
		)
	}
	if err != nil {
		return nil, err
	}
	return scanShifts(rows)
}

// ListActive returns every active shift, newest first.
func (r *ShiftRepo) ListActive(ctx context.Context) ([]models.Shift, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE status = 'active' ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	return scanShifts(rows)
}

// Finish ends an active or paused shift. Anything else yields ErrNotActive.
func (r *ShiftRepo) Finish(ctx context.Context, id string, at time.Time) (*models.Shift, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE shifts
		SET status = 'inactive', ended_at = $1
		WHERE id = $2 AND status IN ('active', 'paused')
		RETURNING ` + shiftColumns
	s, err := scanShift(r.DB.QueryRowContext(ctx, query, at, id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotActive
	}
	return s, err
}
