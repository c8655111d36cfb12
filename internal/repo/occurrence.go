package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crucial707/vigil/internal/models"
	"github.com/lib/pq"
)

const occurrenceColumns = `id, location, type, priority, description, photos, reporter_id, reporter_name, resolved, resolved_at, resolution_notes, created_at`

// OccurrenceRepo persists occurrences. Occurrences are never deleted.
type OccurrenceRepo struct {
	DB *sql.DB
}

func NewOccurrenceRepo(db *sql.DB) *OccurrenceRepo {
	return &OccurrenceRepo{DB: db}
}

func scanOccurrence(row interface{ Scan(...any) error }) (*models.Occurrence, error) {
	o := &models.Occurrence{}
	var notes sql.NullString
	err := row.Scan(
		&o.ID,
		&o.Location,
		&o.Type,
		&o.Priority,
		&o.Description,
		pq.Array(&o.Photos),
		&o.ReporterID,
		&o.ReporterName,
		&o.Resolved,
		&o.ResolvedAt,
		&notes,
		&o.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Photos = nonNil(o.Photos)
	o.ResolutionNotes = notes.String
	return o, nil
}

func scanOccurrences(rows *sql.Rows) ([]models.Occurrence, error) {
	defer rows.Close()
	list := []models.Occurrence{}
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *o)
	}
	return list, rows.Err()
}

// Create inserts an occurrence reported by reporter. Priority must already be defaulted.
func (r *OccurrenceRepo) Create(ctx context.Context, location, typ, priority, description string, reporter *models.User) (*models.Occurrence, error) {
	query := `
		INSERT INTO occurrences (id, location, type, priority, description, reporter_id, reporter_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + occurrenceColumns
	return scanOccurrence(r.DB.QueryRowContext(ctx, query,
		newID(), location, typ, priority, description, reporter.ID, reporter.Name,
	))
}

// GetByID returns one occurrence or ErrNotFound.
func (r *OccurrenceRepo) GetByID(ctx context.Context, id string) (*models.Occurrence, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanOccurrence(r.DB.QueryRowContext(ctx, `SELECT `+occurrenceColumns+` FROM occurrences WHERE id = $1`, id))
}

// List returns occurrences newest first. A non-empty reporterID restricts the
// result to that reporter's occurrences.
func (r *OccurrenceRepo) List(ctx context.Context, reporterID string, limit, offset int) ([]models.Occurrence, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if reporterID != "" {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+occurrenceColumns+` FROM occurrences WHERE reporter_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			reporterID, limit, offset,
		)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+occurrenceColumns+` FROM occurrences ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset,
		)
	}
	if err != nil {
		return nil, err
	}
	return scanOccurrences(rows)
}

// ListByPriority returns occurrences of one priority, newest first.
func (r *OccurrenceRepo) ListByPriority(ctx context.Context, priority string, limit, offset int) ([]models.Occurrence, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+occurrenceColumns+` FROM occurrences WHERE priority = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		priority, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return scanOccurrences(rows)
}

// AppendPhoto adds photoURL to the end of the occurrence's photo list.
// Existing entries are kept and duplicates are not collapsed.
func (r *OccurrenceRepo) AppendPhoto(ctx context.Context, id, photoURL string) (*models.Occurrence, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE occurrences
		SET photos = array_append(photos, $1)
		WHERE id = $2
		RETURNING ` + occurrenceColumns
	return scanOccurrence(r.DB.QueryRowContext(ctx, query, photoURL, id))
}

// Resolve marks the occurrence resolved. Resolving again overwrites the
// previous resolution time and notes.
func (r *OccurrenceRepo) Resolve(ctx context.Context, id, notes string, at time.Time) (*models.Occurrence, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE occurrences
		SET resolved = TRUE, resolved_at = $1, resolution_notes = $2
		WHERE id = $3
		RETURNING ` + occurrenceColumns
	return scanOccurrence(r.DB.QueryRowContext(ctx, query, at, notes, id))
}
