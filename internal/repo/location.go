package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/vigil/internal/models"
)

const locationColumns = `id, name, description, camera_ip, camera_url, latitude, longitude, active, created_at, updated_at`

// ========================
// REPOSITORY STRUCT
// ========================

type LocationRepo struct {
	DB *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{DB: db}
}

func scanLocation(row interface{ Scan(...any) error }) (*models.Location, error) {
	l := &models.Location{}
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Description,
		&l.CameraIP,
		&l.CameraURL,
		&l.Latitude,
		&l.Longitude,
		&l.Active,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ========================
// CREATE LOCATION
// ========================

func (r *LocationRepo) Create(ctx context.Context, l models.Location) (*models.Location, error) {
	query := `
		INSERT INTO locations (id, name, description, camera_ip, camera_url, latitude, longitude, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + locationColumns
	return scanLocation(r.DB.QueryRowContext(ctx, query,
		newID(), l.Name, l.Description, l.CameraIP, l.CameraURL, l.Latitude, l.Longitude, l.Active,
	))
}

// ========================
// GET LOCATION BY ID
// ========================

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*models.Location, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanLocation(r.DB.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
}

// ========================
// UPDATE LOCATION BY ID
// ========================

func (r *LocationRepo) Update(ctx context.Context, id string, l models.Location) (*models.Location, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query := `
		UPDATE locations
		SET name = $1, description = $2, camera_ip = $3, camera_url = $4,
		    latitude = $5, longitude = $6, active = $7, updated_at = now()
		WHERE id = $8
		RETURNING ` + locationColumns
	return scanLocation(r.DB.QueryRowContext(ctx, query,
		l.Name, l.Description, l.CameraIP, l.CameraURL, l.Latitude, l.Longitude, l.Active, id,
	))
}

// ========================
// LIST LOCATIONS
// ========================

// List returns locations by name. activeOnly hides deactivated locations.
func (r *LocationRepo) List(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY name`
	if activeOnly {
		query = `SELECT ` + locationColumns + ` FROM locations WHERE active = TRUE ORDER BY name`
	}
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *l)
	}
	return list, rows.Err()
}

// Count returns the number of locations.
func (r *LocationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n)
	return n, err
}
