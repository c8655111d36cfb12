package repo

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	guardID = "11111111-1111-1111-1111-111111111111"
	adminID = "22222222-2222-2222-2222-222222222222"
	occID   = "33333333-3333-3333-3333-333333333333"
	roundID = "44444444-4444-4444-4444-444444444444"
	shiftID = "55555555-5555-5555-5555-555555555555"
	locID   = "66666666-6666-6666-6666-666666666666"
)

var (
	userCols       = []string{"id", "name", "email", "password_hash", "role", "active", "last_login", "created_at"}
	occurrenceCols = []string{"id", "location", "type", "priority", "description", "photos", "reporter_id", "reporter_name", "resolved", "resolved_at", "resolution_notes", "created_at"}
	roundCols      = []string{"id", "guard_id", "guard_name", "started_at", "ended_at", "status", "visited_locations", "notes", "incident_count", "created_at"}
	shiftCols      = []string{"id", "guard_id", "guard_name", "started_at", "ended_at", "status", "location", "notes", "created_at"}
	locationCols   = []string{"id", "name", "description", "camera_ip", "camera_url", "latitude", "longitude", "active", "created_at", "updated_at"}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return db, mock, func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations: %v", err)
		}
		db.Close()
	}
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
