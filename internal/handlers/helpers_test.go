package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/go-chi/chi/v5"
)

const (
	guardID      = "11111111-1111-1111-1111-111111111111"
	adminID      = "22222222-2222-2222-2222-222222222222"
	occID        = "33333333-3333-3333-3333-333333333333"
	roundID      = "44444444-4444-4444-4444-444444444444"
	shiftID      = "55555555-5555-5555-5555-555555555555"
	locID        = "66666666-6666-6666-6666-666666666666"
	otherGuardID = "77777777-7777-7777-7777-777777777777"
	supervisorID = "88888888-8888-8888-8888-888888888888"
)

var (
	userCols       = []string{"id", "name", "email", "password_hash", "role", "active", "last_login", "created_at"}
	occurrenceCols = []string{"id", "location", "type", "priority", "description", "photos", "reporter_id", "reporter_name", "resolved", "resolved_at", "resolution_notes", "created_at"}
	roundCols      = []string{"id", "guard_id", "guard_name", "started_at", "ended_at", "status", "visited_locations", "notes", "incident_count", "created_at"}
	shiftCols      = []string{"id", "guard_id", "guard_name", "started_at", "ended_at", "status", "location", "notes", "created_at"}
	locationCols   = []string{"id", "name", "description", "camera_ip", "camera_url", "latitude", "longitude", "active", "created_at", "updated_at"}

	fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time { return fixedNow }

var (
	guardUser      = &models.User{ID: guardID, Name: "Gina Guard", Email: "gina@example.com", Role: models.RoleGuard, Active: true}
	otherGuardUser = &models.User{ID: otherGuardID, Name: "Otto Guard", Email: "otto@example.com", Role: models.RoleGuard, Active: true}
	supervisorUser = &models.User{ID: supervisorID, Name: "Sam Supervisor", Email: "sam@example.com", Role: models.RoleSupervisor, Active: true}
	adminUser      = &models.User{ID: adminID, Name: "Ada Admin", Email: "ada@example.com", Role: models.RoleAdministrator, Active: true}
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

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

// as attaches u as the authenticated caller.
func as(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), u))
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

func userRow(u *models.User, hash string) []driver.Value {
	return []driver.Value{u.ID, u.Name, u.Email, hash, u.Role, u.Active, nil, fixedNow}
}

func occurrenceRow(id, reporterID, priority, photos string, resolved bool) []driver.Value {
	var resolvedAt interface{}
	var notes interface{}
	if resolved {
		resolvedAt = fixedNow
		notes = "handled"
	}
	return []driver.Value{id, "Gate A", "suspicious", priority, "someone at the fence", photos, reporterID, "Gina Guard", resolved, resolvedAt, notes, fixedNow}
}

func roundRow(guard, status string) []driver.Value {
	return []driver.Value{roundID, guard, "Gina Guard", fixedNow, nil, status, "{Gate A,Lobby}", "", 0, fixedNow}
}

func shiftRow(guard, status string) []driver.Value {
	return []driver.Value{shiftID, guard, "Gina Guard", fixedNow, nil, status, "Main building", "", fixedNow}
}

// expectAudit expects one best-effort audit insert.
func expectAudit(mock sqlmock.Sqlmock, action string) {
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), action, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func newRecorder(db *sql.DB) *audit.Recorder {
	return audit.NewRecorder(repo.NewAuditRepo(db), nil)
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}
