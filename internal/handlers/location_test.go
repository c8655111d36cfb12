package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
)

func newLocationHandler(db *sql.DB) *LocationHandler {
	return &LocationHandler{Repo: repo.NewLocationRepo(db), Audit: newRecorder(db)}
}

func TestLocationHandler_Create(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO locations`).
		WithArgs(sqlmock.AnyArg(), "Gate A", "North entrance", "10.0.0.50", "", sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows(locationCols).
			AddRow(locID, "Gate A", "North entrance", "10.0.0.50", "", -23.55, -46.63, true, fixedNow, fixedNow))
	expectAudit(mock, models.ActionCreateLocation)

	h := newLocationHandler(db)
	body := mustJSON(t, map[string]interface{}{
		"name": "Gate A", "description": "North entrance", "camera_ip": "10.0.0.50",
		"latitude": -23.55, "longitude": -46.63,
	})
	rr := httptest.NewRecorder()
	h.CreateLocation(rr, as(requestWithChiURLParams("POST", "/locations", body, nil), supervisorUser))

	assertStatus(t, rr, http.StatusCreated)
	var out models.Location
	decodeBody(t, rr, &out)
	if out.ID != locID || !out.Active || out.Latitude == nil || *out.Latitude != -23.55 {
		t.Errorf("unexpected location: %+v", out)
	}
}

func TestLocationHandler_Create_Validation(t *testing.T) {
	db, _, done := newMock(t)
	defer done()

	h := newLocationHandler(db)
	body := mustJSON(t, map[string]interface{}{"name": "G", "camera_ip": "not-an-ip", "latitude": 123.0})
	rr := httptest.NewRecorder()
	h.CreateLocation(rr, as(requestWithChiURLParams("POST", "/locations", body, nil), adminUser))

	assertStatus(t, rr, http.StatusBadRequest)
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rr, &out)
	for _, f := range []string{"name", "camera_ip", "latitude"} {
		if out.Fields[f] == "" {
			t.Errorf("expected field error for %s, got %+v", f, out.Fields)
		}
	}
}

func TestLocationHandler_Update(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE locations SET name = \$1`).
		WithArgs("Gate B", "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), false, locID).
		WillReturnRows(sqlmock.NewRows(locationCols).
			AddRow(locID, "Gate B", "", "", "", nil, nil, false, fixedNow, fixedNow))
	expectAudit(mock, models.ActionUpdateLocation)

	h := newLocationHandler(db)
	body := mustJSON(t, map[string]interface{}{"name": "Gate B", "active": false})
	rr := httptest.NewRecorder()
	h.UpdateLocation(rr, as(requestWithChiURLParams("PUT", "/locations/"+locID, body, map[string]string{"id": locID}), supervisorUser))

	assertStatus(t, rr, http.StatusOK)
	var out models.Location
	decodeBody(t, rr, &out)
	if out.Name != "Gate B" || out.Active {
		t.Errorf("unexpected location: %+v", out)
	}
}

func TestLocationHandler_Update_NotFound(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE locations`).WillReturnError(sql.ErrNoRows)

	h := newLocationHandler(db)
	body := mustJSON(t, map[string]interface{}{"name": "Gate B"})
	rr := httptest.NewRecorder()
	h.UpdateLocation(rr, as(requestWithChiURLParams("PUT", "/locations/"+locID, body, map[string]string{"id": locID}), supervisorUser))
	assertStatus(t, rr, http.StatusNotFound)
}

func TestLocationHandler_List(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM locations WHERE active = TRUE ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(locationCols).
			AddRow(locID, "Gate A", "", "", "", nil, nil, true, fixedNow, fixedNow))
	mock.ExpectQuery(`FROM locations ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(locationCols))

	h := newLocationHandler(db)
	rr := httptest.NewRecorder()
	h.ListLocations(rr, as(requestWithChiURLParams("GET", "/locations", nil, nil), guardUser))
	assertStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	h.ListLocations(rr, as(requestWithChiURLParams("GET", "/locations?all=true", nil, nil), guardUser))
	assertStatus(t, rr, http.StatusOK)
	if got := rr.Body.String(); got != "[]\n" {
		t.Errorf("empty list body: got %q", got)
	}
}
