package handlers

import (
	"bytes"
	"database/sql"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/vigil/internal/models"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/crucial707/vigil/internal/storage"
)

func newOccurrenceHandler(t *testing.T, db *sql.DB) *OccurrenceHandler {
	t.Helper()
	photos, err := storage.NewPhotoStore(t.TempDir())
	if err != nil {
		t.Fatalf("photo store: %v", err)
	}
	return &OccurrenceHandler{
		Repo:           repo.NewOccurrenceRepo(db),
		Rounds:         repo.NewRoundRepo(db),
		Photos:         photos,
		MaxUploadBytes: 1 << 20,
		Audit:          newRecorder(db),
		Now:            fixedClock,
	}
}

func TestOccurrenceHandler_Create_DefaultsPriority(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO occurrences`).
		WithArgs(sqlmock.AnyArg(), "Gate A", "suspicious", "medium", "someone at the fence", guardID, "Gina Guard").
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{}", false)...))
	mock.ExpectExec(`UPDATE rounds SET incident_count = incident_count \+ 1`).
		WithArgs(guardID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectAudit(mock, models.ActionCreateOccurrence)

	h := newOccurrenceHandler(t, db)
	body := mustJSON(t, map[string]string{"location": "Gate A", "type": "suspicious", "description": "someone at the fence"})
	rr := httptest.NewRecorder()
	h.CreateOccurrence(rr, as(requestWithChiURLParams("POST", "/occurrences", body, nil), guardUser))

	assertStatus(t, rr, http.StatusCreated)
	var out models.Occurrence
	decodeBody(t, rr, &out)
	if out.ID != occID || out.Priority != models.PriorityMedium || out.ReporterID != guardID || out.Resolved {
		t.Errorf("unexpected occurrence: %+v", out)
	}
	if out.Photos == nil || len(out.Photos) != 0 {
		t.Errorf("photos: got %v, want empty list", out.Photos)
	}
}

func TestOccurrenceHandler_Create_Validation(t *testing.T) {
	db, _, done := newMock(t)
	defer done()

	h := newOccurrenceHandler(t, db)
	body := mustJSON(t, map[string]string{"location": "Gate A", "type": "alien_landing", "priority": "urgent", "description": "x"})
	rr := httptest.NewRecorder()
	h.CreateOccurrence(rr, as(requestWithChiURLParams("POST", "/occurrences", body, nil), guardUser))

	assertStatus(t, rr, http.StatusBadRequest)
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rr, &out)
	if out.Fields["type"] == "" || out.Fields["priority"] == "" {
		t.Errorf("unexpected fields: %+v", out.Fields)
	}
}

func TestOccurrenceHandler_List_Visibility(t *testing.T) {
	t.Run("guard sees own", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectQuery(`FROM occurrences WHERE reporter_id = \$1 ORDER BY created_at DESC`).
			WithArgs(guardID, 100, 0).
			WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{}", false)...))

		h := newOccurrenceHandler(t, db)
		rr := httptest.NewRecorder()
		h.ListOccurrences(rr, as(requestWithChiURLParams("GET", "/occurrences", nil, nil), guardUser))

		assertStatus(t, rr, http.StatusOK)
		var out []models.Occurrence
		decodeBody(t, rr, &out)
		if len(out) != 1 || out[0].ID != occID {
			t.Errorf("unexpected list: %+v", out)
		}
	})

	t.Run("supervisor sees all", func(t *testing.T) {
		db, mock, done := newMock(t)
		defer done()
		mock.ExpectQuery(`FROM occurrences ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(1000, 20).
			WillReturnRows(sqlmock.NewRows(occurrenceCols).
				AddRow(occurrenceRow(occID, guardID, "medium", "{}", false)...).
				AddRow(occurrenceRow("99999999-9999-9999-9999-999999999999", otherGuardID, "high", "{}", false)...))

		h := newOccurrenceHandler(t, db)
		rr := httptest.NewRecorder()
		h.ListOccurrences(rr, as(requestWithChiURLParams("GET", "/occurrences?limit=5000&offset=20", nil, nil), supervisorUser))

		assertStatus(t, rr, http.StatusOK)
		var out []models.Occurrence
		decodeBody(t, rr, &out)
		if len(out) != 2 {
			t.Errorf("expected 2 occurrences, got %d", len(out))
		}
	})
}

func TestOccurrenceHandler_Get(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences WHERE id = \$1`).
		WithArgs(occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{}", false)...))
	mock.ExpectQuery(`FROM occurrences WHERE id = \$1`).
		WithArgs(occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{}", false)...))

	h := newOccurrenceHandler(t, db)
	params := map[string]string{"id": occID}

	rr := httptest.NewRecorder()
	h.GetOccurrence(rr, as(requestWithChiURLParams("GET", "/occurrences/"+occID, nil, params), guardUser))
	assertStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	h.GetOccurrence(rr, as(requestWithChiURLParams("GET", "/occurrences/"+occID, nil, params), otherGuardUser))
	assertStatus(t, rr, http.StatusForbidden)

	// Malformed ids never reach the store.
	rr = httptest.NewRecorder()
	h.GetOccurrence(rr, as(requestWithChiURLParams("GET", "/occurrences/abc", nil, map[string]string{"id": "abc"}), guardUser))
	assertStatus(t, rr, http.StatusNotFound)
}

func TestOccurrenceHandler_ListByPriority(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences WHERE priority = \$1`).
		WithArgs("critical", 100, 0).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "critical", "{}", false)...))

	h := newOccurrenceHandler(t, db)
	rr := httptest.NewRecorder()
	h.ListByPriority(rr, as(requestWithChiURLParams("GET", "/occurrences/priority/critical", nil, map[string]string{"priority": "critical"}), supervisorUser))
	assertStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	h.ListByPriority(rr, as(requestWithChiURLParams("GET", "/occurrences/priority/urgent", nil, map[string]string{"priority": "urgent"}), supervisorUser))
	assertStatus(t, rr, http.StatusBadRequest)
}

func multipartPhoto(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func photoRequest(t *testing.T, id, filename string, user *models.User) *http.Request {
	t.Helper()
	body, contentType := multipartPhoto(t, filename, []byte("fake-jpeg-bytes"))
	req := requestWithChiURLParams("POST", "/occurrences/"+id+"/photos", body.Bytes(), map[string]string{"id": id})
	req.Header.Set("Content-Type", contentType)
	return as(req, user)
}

func TestOccurrenceHandler_UploadPhoto_Appends(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences WHERE id = \$1`).
		WithArgs(occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{/uploads/old.jpg}", false)...))
	mock.ExpectQuery(`UPDATE occurrences SET photos = array_append\(photos, \$1\)`).
		WithArgs(sqlmock.AnyArg(), occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{/uploads/old.jpg,/uploads/new.png}", false)...))
	expectAudit(mock, models.ActionUploadPhoto)

	h := newOccurrenceHandler(t, db)
	rr := httptest.NewRecorder()
	h.UploadPhoto(rr, photoRequest(t, occID, "camera.PNG", guardUser))

	assertStatus(t, rr, http.StatusOK)
	var out map[string]string
	decodeBody(t, rr, &out)
	url := out["photo_url"]
	if !strings.HasPrefix(url, "/uploads/"+occID+"_") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected photo url %q", url)
	}
	stored, err := os.ReadFile(filepath.Join(h.Photos.Dir, strings.TrimPrefix(url, storage.URLPrefix)))
	if err != nil || string(stored) != "fake-jpeg-bytes" {
		t.Errorf("stored file: %q, %v", stored, err)
	}
}

func TestOccurrenceHandler_UploadPhoto_Forbidden(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences WHERE id = \$1`).
		WithArgs(occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{}", false)...))

	h := newOccurrenceHandler(t, db)
	rr := httptest.NewRecorder()
	h.UploadPhoto(rr, photoRequest(t, occID, "x.jpg", otherGuardUser))
	assertStatus(t, rr, http.StatusForbidden)

	entries, _ := os.ReadDir(h.Photos.Dir)
	if len(entries) != 0 {
		t.Errorf("no file should be written, found %d", len(entries))
	}
}

func TestOccurrenceHandler_UploadPhoto_NotFound(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences WHERE id = \$1`).
		WithArgs(occID).
		WillReturnError(sql.ErrNoRows)

	h := newOccurrenceHandler(t, db)
	rr := httptest.NewRecorder()
	h.UploadPhoto(rr, photoRequest(t, occID, "x.jpg", supervisorUser))
	assertStatus(t, rr, http.StatusNotFound)
}

func TestOccurrenceHandler_UploadPhoto_RemovesFileWhenUpdateFails(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences WHERE id = \$1`).
		WithArgs(occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(occurrenceRow(occID, guardID, "medium", "{}", false)...))
	mock.ExpectQuery(`UPDATE occurrences SET photos`).
		WillReturnError(sql.ErrConnDone)

	h := newOccurrenceHandler(t, db)
	rr := httptest.NewRecorder()
	h.UploadPhoto(rr, photoRequest(t, occID, "x.jpg", adminUser))
	assertStatus(t, rr, http.StatusInternalServerError)

	entries, _ := os.ReadDir(h.Photos.Dir)
	if len(entries) != 0 {
		t.Errorf("orphaned file left behind: %d entries", len(entries))
	}
}

func TestOccurrenceHandler_Resolve_Twice(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	for _, notes := range []string{"first", "second"} {
		row := occurrenceRow(occID, guardID, "medium", "{}", true)
		row[10] = notes
		mock.ExpectQuery(`UPDATE occurrences SET resolved = TRUE, resolved_at = \$1, resolution_notes = \$2 WHERE id = \$3`).
			WithArgs(fixedNow, notes, occID).
			WillReturnRows(sqlmock.NewRows(occurrenceCols).AddRow(row...))
		expectAudit(mock, models.ActionResolveOccurrence)
	}

	h := newOccurrenceHandler(t, db)
	for _, notes := range []string{"first", "second"} {
		body := mustJSON(t, map[string]string{"notes": notes})
		rr := httptest.NewRecorder()
		h.ResolveOccurrence(rr, as(requestWithChiURLParams("PUT", "/occurrences/"+occID+"/resolve", body, map[string]string{"id": occID}), supervisorUser))
		assertStatus(t, rr, http.StatusOK)

		var out models.Occurrence
		decodeBody(t, rr, &out)
		if !out.Resolved || out.ResolutionNotes != notes {
			t.Errorf("unexpected occurrence: %+v", out)
		}
	}
}

func TestOccurrenceHandler_Resolve_NotFound(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE occurrences SET resolved = TRUE`).
		WillReturnError(sql.ErrNoRows)

	h := newOccurrenceHandler(t, db)
	rr := httptest.NewRecorder()
	h.ResolveOccurrence(rr, as(requestWithChiURLParams("PUT", "/occurrences/"+occID+"/resolve", nil, map[string]string{"id": occID}), guardUser))

	assertStatus(t, rr, http.StatusNotFound)
	var out map[string]string
	decodeBody(t, rr, &out)
	if out["error"] != "occurrence not found" {
		t.Errorf("unexpected error: %q", out["error"])
	}
}
