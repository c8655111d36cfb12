package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/vigil/internal/models"
)

func TestOccurrenceRepo_Create(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO occurrences \(id, location, type, priority, description, reporter_id, reporter_name\)`).
		WithArgs(sqlmock.AnyArg(), "Gate A", "suspicious", "medium", "person loitering", guardID, "Gus").
		WillReturnRows(sqlmock.NewRows(occurrenceCols).
			AddRow(occID, "Gate A", "suspicious", "medium", "person loitering", "{}", guardID, "Gus", false, nil, nil, fixedNow))

	repo := NewOccurrenceRepo(db)
	o, err := repo.Create(context.Background(), "Gate A", "suspicious", "medium", "person loitering",
		&models.User{ID: guardID, Name: "Gus"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.ID != occID || o.Priority != "medium" || o.Resolved {
		t.Errorf("unexpected occurrence: %+v", o)
	}
	if o.Photos == nil || len(o.Photos) != 0 {
		t.Errorf("expected empty non-nil photos, got %#v", o.Photos)
	}
}

func TestOccurrenceRepo_List_ByReporter(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences WHERE reporter_id = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(guardID, 100, 0).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).
			AddRow(occID, "Gate A", "theft", "high", "bike stolen", "{/uploads/a.jpg}", guardID, "Gus", false, nil, nil, fixedNow))

	repo := NewOccurrenceRepo(db)
	list, err := repo.List(context.Background(), guardID, 100, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || len(list[0].Photos) != 1 || list[0].Photos[0] != "/uploads/a.jpg" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestOccurrenceRepo_List_All(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM occurrences ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 10).
		WillReturnRows(sqlmock.NewRows(occurrenceCols))

	repo := NewOccurrenceRepo(db)
	list, err := repo.List(context.Background(), "", 50, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
}

func TestOccurrenceRepo_AppendPhoto(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE occurrences SET photos = array_append\(photos, \$1\) WHERE id = \$2`).
		WithArgs("/uploads/b.jpg", occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).
			AddRow(occID, "Gate A", "theft", "high", "bike stolen", "{/uploads/a.jpg,/uploads/b.jpg}", guardID, "Gus", false, nil, nil, fixedNow))

	repo := NewOccurrenceRepo(db)
	o, err := repo.AppendPhoto(context.Background(), occID, "/uploads/b.jpg")
	if err != nil {
		t.Fatalf("AppendPhoto: %v", err)
	}
	if len(o.Photos) != 2 || o.Photos[0] != "/uploads/a.jpg" || o.Photos[1] != "/uploads/b.jpg" {
		t.Errorf("unexpected photos: %v", o.Photos)
	}
}

func TestOccurrenceRepo_Resolve(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE occurrences SET resolved = TRUE, resolved_at = \$1, resolution_notes = \$2 WHERE id = \$3`).
		WithArgs(fixedNow, "handled", occID).
		WillReturnRows(sqlmock.NewRows(occurrenceCols).
			AddRow(occID, "Gate A", "theft", "high", "bike stolen", "{}", guardID, "Gus", true, fixedNow, "handled", fixedNow))

	repo := NewOccurrenceRepo(db)
	o, err := repo.Resolve(context.Background(), occID, "handled", fixedNow)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !o.Resolved || o.ResolutionNotes != "handled" || o.ResolvedAt == nil {
		t.Errorf("unexpected occurrence: %+v", o)
	}
}

func TestOccurrenceRepo_Resolve_NotFound(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE occurrences SET resolved = TRUE`).
		WillReturnRows(sqlmock.NewRows(occurrenceCols))

	repo := NewOccurrenceRepo(db)
	if _, err := repo.Resolve(context.Background(), occID, "x", fixedNow); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
