package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/vigil/internal/models"
)

func TestShiftRepo_Start(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO shifts .* ON CONFLICT \(guard_id\) WHERE status = 'active' DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), guardID, "Gus", fixedNow, "Gate A", "").
		WillReturnRows(sqlmock.NewRows(shiftCols).
			AddRow(shiftID, guardID, "Gus", fixedNow, nil, "active", "Gate A", "", fixedNow))

	repo := NewShiftRepo(db)
	s, err := repo.Start(context.Background(), &models.User{ID: guardID, Name: "Gus"}, "Gate A", "", fixedNow)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Status != models.ShiftActive || s.Location != "Gate A" {
		t.Errorf("unexpected shift: %+v", s)
	}
}

func TestShiftRepo_Start_AlreadyActive(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`INSERT INTO shifts`).
		WillReturnRows(sqlmock.NewRows(shiftCols))

	repo := NewShiftRepo(db)
	_, err := repo.Start(context.Background(), &models.User{ID: guardID, Name: "Gus"}, "Gate A", "", fixedNow)
	if !errors.Is(err, ErrActiveShift) {
		t.Errorf("expected ErrActiveShift, got: %v", err)
	}
}

func TestShiftRepo_Finish(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE shifts SET status = 'inactive', ended_at = \$1 WHERE id = \$2 AND status IN \('active', 'paused'\)`).
		WithArgs(fixedNow, shiftID).
		WillReturnRows(sqlmock.NewRows(shiftCols).
			AddRow(shiftID, guardID, "Gus", fixedNow, fixedNow, "inactive", "Gate A", "", fixedNow))

	repo := NewShiftRepo(db)
	s, err := repo.Finish(context.Background(), shiftID, fixedNow)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if s.Status != models.ShiftInactive || s.EndedAt == nil {
		t.Errorf("unexpected shift: %+v", s)
	}
}

func TestShiftRepo_Finish_NotActive(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`UPDATE shifts SET status = 'inactive'`).
		WillReturnRows(sqlmock.NewRows(shiftCols))

	repo := NewShiftRepo(db)
	if _, err := repo.Finish(context.Background(), shiftID, fixedNow); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive, got: %v", err)
	}
}

func TestShiftRepo_ListActive(t *testing.T) {
	db, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery(`FROM shifts WHERE status = 'active' ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(shiftCols).
			AddRow(shiftID, guardID, "Gus", fixedNow, nil, "active", "Gate A", "", fixedNow))

	repo := NewShiftRepo(db)
	list, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(list) != 1 || list[0].GuardID != guardID {
		t.Errorf("unexpected list: %+v", list)
	}
}
