package db

import "testing"

func TestDSN(t *testing.T) {
	got, err := DSN("postgres://u:p@localhost:5432/vigil?sslmode=disable", "")
	if err != nil || got != "postgres://u:p@localhost:5432/vigil?sslmode=disable" {
		t.Fatalf("DSN without override: got %q, %v", got, err)
	}

	got, err = DSN("postgres://u:p@localhost:5432/vigil?sslmode=disable", "vigil_test")
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	if got != "postgres://u:p@localhost:5432/vigil_test?sslmode=disable" {
		t.Errorf("DSN override: got %q", got)
	}
	if Name(got) != "vigil_test" {
		t.Errorf("Name: got %q", Name(got))
	}

	if _, err := DSN("host=localhost dbname=vigil", "other"); err == nil {
		t.Error("expected error overriding name of a key/value DSN")
	}
}
