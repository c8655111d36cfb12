package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAPIURL(t *testing.T) {
	t.Setenv("VIGIL_API_URL", "")
	if got := APIURL(); got != defaultAPIURL {
		t.Fatalf("default: got %q", got)
	}
	t.Setenv("VIGIL_API_URL", "https://vigil.example.com/api/")
	if got := APIURL(); got != "https://vigil.example.com/api" {
		t.Fatalf("override: got %q", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("VIGIL_TOKEN_FILE", filepath.Join(t.TempDir(), "token"))

	if _, err := LoadToken(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken before login, got %v", err)
	}
	if err := SaveToken("abc.def.ghi"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err := LoadToken()
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("load: %q, %v", token, err)
	}

	removed, err := ClearToken()
	if err != nil || !removed {
		t.Fatalf("clear: %v, %v", removed, err)
	}
	removed, err = ClearToken()
	if err != nil || removed {
		t.Fatalf("second clear: %v, %v", removed, err)
	}
}
