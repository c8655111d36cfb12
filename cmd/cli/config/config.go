package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIURL = "http://localhost:8080/api"
	tokenFileName = ".vigil_token"
)

// ErrNoToken means nobody has logged in from this machine yet.
var ErrNoToken = errors.New("not logged in: run \"vigil login\" first")

// APIURL returns the base URL of the Vigil API, including the /api prefix.
// It can be overridden with the VIGIL_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("VIGIL_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is where the bearer token is kept between commands.
// VIGIL_TOKEN_FILE overrides the default of ~/.vigil_token.
func TokenPath() string {
	if v := os.Getenv("VIGIL_TOKEN_FILE"); v != "" {
		return v
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return tokenFileName
	}
	return filepath.Join(dir, tokenFileName)
}

func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0o600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// ClearToken removes the stored token. It reports false when there was none.
func ClearToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
