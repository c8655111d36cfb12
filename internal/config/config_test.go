package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/vigil?sslmode=disable")
	t.Setenv("JWT_EXPIRE_MINUTES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 480, cfg.JWTExpireMinutes)
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Nil(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Equal(t, 5, cfg.LoginBurst)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vigil")
	t.Setenv("JWT_EXPIRE_MINUTES", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,http://localhost:3000 ")
	t.Setenv("SEED_SAMPLE_DATA", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
	assert.Equal(t, []string{"https://a.example.com", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
}

func TestValidate(t *testing.T) {
	base := Config{DatabaseURL: "postgres://localhost/vigil", JWTSecret: DefaultJWTSecret, Env: "dev"}
	require.NoError(t, base.Validate())

	missingDB := base
	missingDB.DatabaseURL = ""
	assert.Error(t, missingDB.Validate())

	prodDefaultSecret := base
	prodDefaultSecret.Env = "prod"
	assert.Error(t, prodDefaultSecret.Validate())

	prodDefaultAdmin := prodDefaultSecret
	prodDefaultAdmin.JWTSecret = "a-long-random-production-secret"
	prodDefaultAdmin.AdminPassword = DefaultAdminPassword
	assert.EqualError(t, prodDefaultAdmin.Validate(), "ADMIN_PASSWORD must be set to a non-default value in prod")

	prodEmptyAdmin := prodDefaultAdmin
	prodEmptyAdmin.AdminPassword = ""
	assert.Error(t, prodEmptyAdmin.Validate())

	prodOK := prodDefaultAdmin
	prodOK.AdminPassword = "a-strong-admin-password"
	assert.NoError(t, prodOK.Validate())

	devDefaultAdmin := base
	devDefaultAdmin.AdminPassword = DefaultAdminPassword
	assert.NoError(t, devDefaultAdmin.Validate())

	halfTLS := base
	halfTLS.TLSCertFile = "cert.pem"
	assert.Error(t, halfTLS.Validate())
}
