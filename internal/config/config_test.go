package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, SessionsMemory, cfg.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://ff:ff@db:5432/ff")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageType)
	assert.Equal(t, "postgres://ff:ff@db:5432/ff", cfg.DatabaseURL)
	assert.Equal(t, SessionsRedis, cfg.SessionStore)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgres")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load()
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	base := Config{StorageType: StorageMemory, SessionStore: SessionsMemory, SessionTTL: time.Hour}
	assert.NoError(t, base.Validate())

	bad := base
	bad.StorageType = "sqlite"
	assert.ErrorContains(t, bad.Validate(), "STORAGE_TYPE")

	bad = base
	bad.SessionStore = "cookie"
	assert.ErrorContains(t, bad.Validate(), "SESSION_STORE")

	bad = base
	bad.SessionTTL = 0
	assert.ErrorContains(t, bad.Validate(), "SESSION_TTL")
}
