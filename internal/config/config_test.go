package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "DATABASE_URL", "JWT_SECRET", "JWT_TTL", "AUTH_PROVIDER", "DEADLINE_CHECK_INTERVAL", "TIMEZONE", "FIREBASE_CREDENTIALS"} {
		t.Setenv(key, "")
	}
	t.Setenv("STORE_BACKEND", "gorm")
	t.Setenv("AUTH_PROVIDER", "local")
	t.Setenv("TIMEZONE", "UTC")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendGorm, cfg.StoreBackend)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.WeakJWTSecret())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.DeadlineCheckInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.False(t, cfg.UsesFirebase())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Firestore")
	t.Setenv("AUTH_PROVIDER", "firebase")
	t.Setenv("DEADLINE_CHECK_INTERVAL", "1m")
	t.Setenv("JWT_TTL", "garbage")
	t.Setenv("TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendFirestore, cfg.StoreBackend)
	assert.Equal(t, time.Minute, cfg.DeadlineCheckInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.True(t, cfg.UsesFirebase())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("AUTH_PROVIDER", "local")
	t.Setenv("TIMEZONE", "UTC")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")

	t.Setenv("STORE_BACKEND", "gorm")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "TIMEZONE")
}

func TestJWTSecret(t *testing.T) {
	t.Setenv("STORE_BACKEND", "gorm")
	t.Setenv("AUTH_PROVIDER", "local")
	t.Setenv("TIMEZONE", "UTC")

	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-deployment-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.WeakJWTSecret())

	// Firebase auth never signs local tokens.
	t.Setenv("JWT_SECRET", DefaultJWTSecret)
	t.Setenv("AUTH_PROVIDER", "firebase")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.WeakJWTSecret())
}
