package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGorm      = "gorm"
	BackendFirestore = "firestore"

	AuthLocal    = "local"
	AuthFirebase = "firebase"

	// DefaultJWTSecret keeps local development zero-config. It must not sign
	// tokens in production.
	DefaultJWTSecret = "your-secret-key-change-in-production"
)

type Config struct {
	Port                  string
	StoreBackend          string
	DatabaseURL           string
	JWTSecret             string
	JWTTTL                time.Duration
	AuthProvider          string
	FirebaseCredentials   string
	FirebaseProjectID     string
	DeadlineCheckInterval time.Duration
	Location              *time.Location
	LogLevel              string
	LogFormat             string
	SeedAdminEmail        string
	CORSOrigins           string
}

// Load reads the environment, after merging a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		StoreBackend:          strings.ToLower(getEnv("STORE_BACKEND", BackendGorm)),
		DatabaseURL:           getEnv("DATABASE_URL", "goalforge.db"),
		JWTSecret:             getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:                getDuration("JWT_TTL", 7*24*time.Hour),
		AuthProvider:          strings.ToLower(getEnv("AUTH_PROVIDER", AuthLocal)),
		FirebaseCredentials:   getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseProjectID:     getEnv("FIREBASE_PROJECT_ID", ""),
		DeadlineCheckInterval: getDuration("DEADLINE_CHECK_INTERVAL", 30*time.Second),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		SeedAdminEmail:        strings.TrimSpace(getEnv("SEED_ADMIN_EMAIL", "")),
		CORSOrigins:           getEnv("CORS_ORIGINS", "*"),
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.StoreBackend != BackendGorm && c.StoreBackend != BackendFirestore {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendGorm, BackendFirestore, c.StoreBackend))
	}
	if c.AuthProvider != AuthLocal && c.AuthProvider != AuthFirebase {
		errs = append(errs, fmt.Errorf("AUTH_PROVIDER must be %q or %q, got %q", AuthLocal, AuthFirebase, c.AuthProvider))
	}
	if c.AuthProvider == AuthLocal && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required for local auth"))
	}
	if c.DeadlineCheckInterval < time.Second {
		errs = append(errs, errors.New("DEADLINE_CHECK_INTERVAL must be at least 1s"))
	}
	return errors.Join(errs...)
}

// WeakJWTSecret reports whether local auth would sign tokens with the
// built-in development secret.
func (c *Config) WeakJWTSecret() bool {
	return c.AuthProvider == AuthLocal && c.JWTSecret == DefaultJWTSecret
}

// UsesFirebase reports whether any component needs the Firebase Admin SDK.
func (c *Config) UsesFirebase() bool {
	return c.StoreBackend == BackendFirestore || c.AuthProvider == AuthFirebase || c.FirebaseCredentials != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
