package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jobfolio/auth/pkg/jwtx"
)

type Config struct {
	Issuer        string // issuer claim stamped into and required from tokens
	AccessSecret  string // HS256 secret for access tokens
	RefreshSecret string // HS256 secret for refresh tokens; must differ from AccessSecret

	AccessTTL        time.Duration // access token lifetime (default: 10m)
	RefreshTTL       time.Duration // remembered refresh token lifetime (default: 30d)
	SessionTTL       time.Duration // non-remembered refresh ceiling (default: 12h)
	ImpersonationTTL time.Duration // impersonation token lifetime (default: 10m)

	DatabaseFile         string        // path to SQLite database file (default: ./auth.db)
	PepperFile           string        // path to password hashing pepper file (default: ./pepper)
	Env                  string        // environment (dev, staging, prod) (default: dev)
	LogLevel             string        // log level (debug, info, warn, error) (default: info)
	LogFormat            string        // log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // housekeeping interval (default: 1h)
}

// LoadConfig reads configuration from the environment, after loading a .env
// file if one exists alongside the binary. Real environment variables win
// over .env entries.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "jobfolio-auth"),
		AccessSecret:         os.Getenv("AUTH_ACCESS_SECRET"),
		RefreshSecret:        os.Getenv("AUTH_REFRESH_SECRET"),
		AccessTTL:            getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:           getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		SessionTTL:           getEnvDurationOrDefault("AUTH_SESSION_TTL", jwtx.DefaultSessionTokenTTL),
		ImpersonationTTL:     getEnvDurationOrDefault("AUTH_IMPERSONATION_TTL", jwtx.DefaultImpersonationTTL),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

// IsProd reports whether we are running in a production-like environment.
// Cookie Secure flags key off this.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "staging"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are treated as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
