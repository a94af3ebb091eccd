package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	Version     string
	APIKey      string // API key for authentication

	// Store gateway selection
	StoreBackend string // "supabase" or "postgres"

	// Supabase REST backend
	SupabaseURL        string
	SupabaseAnonKey    string // read-only, user-scoped queries
	SupabaseServiceKey string // privileged, used for writes

	// Postgres backend
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// Cache TTLs
	CatalogCacheTTL time.Duration
	UserCacheTTL    time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		Environment:        getEnv("ENVIRONMENT", "dev"),
		Version:            getEnv("VERSION", "dev"),
		APIKey:             getEnv("API_KEY", ""),
		StoreBackend:       getEnv("STORE_BACKEND", StoreBackendSupabase),
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBName:             getEnv("DB_NAME", "achievements"),
		DBMaxConns:         getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	catalogTTL, err := getEnvSeconds("CATALOG_CACHE_TTL_SECONDS", DefaultCatalogCacheTTLSeconds)
	if err != nil {
		return nil, err
	}
	cfg.CatalogCacheTTL = catalogTTL

	userTTL, err := getEnvSeconds("USER_CACHE_TTL_SECONDS", DefaultUserCacheTTLSeconds)
	if err != nil {
		return nil, err
	}
	cfg.UserCacheTTL = userTTL

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks required settings for the selected store backend
func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable must be set for security")
	}

	switch c.StoreBackend {
	case StoreBackendSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL must be set when STORE_BACKEND=%s", StoreBackendSupabase)
		}
		if c.SupabaseAnonKey == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY and SUPABASE_SERVICE_KEY must be set when STORE_BACKEND=%s", StoreBackendSupabase)
		}
	case StoreBackendPostgres:
		// Postgres settings all have workable defaults
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: must be %q or %q", c.StoreBackend, StoreBackendSupabase, StoreBackendPostgres)
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an integer environment variable, falling back to
// the default on missing or unparseable values.
func getEnvAsInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsDuration retrieves a duration environment variable ("10m", "2h"),
// falling back to the default on missing or unparseable values.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvSeconds reads an integer seconds value into a time.Duration
func getEnvSeconds(key string, defaultSeconds int) (time.Duration, error) {
	raw := getEnv(key, strconv.Itoa(defaultSeconds))
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	if secs <= 0 {
		return 0, fmt.Errorf("invalid %s value: must be positive", key)
	}
	return time.Duration(secs) * time.Second, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
