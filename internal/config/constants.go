package config

import "time"

// Store backend selection values
const (
	StoreBackendSupabase = "supabase"
	StoreBackendPostgres = "postgres"
)

// Database pool defaults (postgres backend)
const (
	DefaultDBMaxConns = 20
)

// Database pool duration defaults
const (
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute
)

// Cache TTL defaults.
// The catalogue changes rarely; per-user earned sets change on every unlock.
const (
	DefaultCatalogCacheTTLSeconds = 1800
	DefaultUserCacheTTLSeconds    = 60
)
