package achievement

// Cache key construction. Every dimension that changes a cached value's
// meaning must appear in the key; colliding variants would be a
// correctness bug, not a cosmetic one.
const (
	CacheKeyCatalogPrefix = "achievements:all:" // + unit preference variant
)

// Per-user earned-set cache sizing
const (
	DefaultUserCacheSize = 4096
)

// Defaults for the recent-unlocks listing
const (
	DefaultRecentLimit = 50
	MaxRecentLimit     = 200
	RecentWindowDays   = 7
)

// Metadata keys recorded on an unlock
const (
	MetadataKeyTriggeredBySession = "triggered_by_session"
	MetadataKeyCriteriaType       = "criteria_type"
)
