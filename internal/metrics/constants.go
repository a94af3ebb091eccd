package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameCacheHits   = "cache_hits_total"
	MetricNameCacheMisses = "cache_misses_total"

	MetricNameSessionsChecked       = "achievement_sessions_checked_total"
	MetricNameAchievementsUnlocked  = "achievements_unlocked_total"
	MetricNameUnlockPersistFailures = "achievement_unlock_persist_failures_total"
	MetricNameStoreRequests         = "store_requests_total"
)

// Help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"

	HelpTextCacheHits   = "Total cache hits by cache name"
	HelpTextCacheMisses = "Total cache misses by cache name"

	HelpTextSessionsChecked       = "Total completed sessions evaluated for achievements"
	HelpTextAchievementsUnlocked  = "Total achievements unlocked, by achievement key"
	HelpTextUnlockPersistFailures = "Total unlock records that failed to persist"
	HelpTextStoreRequests         = "Total backing store requests by operation and outcome"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelCache     = "cache"
	LabelKey       = "achievement_key"
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
)

// Cache label values
const (
	CacheCatalog    = "catalog"
	CacheCategories = "categories"
	CacheEarnedSet  = "earned_set"
)

// Store operation label values
const (
	StoreOpListAchievements      = "list_achievements"
	StoreOpListUserAchievements  = "list_user_achievements"
	StoreOpGetAggregateStats     = "get_aggregate_stats"
	StoreOpInsertUserAchievement = "insert_user_achievement"
	StoreOpListRecent            = "list_recent_user_achievements"
	StoreOpListProgress          = "list_user_achievement_progress"
)

// Outcome label values
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeConflict = "conflict"
)

// HTTPLatencyBuckets covers sub-millisecond cache hits up to slow
// backing-store round trips
var HTTPLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
