package supabase

import "time"

// PostgREST paths
const (
	pathAchievements        = "/rest/v1/achievements"
	pathUserAchievements    = "/rest/v1/user_achievements"
	pathAchievementProgress = "/rest/v1/achievement_progress"
	pathAggregateStats      = "/rest/v1/rpc/get_user_aggregate_stats"
)

// Request headers
const (
	headerAPIKey        = "apikey"
	headerAuthorization = "Authorization"
	headerPrefer        = "Prefer"
	headerContentType   = "Content-Type"

	contentTypeJSON      = "application/json"
	preferReturnMinimal  = "return=minimal"
)

// DefaultTimeout bounds every round trip to the store
const DefaultTimeout = 10 * time.Second

// pgUniqueViolation is the PostgreSQL error code PostgREST reports on a
// duplicate (user_id, achievement_id) insert
const pgUniqueViolation = "23505"
