package domain

// AggregateUserStats holds precomputed lifetime/rolling aggregates for a
// user, supplied by the store gateway. The evaluator treats these values as
// authoritative input and never recomputes them.
type AggregateUserStats struct {
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalElevationGainM  float64 `json:"total_elevation_gain_m"`
	SessionCount         int     `json:"session_count"`
	CurrentStreakDays    int     `json:"current_streak_days"`
	TotalPowerPoints     float64 `json:"total_power_points"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`

	// SessionsBeforeHour and SessionsAfterHour count sessions starting
	// before/after a given local hour, keyed by hour. Used by time-of-day
	// achievements (early bird, night owl).
	SessionsBeforeHour map[int]int `json:"sessions_before_hour,omitempty"`
	SessionsAfterHour  map[int]int `json:"sessions_after_hour,omitempty"`
}

// CountBefore returns the number of sessions started before the given hour.
func (s AggregateUserStats) CountBefore(hour int) int {
	if s.SessionsBeforeHour == nil {
		return 0
	}
	return s.SessionsBeforeHour[hour]
}

// CountAfter returns the number of sessions started after the given hour.
func (s AggregateUserStats) CountAfter(hour int) int {
	if s.SessionsAfterHour == nil {
		return 0
	}
	return s.SessionsAfterHour[hour]
}
