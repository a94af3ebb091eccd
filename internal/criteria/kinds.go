package criteria

import (
	"github.com/ruckwell/achievement-service/internal/domain"
)

// Criteria kind discriminators. These match the "type" values stored in
// achievement definitions.
const (
	KindFirstRuck             = "first_ruck"
	KindSingleSessionDistance = "single_session_distance"
	KindSessionWeight         = "session_weight"
	KindPowerPoints           = "power_points"
	KindElevationGain         = "elevation_gain"
	KindSessionDuration       = "session_duration"
	KindPaceFasterThan        = "pace_faster_than"
	KindPaceSlowerThan        = "pace_slower_than"
	KindCumulativeDistance    = "cumulative_distance"
	KindSessionCount          = "session_count"
	KindStreakDays            = "streak_days"
	KindCumulativeElevation   = "cumulative_elevation"
	KindTimeOfDay             = "time_of_day"
)

// Criteria parameter names.
const (
	ParamTarget     = "target"
	ParamBeforeHour = "before_hour"
	ParamAfterHour  = "after_hour"
)

// SentinelSlowPace stands in for a missing pace so that a session without
// pace data can never satisfy a faster-than threshold.
const SentinelSlowPace = 999999.0

func init() {
	Default.Register(KindFirstRuck, firstRuck)
	Default.Register(KindSingleSessionDistance, sessionThreshold(domain.FieldDistanceKm))
	Default.Register(KindSessionWeight, sessionThreshold(domain.FieldRuckWeightKg))
	Default.Register(KindPowerPoints, sessionThreshold(domain.FieldPowerPoints))
	Default.Register(KindElevationGain, sessionThreshold(domain.FieldElevationGain))
	Default.Register(KindSessionDuration, sessionThreshold(domain.FieldDuration))
	Default.Register(KindPaceFasterThan, paceFasterThan)
	Default.Register(KindPaceSlowerThan, paceSlowerThan)
	Default.Register(KindCumulativeDistance, statsThreshold(func(s domain.AggregateUserStats) float64 { return s.TotalDistanceKm }))
	Default.Register(KindSessionCount, statsThreshold(func(s domain.AggregateUserStats) float64 { return float64(s.SessionCount) }))
	Default.Register(KindStreakDays, statsThreshold(func(s domain.AggregateUserStats) float64 { return float64(s.CurrentStreakDays) }))
	Default.Register(KindCumulativeElevation, statsThreshold(func(s domain.AggregateUserStats) float64 { return s.TotalElevationGainM }))
	Default.Register(KindTimeOfDay, timeOfDay)
}

// firstRuck is unconditionally satisfied. Re-grant suppression is the
// resolution service's job via its already-earned check, so evaluating this
// kind for a user who holds the achievement never reaches here.
func firstRuck(_ domain.Achievement, _ domain.Session, _ domain.AggregateUserStats) bool {
	return true
}

// sessionThreshold builds a predicate satisfied when the named session
// field meets or exceeds the criteria target. Missing fields and targets
// both default to 0, so evaluation is always well-defined.
func sessionThreshold(field string) Predicate {
	return func(ach domain.Achievement, session domain.Session, _ domain.AggregateUserStats) bool {
		target := ach.CriteriaFloat(ParamTarget, 0)
		return session.Float(field) >= target
	}
}

// statsThreshold builds a predicate satisfied when the selected aggregate
// meets or exceeds the criteria target.
func statsThreshold(value func(domain.AggregateUserStats) float64) Predicate {
	return func(ach domain.Achievement, _ domain.Session, stats domain.AggregateUserStats) bool {
		target := ach.CriteriaFloat(ParamTarget, 0)
		return value(stats) >= target
	}
}

func paceFasterThan(ach domain.Achievement, session domain.Session, _ domain.AggregateUserStats) bool {
	target := ach.CriteriaFloat(ParamTarget, SentinelSlowPace)
	pace := session.FloatOr(domain.FieldPace, SentinelSlowPace)
	return pace <= target
}

func paceSlowerThan(ach domain.Achievement, session domain.Session, _ domain.AggregateUserStats) bool {
	target := ach.CriteriaFloat(ParamTarget, 0)
	return session.Float(domain.FieldPace) >= target
}

// timeOfDay covers early-bird/night-owl achievements: the criteria carry
// before_hour or after_hour plus a target count, compared against the
// precomputed session counts in the user's aggregate stats.
func timeOfDay(ach domain.Achievement, _ domain.Session, stats domain.AggregateUserStats) bool {
	target := int(ach.CriteriaFloat(ParamTarget, 1))

	if ach.HasCriteriaParam(ParamBeforeHour) {
		hour := int(ach.CriteriaFloat(ParamBeforeHour, 0))
		return stats.CountBefore(hour) >= target
	}
	if ach.HasCriteriaParam(ParamAfterHour) {
		hour := int(ach.CriteriaFloat(ParamAfterHour, 0))
		return stats.CountAfter(hour) >= target
	}

	// A time_of_day criteria without a window cannot be satisfied
	return false
}
