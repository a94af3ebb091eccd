package domain

import "time"

// Session is a read-only snapshot of one logged activity, an open mapping
// of named fields supplied by the caller. The evaluator never mutates it.
type Session map[string]interface{}

// Float returns the named numeric field, defaulting to 0 when absent or
// non-numeric. Criteria predicates rely on this default being well-defined
// rather than propagating missing-field errors.
func (s Session) Float(field string) float64 {
	return s.FloatOr(field, 0)
}

// FloatOr returns the named numeric field or the provided default.
func (s Session) FloatOr(field string, def float64) float64 {
	if s == nil {
		return def
	}
	switch v := s[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// String returns the named string field, or "" when absent.
func (s Session) String(field string) string {
	if s == nil {
		return ""
	}
	v, _ := s[field].(string)
	return v
}

// StartTime parses the session's start_time field (RFC 3339).
// Returns the zero time when the field is absent or malformed.
func (s Session) StartTime() time.Time {
	raw := s.String(FieldStartTime)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Session field names used by criteria predicates.
const (
	FieldSessionID     = "id"
	FieldDistanceKm    = "distance_km"
	FieldRuckWeightKg  = "ruck_weight_kg"
	FieldPowerPoints   = "power_points"
	FieldElevationGain = "elevation_gain_m"
	FieldDuration      = "duration_seconds"
	FieldPace          = "pace_seconds_per_km"
	FieldStartTime     = "start_time"
)
