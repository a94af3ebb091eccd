package domain

import "time"

// Achievement is an immutable achievement definition owned by the backing
// store. The criteria mapping always carries a "type" discriminator naming
// the criteria kind plus kind-specific parameters such as "target".
type Achievement struct {
	ID             int64                  `json:"id"`
	Key            string                 `json:"achievement_key"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category"`
	Tier           string                 `json:"tier"`
	Criteria       map[string]interface{} `json:"criteria"`
	IconName       string                 `json:"icon_name,omitempty"`
	IsActive       bool                   `json:"is_active"`
	UnitPreference string                 `json:"unit_preference,omitempty"`
	CreatedAt      time.Time              `json:"created_at,omitempty"`
	UpdatedAt      time.Time              `json:"updated_at,omitempty"`
}

// CriteriaType returns the criteria kind discriminator, or "" when the
// criteria mapping is missing or carries no type.
func (a Achievement) CriteriaType() string {
	if a.Criteria == nil {
		return ""
	}
	t, _ := a.Criteria["type"].(string)
	return t
}

// CriteriaFloat returns the named numeric criteria parameter.
// Missing or non-numeric parameters resolve to the provided default so a
// malformed definition can never error out of evaluation.
func (a Achievement) CriteriaFloat(name string, def float64) float64 {
	if a.Criteria == nil {
		return def
	}
	switch v := a.Criteria[name].(type) {
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

// HasCriteriaParam reports whether the named parameter is present.
func (a Achievement) HasCriteriaParam(name string) bool {
	if a.Criteria == nil {
		return false
	}
	_, ok := a.Criteria[name]
	return ok
}

// UserAchievement records the first time a user satisfied an achievement.
// Exactly one record exists per (user, achievement) pair.
type UserAchievement struct {
	ID             int64                  `json:"id,omitempty"`
	UserID         string                 `json:"user_id"`
	AchievementID  int64                  `json:"achievement_id"`
	AchievementKey string                 `json:"achievement_key,omitempty"`
	SessionID      string                 `json:"session_id,omitempty"`
	EarnedAt       time.Time              `json:"earned_at"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Achievement    *Achievement           `json:"achievement,omitempty"`
}

// AchievementProgress tracks a user's partial progress toward an
// achievement not yet earned. Progress rows are maintained by the backing
// store; this service only reads them.
type AchievementProgress struct {
	ID            int64        `json:"id,omitempty"`
	UserID        string       `json:"user_id"`
	AchievementID int64        `json:"achievement_id"`
	CurrentValue  float64      `json:"current_value"`
	TargetValue   float64      `json:"target_value,omitempty"`
	LastUpdated   time.Time    `json:"last_updated,omitempty"`
	Achievement   *Achievement `json:"achievement,omitempty"`
}

// AchievementStats summarizes a user's progress through the catalogue.
type AchievementStats struct {
	TotalEarned          int            `json:"total_earned"`
	TotalAvailable       int            `json:"total_available"`
	CompletionPercentage float64        `json:"completion_percentage"`
	ByCategory           map[string]int `json:"by_category"`
	ByTier               map[string]int `json:"by_tier"`
}
