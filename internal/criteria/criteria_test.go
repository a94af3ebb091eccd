package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ruckwell/achievement-service/internal/domain"
)

func achievementWithCriteria(criteria map[string]interface{}) domain.Achievement {
	return domain.Achievement{
		ID:       1,
		Key:      "test_achievement",
		Name:     "Test Achievement",
		IsActive: true,
		Criteria: criteria,
	}
}

func TestEvaluateFailsClosedOnMissingType(t *testing.T) {
	tests := []struct {
		name     string
		criteria map[string]interface{}
	}{
		{name: "nil criteria", criteria: nil},
		{name: "empty criteria", criteria: map[string]interface{}{}},
		{name: "type is not a string", criteria: map[string]interface{}{"type": 42}},
		{name: "unknown kind", criteria: map[string]interface{}{"type": "solve_world_hunger"}},
	}

	session := domain.Session{domain.FieldDistanceKm: 100.0}
	stats := domain.AggregateUserStats{TotalDistanceKm: 10000, SessionCount: 500}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ach := achievementWithCriteria(tt.criteria)
			assert.False(t, Evaluate(ach, session, stats))
			assert.False(t, Evaluate(ach, domain.Session{}, domain.AggregateUserStats{}), "empty inputs must also fail closed")
		})
	}
}

func TestRegistryDispatchIsExtensible(t *testing.T) {
	r := NewRegistry()
	ach := achievementWithCriteria(map[string]interface{}{"type": "custom_kind"})

	assert.False(t, r.Evaluate(ach, nil, domain.AggregateUserStats{}), "unregistered kind fails closed")

	r.Register("custom_kind", func(domain.Achievement, domain.Session, domain.AggregateUserStats) bool {
		return true
	})

	assert.True(t, r.Evaluate(ach, nil, domain.AggregateUserStats{}), "registered kind dispatches without call-site changes")
	assert.Contains(t, r.Kinds(), "custom_kind")
}

func TestEvaluationIsPure(t *testing.T) {
	ach := achievementWithCriteria(map[string]interface{}{
		"type":   KindSingleSessionDistance,
		"target": 10.0,
	})
	session := domain.Session{domain.FieldDistanceKm: 12.3}
	stats := domain.AggregateUserStats{}

	first := Evaluate(ach, session, stats)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(ach, session, stats), "evaluation must be deterministic")
	}
	assert.Equal(t, 12.3, session[domain.FieldDistanceKm], "session must not be mutated")
}

func TestDefaultRegistryHasAllKinds(t *testing.T) {
	kinds := Default.Kinds()

	expected := []string{
		KindFirstRuck,
		KindSingleSessionDistance,
		KindSessionWeight,
		KindPowerPoints,
		KindElevationGain,
		KindSessionDuration,
		KindPaceFasterThan,
		KindPaceSlowerThan,
		KindCumulativeDistance,
		KindSessionCount,
		KindStreakDays,
		KindCumulativeElevation,
		KindTimeOfDay,
	}
	for _, k := range expected {
		assert.Contains(t, kinds, k)
	}
}
