package achievement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruckwell/achievement-service/internal/domain"
)

func first10K() domain.Achievement {
	return domain.Achievement{
		ID:       1,
		Key:      "first_10k",
		Name:     "First 10K",
		Category: "distance",
		Tier:     "bronze",
		IsActive: true,
		Criteria: map[string]interface{}{
			"type":   "single_session_distance",
			"target": 10.0,
		},
	}
}

func firstRuckAch() domain.Achievement {
	return domain.Achievement{
		ID:       2,
		Key:      "first_ruck",
		Name:     "First Ruck",
		Category: "milestones",
		Tier:     "bronze",
		IsActive: true,
		Criteria: map[string]interface{}{"type": "first_ruck"},
	}
}

func newTestService(repo *FakeRepository) Service {
	return NewService(repo, time.Hour, time.Hour)
}

func TestListAchievementsCachesPerVariant(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(
		domain.Achievement{ID: 1, Key: "universal", IsActive: true},
		domain.Achievement{ID: 2, Key: "metric_only", IsActive: true, UnitPreference: domain.UnitMetric},
		domain.Achievement{ID: 3, Key: "imperial_only", IsActive: true, UnitPreference: domain.UnitImperial},
	)
	svc := newTestService(repo)
	ctx := context.Background()

	metric, err := svc.ListAchievements(ctx, domain.UnitMetric)
	require.NoError(t, err)
	assert.Len(t, metric, 2)
	assert.Equal(t, 1, repo.ListCalls)

	// Repeated metric requests are served from cache
	_, err = svc.ListAchievements(ctx, domain.UnitMetric)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.ListCalls)

	// The imperial variant is a distinct cache key
	imperial, err := svc.ListAchievements(ctx, domain.UnitImperial)
	require.NoError(t, err)
	assert.Len(t, imperial, 2)
	assert.Equal(t, "imperial_only", imperial[1].Key)
	assert.Equal(t, 2, repo.ListCalls)
}

func TestListAchievementsDefaultsToMetric(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(
		domain.Achievement{ID: 1, Key: "metric_only", IsActive: true, UnitPreference: domain.UnitMetric},
		domain.Achievement{ID: 2, Key: "imperial_only", IsActive: true, UnitPreference: domain.UnitImperial},
	)
	svc := newTestService(repo)

	got, err := svc.ListAchievements(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "metric_only", got[0].Key)
}

func TestListAchievementsRejectsUnknownUnit(t *testing.T) {
	svc := newTestService(NewFakeRepository())

	_, err := svc.ListAchievements(context.Background(), "nautical")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListAchievementsExcludesInactive(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(
		domain.Achievement{ID: 1, Key: "active", IsActive: true},
		domain.Achievement{ID: 2, Key: "retired", IsActive: false},
	)
	svc := newTestService(repo)

	got, err := svc.ListAchievements(context.Background(), domain.UnitMetric)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "active", got[0].Key)
}

func TestListAchievementsFetchFailureNotCached(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	repo.ListErr = errors.New("store down")
	svc := newTestService(repo)

	_, err := svc.ListAchievements(context.Background(), domain.UnitMetric)
	require.Error(t, err)

	repo.ListErr = nil
	got, err := svc.ListAchievements(context.Background(), domain.UnitMetric)
	require.NoError(t, err)
	assert.Len(t, got, 1, "recovery after a transient failure must hit the store again")
}

func TestListCategories(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(
		domain.Achievement{ID: 1, Key: "a", Category: "distance", IsActive: true},
		domain.Achievement{ID: 2, Key: "b", Category: "streaks", IsActive: true},
		domain.Achievement{ID: 3, Key: "c", Category: "distance", IsActive: true},
		domain.Achievement{ID: 4, Key: "d", Category: "retired", IsActive: false},
	)
	svc := newTestService(repo)

	got, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"distance", "streaks"}, got)
}

func TestCheckSessionConcreteScenario(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	svc := newTestService(repo)
	ctx := context.Background()

	session := domain.Session{
		domain.FieldSessionID:  "session-42",
		domain.FieldDistanceKm: 12.3,
	}

	newly, err := svc.CheckSession(ctx, "user-1", "", session)
	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "first_10k", newly[0].Key)
	assert.Equal(t, 1, repo.EarnedCount("user-1"))

	// Second resolution with identical inputs is a no-op
	newly, err = svc.CheckSession(ctx, "user-1", "", session)
	require.NoError(t, err)
	assert.Empty(t, newly)
	assert.Equal(t, 1, repo.EarnedCount("user-1"), "re-satisfying an earned achievement must not duplicate the record")
}

func TestCheckSessionRecordsMetadata(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	svc := newTestService(repo)

	session := domain.Session{
		domain.FieldSessionID:  "session-7",
		domain.FieldDistanceKm: 15.5,
	}

	_, err := svc.CheckSession(context.Background(), "user-1", "", session)
	require.NoError(t, err)

	earned, err := repo.ListUserAchievements(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, earned, 1)

	rec := earned[0]
	assert.Equal(t, "first_10k", rec.AchievementKey)
	assert.Equal(t, "session-7", rec.SessionID)
	assert.False(t, rec.EarnedAt.IsZero())
	assert.Equal(t, "session-7", rec.Metadata[MetadataKeyTriggeredBySession])
	assert.Equal(t, "single_session_distance", rec.Metadata[MetadataKeyCriteriaType])
	assert.Equal(t, 15.5, rec.Metadata[domain.FieldDistanceKm], "metadata should capture the qualifying distance")
}

func TestCheckSessionBelowThreshold(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	svc := newTestService(repo)

	newly, err := svc.CheckSession(context.Background(), "user-1", "", domain.Session{
		domain.FieldDistanceKm: 9.9,
	})

	require.NoError(t, err)
	assert.Empty(t, newly)
	assert.Equal(t, 0, repo.EarnedCount("user-1"), "unsatisfied achievements must not be persisted")
}

func TestCheckSessionFirstRuckGatedByEarnedSet(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(firstRuckAch())
	svc := newTestService(repo)
	ctx := context.Background()

	newly, err := svc.CheckSession(ctx, "user-1", "", domain.Session{domain.FieldDistanceKm: 1.0})
	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "first_ruck", newly[0].Key)

	newly, err = svc.CheckSession(ctx, "user-1", "", domain.Session{domain.FieldDistanceKm: 2.0})
	require.NoError(t, err)
	assert.Empty(t, newly, "first_ruck is suppressed by the already-earned check, not the predicate")
}

func TestCheckSessionEvaluatesAggregateKinds(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(domain.Achievement{
		ID:       5,
		Key:      "road_warrior",
		IsActive: true,
		Criteria: map[string]interface{}{
			"type":   "cumulative_distance",
			"target": 1000.0,
		},
	})
	repo.SeedStats("user-1", domain.AggregateUserStats{TotalDistanceKm: 1024.5})
	svc := newTestService(repo)

	newly, err := svc.CheckSession(context.Background(), "user-1", "", domain.Session{domain.FieldDistanceKm: 5.0})

	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "road_warrior", newly[0].Key)
}

func TestCheckSessionPersistConflictIsNotNewlyEarned(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	svc := newTestService(repo)
	ctx := context.Background()

	// Prime the earned cache while the user has no records
	_, err := svc.GetUserAchievements(ctx, "user-1")
	require.NoError(t, err)

	// A concurrent session wins the race and stores the unlock first
	require.NoError(t, repo.InsertUserAchievement(ctx, &domain.UserAchievement{
		UserID:         "user-1",
		AchievementID:  1,
		AchievementKey: "first_10k",
		EarnedAt:       time.Now().UTC(),
	}))

	newly, err := svc.CheckSession(ctx, "user-1", "", domain.Session{domain.FieldDistanceKm: 12.0})

	require.NoError(t, err, "a persistence conflict is success, not an error")
	assert.Empty(t, newly)
	assert.Equal(t, 1, repo.EarnedCount("user-1"))
}

func TestCheckSessionPersistFailureIsolated(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	repo.InsertErr = errors.New("write timeout")
	svc := newTestService(repo)

	newly, err := svc.CheckSession(context.Background(), "user-1", "", domain.Session{domain.FieldDistanceKm: 12.0})

	require.NoError(t, err, "a per-item persistence failure must not fail the batch")
	assert.Empty(t, newly, "a failed write is not newly earned")

	// The unlock is re-attempted naturally on the next session
	repo.InsertErr = nil
	newly, err = svc.CheckSession(context.Background(), "user-1", "", domain.Session{domain.FieldDistanceKm: 12.0})
	require.NoError(t, err)
	assert.Len(t, newly, 1)
}

func TestCheckSessionCatalogueFailureIsFatal(t *testing.T) {
	repo := NewFakeRepository()
	repo.ListErr = errors.New("store down")
	svc := newTestService(repo)

	_, err := svc.CheckSession(context.Background(), "user-1", "", domain.Session{})

	require.Error(t, err)
}

func TestCheckSessionStatsFailureIsFatal(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	repo.StatsErr = errors.New("rpc failed")
	svc := newTestService(repo)

	_, err := svc.CheckSession(context.Background(), "user-1", "", domain.Session{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregate stats")
}

func TestCheckSessionValidatesInput(t *testing.T) {
	svc := newTestService(NewFakeRepository())

	_, err := svc.CheckSession(context.Background(), "", "", domain.Session{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user id")

	_, err = svc.CheckSession(context.Background(), "user-1", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session")
}

func TestCheckSessionRespectsUnitPreference(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(domain.Achievement{
		ID:             9,
		Key:            "imperial_10mi",
		IsActive:       true,
		UnitPreference: domain.UnitImperial,
		Criteria: map[string]interface{}{
			"type":   "single_session_distance",
			"target": 0.0,
		},
	})
	svc := newTestService(repo)

	newly, err := svc.CheckSession(context.Background(), "user-1", domain.UnitMetric, domain.Session{domain.FieldDistanceKm: 50.0})
	require.NoError(t, err)
	assert.Empty(t, newly, "imperial-only achievements are not candidates for metric users")

	newly, err = svc.CheckSession(context.Background(), "user-2", domain.UnitImperial, domain.Session{domain.FieldDistanceKm: 50.0})
	require.NoError(t, err)
	assert.Len(t, newly, 1)
}

func TestGetUserAchievementStats(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(
		domain.Achievement{ID: 1, Key: "a", Category: "distance", Tier: "bronze", IsActive: true,
			Criteria: map[string]interface{}{"type": "first_ruck"}},
		domain.Achievement{ID: 2, Key: "b", Category: "distance", Tier: "silver", IsActive: true},
		domain.Achievement{ID: 3, Key: "c", Category: "streaks", Tier: "bronze", IsActive: true},
		domain.Achievement{ID: 4, Key: "d", Category: "streaks", Tier: "gold", IsActive: true},
	)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CheckSession(ctx, "user-1", "", domain.Session{domain.FieldDistanceKm: 1.0})
	require.NoError(t, err)

	stats, err := svc.GetUserAchievementStats(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalEarned)
	assert.Equal(t, 4, stats.TotalAvailable)
	assert.Equal(t, 25.0, stats.CompletionPercentage)
	assert.Equal(t, map[string]int{"distance": 1}, stats.ByCategory)
	assert.Equal(t, map[string]int{"bronze": 1}, stats.ByTier)
}

func TestGetRecentAchievements(t *testing.T) {
	repo := NewFakeRepository()
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.InsertUserAchievement(ctx, &domain.UserAchievement{
		UserID: "user-1", AchievementID: 1, AchievementKey: "fresh", EarnedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, repo.InsertUserAchievement(ctx, &domain.UserAchievement{
		UserID: "user-2", AchievementID: 2, AchievementKey: "stale", EarnedAt: now.AddDate(0, 0, -30),
	}))

	svc := newTestService(repo)

	recent, err := svc.GetRecentAchievements(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1, "only unlocks within the recent window are returned")
	assert.Equal(t, "fresh", recent[0].AchievementKey)
}

func TestGetUserAchievementsRequiresUserID(t *testing.T) {
	svc := newTestService(NewFakeRepository())

	_, err := svc.GetUserAchievements(context.Background(), "")

	require.Error(t, err)
}

func TestGetUserAchievementProgress(t *testing.T) {
	repo := NewFakeRepository()
	ach := first10K()
	repo.SeedProgress("user-1",
		domain.AchievementProgress{
			UserID:        "user-1",
			AchievementID: ach.ID,
			CurrentValue:  7.5,
			TargetValue:   10.0,
			Achievement:   &ach,
		},
	)
	svc := newTestService(repo)

	progress, err := svc.GetUserAchievementProgress(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 7.5, progress[0].CurrentValue)
	assert.Equal(t, 10.0, progress[0].TargetValue)
	require.NotNil(t, progress[0].Achievement)
	assert.Equal(t, "first_10k", progress[0].Achievement.Key)

	// A user with no progress rows gets an empty slice, not an error
	empty, err := svc.GetUserAchievementProgress(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetUserAchievementProgressRequiresUserID(t *testing.T) {
	svc := newTestService(NewFakeRepository())

	_, err := svc.GetUserAchievementProgress(context.Background(), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user id")
}

func TestGetUserAchievementProgressFetchFailure(t *testing.T) {
	repo := NewFakeRepository()
	repo.ProgressErr = domain.ErrStoreUnavailable
	svc := newTestService(repo)

	_, err := svc.GetUserAchievementProgress(context.Background(), "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestListAchievementsCachedCriteriaNotAliased(t *testing.T) {
	repo := NewFakeRepository()
	repo.SeedAchievements(first10K())
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.ListAchievements(ctx, domain.UnitMetric)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Mutating a returned criteria map must not reach the cached entry
	first[0].Criteria["target"] = 999.0

	second, err := svc.ListAchievements(ctx, domain.UnitMetric)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.ListCalls, "second read is a cache hit")
	assert.Equal(t, 10.0, second[0].CriteriaFloat("target", 0))
}

func TestGetUserAchievementsCachedRecordsNotAliased(t *testing.T) {
	repo := NewFakeRepository()
	ach := first10K()
	ctx := context.Background()
	require.NoError(t, repo.InsertUserAchievement(ctx, &domain.UserAchievement{
		UserID:        "user-1",
		AchievementID: ach.ID,
		EarnedAt:      time.Now().UTC(),
		Metadata:      map[string]interface{}{"distance_km": 12.3},
		Achievement:   &ach,
	}))
	svc := newTestService(repo)

	first, err := svc.GetUserAchievements(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	first[0].Metadata["distance_km"] = 0.0
	first[0].Achievement.Key = "tampered"

	second, err := svc.GetUserAchievements(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 12.3, second[0].Metadata["distance_km"])
	assert.Equal(t, "first_10k", second[0].Achievement.Key)
}
