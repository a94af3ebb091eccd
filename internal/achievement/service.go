package achievement

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/ruckwell/achievement-service/internal/cache"
	"github.com/ruckwell/achievement-service/internal/criteria"
	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
	"github.com/ruckwell/achievement-service/internal/metrics"
	"github.com/ruckwell/achievement-service/internal/repository"
)

// Service defines the interface for achievement operations
type Service interface {
	// ListAchievements returns the active catalogue filtered to the given
	// unit preference ("" defaults to metric). Served from cache when fresh.
	ListAchievements(ctx context.Context, unitPref string) ([]domain.Achievement, error)

	// ListCategories returns the distinct categories of active achievements.
	ListCategories(ctx context.Context) ([]string, error)

	// GetUserAchievements returns the user's earned achievements, newest first.
	GetUserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error)

	// GetUserAchievementStats summarizes the user's progress through the catalogue.
	GetUserAchievementStats(ctx context.Context, userID string) (*domain.AchievementStats, error)

	// GetUserAchievementProgress returns the user's partial progress toward
	// achievements not yet earned.
	GetUserAchievementProgress(ctx context.Context, userID string) ([]domain.AchievementProgress, error)

	// GetRecentAchievements returns platform-wide unlocks from the recent window.
	GetRecentAchievements(ctx context.Context, limit int) ([]domain.UserAchievement, error)

	// CheckSession evaluates a completed session against the catalogue and
	// persists any newly satisfied achievements. Returns the newly earned
	// achievements only.
	CheckSession(ctx context.Context, userID, unitPref string, session domain.Session) ([]domain.Achievement, error)
}

// service implements the Service interface
type service struct {
	repo       repository.Achievement
	registry   *criteria.Registry
	catalog    *cache.TTLCache[[]domain.Achievement]
	categories *cache.TTLCache[[]string]
	earned     *earnedSetCache
	catalogTTL time.Duration
	now        func() time.Time
}

// NewService creates a new achievement service. catalogTTL bounds staleness
// of the cached catalogue; userTTL bounds staleness of per-user earned sets.
func NewService(repo repository.Achievement, catalogTTL, userTTL time.Duration) Service {
	return &service{
		repo:       repo,
		registry:   criteria.Default,
		catalog:    cache.New[[]domain.Achievement](),
		categories: cache.New[[]string](),
		earned:     newEarnedSetCache(DefaultUserCacheSize, userTTL),
		catalogTTL: catalogTTL,
		now:        time.Now,
	}
}

// ListAchievements returns the active, unit-filtered catalogue. Each unit
// preference is a distinct cache variant; the cached slices are never
// handed out directly.
func (s *service) ListAchievements(ctx context.Context, unitPref string) ([]domain.Achievement, error) {
	if unitPref == "" {
		unitPref = domain.DefaultUnitPreference
	}
	if !domain.ValidUnitPreference(unitPref) {
		return nil, fmt.Errorf("%w: unknown unit preference %q", domain.ErrInvalidInput, unitPref)
	}

	key := CacheKeyCatalogPrefix + unitPref
	if cached, ok := s.catalog.Get(key); ok {
		metrics.CacheHits.WithLabelValues(metrics.CacheCatalog).Inc()
		return cloneCatalog(cached), nil
	}
	metrics.CacheMisses.WithLabelValues(metrics.CacheCatalog).Inc()

	fetched, err := s.catalog.GetOrFetch(ctx, key, s.catalogTTL, func(ctx context.Context) ([]domain.Achievement, error) {
		all, err := s.repo.ListAchievements(ctx, true)
		if err != nil {
			return nil, err
		}
		return filterByUnitPreference(all, unitPref), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	return cloneCatalog(fetched), nil
}

// ListCategories returns the distinct categories of active achievements,
// sorted for stable output.
func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	const key = "achievements:categories"

	if cached, ok := s.categories.Get(key); ok {
		metrics.CacheHits.WithLabelValues(metrics.CacheCategories).Inc()
		return slices.Clone(cached), nil
	}
	metrics.CacheMisses.WithLabelValues(metrics.CacheCategories).Inc()

	fetched, err := s.categories.GetOrFetch(ctx, key, s.catalogTTL, func(ctx context.Context) ([]string, error) {
		all, err := s.repo.ListAchievements(ctx, true)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		var categories []string
		for _, a := range all {
			if a.Category != "" && !seen[a.Category] {
				seen[a.Category] = true
				categories = append(categories, a.Category)
			}
		}
		sort.Strings(categories)
		return categories, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievement categories: %w", err)
	}
	return slices.Clone(fetched), nil
}

// GetUserAchievements returns the user's earned achievements, newest first.
func (s *service) GetUserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	if userID == "" {
		return nil, errors.New(domain.ErrMsgUserIDRequired)
	}

	if cached, ok := s.earned.Get(userID); ok {
		metrics.CacheHits.WithLabelValues(metrics.CacheEarnedSet).Inc()
		return cloneEarned(cached), nil
	}
	metrics.CacheMisses.WithLabelValues(metrics.CacheEarnedSet).Inc()

	earned, err := s.repo.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user achievements: %w", err)
	}

	s.earned.Set(userID, earned)
	return cloneEarned(earned), nil
}

// cloneCatalog copies cached achievements deeply enough that a caller
// mutating a returned criteria map can never reach the cached entry.
func cloneCatalog(list []domain.Achievement) []domain.Achievement {
	out := slices.Clone(list)
	for i := range out {
		out[i].Criteria = maps.Clone(out[i].Criteria)
	}
	return out
}

// cloneEarned copies cached unlock records, including the embedded
// achievement definition and its criteria map.
func cloneEarned(list []domain.UserAchievement) []domain.UserAchievement {
	out := slices.Clone(list)
	for i := range out {
		out[i].Metadata = maps.Clone(out[i].Metadata)
		if out[i].Achievement != nil {
			a := *out[i].Achievement
			a.Criteria = maps.Clone(a.Criteria)
			out[i].Achievement = &a
		}
	}
	return out
}

// GetUserAchievementStats summarizes earned counts against the active catalogue.
func (s *service) GetUserAchievementStats(ctx context.Context, userID string) (*domain.AchievementStats, error) {
	log := logger.FromContext(ctx)

	earned, err := s.GetUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalogue, err := s.repo.ListAchievements(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}

	byID := make(map[int64]domain.Achievement, len(catalogue))
	for _, a := range catalogue {
		byID[a.ID] = a
	}

	stats := &domain.AchievementStats{
		TotalEarned:    len(earned),
		TotalAvailable: len(catalogue),
		ByCategory:     make(map[string]int),
		ByTier:         make(map[string]int),
	}

	for _, ua := range earned {
		a, ok := byID[ua.AchievementID]
		if !ok && ua.Achievement != nil {
			a = *ua.Achievement
			ok = true
		}
		if !ok {
			// Earned record for a retired or inactive definition; counted in
			// the total but not in the breakdowns.
			continue
		}
		if a.Category != "" {
			stats.ByCategory[a.Category]++
		}
		if a.Tier != "" {
			stats.ByTier[a.Tier]++
		}
	}

	if stats.TotalAvailable > 0 {
		pct := float64(stats.TotalEarned) / float64(stats.TotalAvailable) * 100
		stats.CompletionPercentage = float64(int(pct*10+0.5)) / 10
	}

	log.Debug("Computed achievement stats", "user_id", userID, "earned", stats.TotalEarned, "available", stats.TotalAvailable)
	return stats, nil
}

// GetUserAchievementProgress returns the user's partial progress toward
// unearned achievements, most recently updated first. Progress rows change
// with every session, so they are read through to the store uncached.
func (s *service) GetUserAchievementProgress(ctx context.Context, userID string) ([]domain.AchievementProgress, error) {
	if userID == "" {
		return nil, errors.New(domain.ErrMsgUserIDRequired)
	}

	progress, err := s.repo.ListUserAchievementProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievement progress: %w", err)
	}
	return progress, nil
}

// GetRecentAchievements returns platform-wide unlocks from the last seven days.
func (s *service) GetRecentAchievements(ctx context.Context, limit int) ([]domain.UserAchievement, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	since := s.now().UTC().AddDate(0, 0, -RecentWindowDays)
	recent, err := s.repo.ListRecentUserAchievements(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent achievements: %w", err)
	}
	return recent, nil
}

// CheckSession evaluates the session against every candidate achievement the
// user has not yet earned, persists new unlocks, and returns them.
//
// Catalogue, earned-set, and aggregate-stats fetch failures are fatal to the
// whole resolution: nothing can be evaluated without them. Failures scoped to
// a single candidate (persistence) are isolated and logged.
func (s *service) CheckSession(ctx context.Context, userID, unitPref string, session domain.Session) ([]domain.Achievement, error) {
	log := logger.FromContext(ctx)

	if userID == "" {
		return nil, errors.New(domain.ErrMsgUserIDRequired)
	}
	if session == nil {
		return nil, errors.New(domain.ErrMsgSessionRequired)
	}

	candidates, err := s.ListAchievements(ctx, unitPref)
	if err != nil {
		return nil, err
	}

	earned, err := s.GetUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	alreadyEarned := earnedIndex(earned)

	stats, err := s.repo.GetAggregateStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aggregate stats: %w", err)
	}

	sessionID := session.String(domain.FieldSessionID)
	newlyEarned := make([]domain.Achievement, 0)
	wrote := false

	for _, candidate := range candidates {
		if alreadyEarned(candidate) {
			continue
		}

		if !s.registry.Evaluate(candidate, session, stats) {
			continue
		}

		rec := &domain.UserAchievement{
			UserID:         userID,
			AchievementID:  candidate.ID,
			AchievementKey: candidate.Key,
			SessionID:      sessionID,
			EarnedAt:       s.now().UTC(),
			Metadata:       unlockMetadata(candidate, session, sessionID),
		}

		err := s.repo.InsertUserAchievement(ctx, rec)
		wrote = true
		switch {
		case errors.Is(err, domain.ErrAlreadyEarned):
			// Lost a race with a concurrent session for the same user; the
			// stored record wins and this one is not newly earned.
			log.Debug("Achievement already recorded", "user_id", userID, "achievement_key", candidate.Key)
		case err != nil:
			metrics.UnlockPersistFailures.Inc()
			log.Error("Failed to persist unlock", "error", err, "user_id", userID, "achievement_key", candidate.Key)
		default:
			metrics.AchievementsUnlocked.WithLabelValues(candidate.Key).Inc()
			log.Info("Achievement unlocked", "user_id", userID, "achievement_key", candidate.Key, "session_id", sessionID)
			newlyEarned = append(newlyEarned, candidate)
		}
	}

	if wrote {
		s.earned.Invalidate(userID)
	}

	metrics.SessionsChecked.Inc()
	log.Debug("Session checked", "user_id", userID, "candidates", len(candidates), "newly_earned", len(newlyEarned))
	return newlyEarned, nil
}

// earnedIndex builds a membership check over both achievement IDs and keys,
// since store implementations may populate either.
func earnedIndex(earned []domain.UserAchievement) func(domain.Achievement) bool {
	byID := make(map[int64]bool, len(earned))
	byKey := make(map[string]bool, len(earned))
	for _, ua := range earned {
		if ua.AchievementID != 0 {
			byID[ua.AchievementID] = true
		}
		if ua.AchievementKey != "" {
			byKey[ua.AchievementKey] = true
		}
	}
	return func(a domain.Achievement) bool {
		return byID[a.ID] || byKey[a.Key]
	}
}

// unlockMetadata captures the values that triggered the unlock: the session
// reference, the criteria kind, and the session's numeric fields.
func unlockMetadata(ach domain.Achievement, session domain.Session, sessionID string) map[string]interface{} {
	meta := map[string]interface{}{
		MetadataKeyCriteriaType: ach.CriteriaType(),
	}
	if sessionID != "" {
		meta[MetadataKeyTriggeredBySession] = sessionID
	}
	for field, value := range session {
		if field == domain.FieldSessionID {
			continue
		}
		switch v := value.(type) {
		case float64:
			meta[field] = v
		case int:
			meta[field] = v
		}
	}
	return meta
}
