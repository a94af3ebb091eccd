package achievement

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ruckwell/achievement-service/internal/domain"
)

// FakeRepository is a stateful in-memory implementation of the store
// gateway for testing. It enforces the same (user, achievement) uniqueness
// the real backends do, so integration-style unit tests exercise the
// idempotency contract for real.
type FakeRepository struct {
	mu           sync.Mutex
	achievements []domain.Achievement
	earned       map[string][]domain.UserAchievement // keyed by user ID
	stats        map[string]domain.AggregateUserStats
	progress     map[string][]domain.AchievementProgress
	nextRecordID int64

	// Error injection
	ListErr     error
	StatsErr    error
	InsertErr   error
	ProgressErr error

	// Call counters for cache behavior assertions
	ListCalls   int
	InsertCalls int
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		earned:       make(map[string][]domain.UserAchievement),
		stats:        make(map[string]domain.AggregateUserStats),
		progress:     make(map[string][]domain.AchievementProgress),
		nextRecordID: 1,
	}
}

// SeedAchievements replaces the stored catalogue.
func (f *FakeRepository) SeedAchievements(achievements ...domain.Achievement) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.achievements = achievements
}

// SeedStats sets a user's aggregate stats.
func (f *FakeRepository) SeedStats(userID string, stats domain.AggregateUserStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[userID] = stats
}

// SeedProgress replaces a user's stored progress rows.
func (f *FakeRepository) SeedProgress(userID string, progress ...domain.AchievementProgress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[userID] = progress
}

// EarnedCount returns the number of stored unlock records for a user.
func (f *FakeRepository) EarnedCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.earned[userID])
}

func (f *FakeRepository) ListAchievements(ctx context.Context, activeOnly bool) ([]domain.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	var out []domain.Achievement
	for _, a := range f.achievements {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *FakeRepository) ListUserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := append([]domain.UserAchievement(nil), f.earned[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out, nil
}

func (f *FakeRepository) GetAggregateStats(ctx context.Context, userID string) (domain.AggregateUserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StatsErr != nil {
		return domain.AggregateUserStats{}, f.StatsErr
	}
	return f.stats[userID], nil
}

func (f *FakeRepository) InsertUserAchievement(ctx context.Context, rec *domain.UserAchievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.InsertCalls++
	if f.InsertErr != nil {
		return f.InsertErr
	}

	for _, existing := range f.earned[rec.UserID] {
		if existing.AchievementID == rec.AchievementID {
			return domain.ErrAlreadyEarned
		}
	}

	stored := *rec
	stored.ID = f.nextRecordID
	f.nextRecordID++
	f.earned[rec.UserID] = append(f.earned[rec.UserID], stored)
	return nil
}

func (f *FakeRepository) ListUserAchievementProgress(ctx context.Context, userID string) ([]domain.AchievementProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ProgressErr != nil {
		return nil, f.ProgressErr
	}
	return append([]domain.AchievementProgress(nil), f.progress[userID]...), nil
}

func (f *FakeRepository) ListRecentUserAchievements(ctx context.Context, since time.Time, limit int) ([]domain.UserAchievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.UserAchievement
	for _, records := range f.earned {
		for _, r := range records {
			if r.EarnedAt.After(since) {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
