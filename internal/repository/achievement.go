package repository

import (
	"context"
	"time"

	"github.com/ruckwell/achievement-service/internal/domain"
)

// Achievement defines the store gateway contract consumed by the
// achievement service. Implementations own transport, retry, and auth
// concerns; the core treats them as opaque.
type Achievement interface {
	// ListAchievements returns achievement definitions, optionally limited
	// to active ones.
	ListAchievements(ctx context.Context, activeOnly bool) ([]domain.Achievement, error)

	// ListUserAchievements returns the user's earned achievements, newest
	// first.
	ListUserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error)

	// GetAggregateStats returns the user's precomputed aggregates.
	GetAggregateStats(ctx context.Context, userID string) (domain.AggregateUserStats, error)

	// InsertUserAchievement persists an unlock record. Idempotent on
	// (user_id, achievement_id): inserting an existing pair returns
	// domain.ErrAlreadyEarned and leaves the stored record untouched.
	InsertUserAchievement(ctx context.Context, rec *domain.UserAchievement) error

	// ListRecentUserAchievements returns unlocks across all users earned
	// since the given time, newest first, capped at limit.
	ListRecentUserAchievements(ctx context.Context, since time.Time, limit int) ([]domain.UserAchievement, error)

	// ListUserAchievementProgress returns the user's partial progress
	// toward achievements not yet earned.
	ListUserAchievementProgress(ctx context.Context, userID string) ([]domain.AchievementProgress, error)
}
