// Package postgres implements the achievement store gateway against a
// PostgreSQL database for deployments with direct database access.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
	"github.com/ruckwell/achievement-service/internal/metrics"
	"github.com/ruckwell/achievement-service/internal/repository"
)

type achievementRepository struct {
	db *pgxpool.Pool
}

// NewAchievementRepository creates a new PostgreSQL achievement gateway
func NewAchievementRepository(db *pgxpool.Pool) repository.Achievement {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListAchievements(ctx context.Context, activeOnly bool) ([]domain.Achievement, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, achievement_key, name, COALESCE(description, ''), category, tier,
		       criteria, COALESCE(icon_name, ''), is_active, unit_preference,
		       created_at, updated_at
		FROM achievements
	`
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListAchievements, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		var (
			a           domain.Achievement
			criteriaRaw []byte
		)
		if err := rows.Scan(&a.ID, &a.Key, &a.Name, &a.Description, &a.Category, &a.Tier,
			&criteriaRaw, &a.IconName, &a.IsActive, &a.UnitPreference,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		if err := json.Unmarshal(criteriaRaw, &a.Criteria); err != nil {
			// Skip the record rather than failing the whole catalogue
			log.Warn("Skipping achievement with malformed criteria", "achievement_id", a.ID, "error", err)
			continue
		}
		achievements = append(achievements, a)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListAchievements, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpListAchievements, metrics.OutcomeSuccess).Inc()
	return achievements, nil
}

func (r *achievementRepository) ListUserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	query := `
		SELECT ua.id, ua.user_id, ua.achievement_id, a.achievement_key,
		       COALESCE(ua.session_id, ''), ua.earned_at, ua.metadata,
		       a.name, COALESCE(a.description, ''), a.category, a.tier, COALESCE(a.icon_name, '')
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.earned_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListUserAchievements, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	earned, err := scanUserAchievements(rows)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListUserAchievements, metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpListUserAchievements, metrics.OutcomeSuccess).Inc()
	return earned, nil
}

func (r *achievementRepository) GetAggregateStats(ctx context.Context, userID string) (domain.AggregateUserStats, error) {
	var stats domain.AggregateUserStats

	totalsQuery := `
		SELECT COALESCE(SUM(distance_km), 0),
		       COALESCE(SUM(elevation_gain_m), 0),
		       COUNT(*),
		       COALESCE(SUM(power_points), 0),
		       COALESCE(SUM(duration_seconds), 0)
		FROM sessions
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, totalsQuery, userID).Scan(
		&stats.TotalDistanceKm, &stats.TotalElevationGainM, &stats.SessionCount,
		&stats.TotalPowerPoints, &stats.TotalDurationSeconds)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpGetAggregateStats, metrics.OutcomeError).Inc()
		return stats, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	histogram, err := r.startHourHistogram(ctx, userID)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpGetAggregateStats, metrics.OutcomeError).Inc()
		return stats, err
	}
	stats.SessionsBeforeHour, stats.SessionsAfterHour = hourWindowCounts(histogram)

	streak, err := r.currentStreakDays(ctx, userID)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpGetAggregateStats, metrics.OutcomeError).Inc()
		return stats, err
	}
	stats.CurrentStreakDays = streak

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpGetAggregateStats, metrics.OutcomeSuccess).Inc()
	return stats, nil
}

func (r *achievementRepository) InsertUserAchievement(ctx context.Context, rec *domain.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, session_id, earned_at, metadata)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	var metadataJSON []byte
	if rec.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal unlock metadata: %w", err)
		}
	}

	tag, err := r.db.Exec(ctx, query, rec.UserID, rec.AchievementID, rec.SessionID, rec.EarnedAt, metadataJSON)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpInsertUserAchievement, metrics.OutcomeError).Inc()
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpInsertUserAchievement, metrics.OutcomeConflict).Inc()
		return domain.ErrAlreadyEarned
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpInsertUserAchievement, metrics.OutcomeSuccess).Inc()
	return nil
}

func (r *achievementRepository) ListRecentUserAchievements(ctx context.Context, since time.Time, limit int) ([]domain.UserAchievement, error) {
	query := `
		SELECT ua.id, ua.user_id, ua.achievement_id, a.achievement_key,
		       COALESCE(ua.session_id, ''), ua.earned_at, ua.metadata,
		       a.name, COALESCE(a.description, ''), a.category, a.tier, COALESCE(a.icon_name, '')
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.earned_at > $1
		ORDER BY ua.earned_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListRecent, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	recent, err := scanUserAchievements(rows)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListRecent, metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpListRecent, metrics.OutcomeSuccess).Inc()
	return recent, nil
}

func (r *achievementRepository) ListUserAchievementProgress(ctx context.Context, userID string) ([]domain.AchievementProgress, error) {
	query := `
		SELECT ap.id, ap.user_id, ap.achievement_id, ap.current_value,
		       ap.target_value, ap.last_updated,
		       a.achievement_key, a.name, COALESCE(a.description, ''),
		       a.category, a.tier, COALESCE(a.icon_name, '')
		FROM achievement_progress ap
		JOIN achievements a ON a.id = ap.achievement_id
		WHERE ap.user_id = $1
		ORDER BY ap.last_updated DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListProgress, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var progress []domain.AchievementProgress
	for rows.Next() {
		var (
			p   domain.AchievementProgress
			ach domain.Achievement
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.AchievementID, &p.CurrentValue,
			&p.TargetValue, &p.LastUpdated,
			&ach.Key, &ach.Name, &ach.Description,
			&ach.Category, &ach.Tier, &ach.IconName); err != nil {
			metrics.StoreRequests.WithLabelValues(metrics.StoreOpListProgress, metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("failed to scan achievement progress: %w", err)
		}
		ach.ID = p.AchievementID
		p.Achievement = &ach
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListProgress, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpListProgress, metrics.OutcomeSuccess).Inc()
	return progress, nil
}

// startHourHistogram counts the user's sessions per local start hour.
func (r *achievementRepository) startHourHistogram(ctx context.Context, userID string) (map[int]int, error) {
	query := `
		SELECT EXTRACT(HOUR FROM started_at)::int, COUNT(*)
		FROM sessions
		WHERE user_id = $1
		GROUP BY 1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	histogram := make(map[int]int)
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hour histogram: %w", err)
		}
		histogram[hour] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return histogram, nil
}

// currentStreakDays counts consecutive calendar days with at least one
// session, ending today or yesterday.
func (r *achievementRepository) currentStreakDays(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT DISTINCT started_at::date
		FROM sessions
		WHERE user_id = $1
		ORDER BY 1 DESC
		LIMIT 366
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return 0, fmt.Errorf("failed to scan session date: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return streakFrom(days, time.Now().UTC()), nil
}

// streakFrom walks the distinct session dates (newest first) and counts the
// run of consecutive days. A streak is current only if it reaches today or
// yesterday.
func streakFrom(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := now.Truncate(24 * time.Hour)
	latest := days[0].Truncate(24 * time.Hour)
	if today.Sub(latest) > 24*time.Hour {
		return 0
	}

	streak := 1
	prev := latest
	for _, day := range days[1:] {
		day = day.Truncate(24 * time.Hour)
		if prev.Sub(day) != 24*time.Hour {
			break
		}
		streak++
		prev = day
	}
	return streak
}

// hourWindowCounts turns a per-hour histogram into cumulative before/after
// counts for every hour boundary.
func hourWindowCounts(histogram map[int]int) (before, after map[int]int) {
	before = make(map[int]int, 24)
	after = make(map[int]int, 24)
	for boundary := 0; boundary < 24; boundary++ {
		for hour, count := range histogram {
			if hour < boundary {
				before[boundary] += count
			}
			if hour >= boundary {
				after[boundary] += count
			}
		}
	}
	return before, after
}

func scanUserAchievements(rows pgx.Rows) ([]domain.UserAchievement, error) {
	var earned []domain.UserAchievement
	for rows.Next() {
		var (
			ua          domain.UserAchievement
			ach         domain.Achievement
			metadataRaw []byte
		)
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.AchievementKey,
			&ua.SessionID, &ua.EarnedAt, &metadataRaw,
			&ach.Name, &ach.Description, &ach.Category, &ach.Tier, &ach.IconName); err != nil {
			return nil, fmt.Errorf("failed to scan user achievement: %w", err)
		}
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &ua.Metadata); err != nil {
				return nil, fmt.Errorf("%w: unlock metadata: %v", domain.ErrMalformedRecord, err)
			}
		}
		ach.ID = ua.AchievementID
		ach.Key = ua.AchievementKey
		ua.Achievement = &ach
		earned = append(earned, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return earned, nil
}
