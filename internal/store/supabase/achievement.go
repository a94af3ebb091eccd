package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
	"github.com/ruckwell/achievement-service/internal/metrics"
	"github.com/ruckwell/achievement-service/internal/repository"
)

type achievementRepository struct {
	client *Client
}

// NewAchievementRepository creates a Supabase-backed achievement gateway
func NewAchievementRepository(client *Client) repository.Achievement {
	return &achievementRepository{client: client}
}

type achievementRow struct {
	ID             int64                  `json:"id"`
	Key            string                 `json:"achievement_key"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category"`
	Tier           string                 `json:"tier"`
	Criteria       map[string]interface{} `json:"criteria"`
	IconName       string                 `json:"icon_name"`
	IsActive       bool                   `json:"is_active"`
	UnitPreference string                 `json:"unit_preference"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (r achievementRow) toDomain() domain.Achievement {
	return domain.Achievement{
		ID:             r.ID,
		Key:            r.Key,
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		Tier:           r.Tier,
		Criteria:       r.Criteria,
		IconName:       r.IconName,
		IsActive:       r.IsActive,
		UnitPreference: r.UnitPreference,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type userAchievementRow struct {
	ID            int64                  `json:"id"`
	UserID        string                 `json:"user_id"`
	AchievementID int64                  `json:"achievement_id"`
	SessionID     string                 `json:"session_id"`
	EarnedAt      time.Time              `json:"earned_at"`
	Metadata      map[string]interface{} `json:"metadata"`

	// Achievement embedded by PostgREST via the foreign key
	Achievement *achievementRow `json:"achievements"`
}

func (r *achievementRepository) ListAchievements(ctx context.Context, activeOnly bool) ([]domain.Achievement, error) {
	log := logger.FromContext(ctx)

	query := url.Values{"select": {"*"}, "order": {"id.asc"}}
	if activeOnly {
		query.Set("is_active", "eq.true")
	}

	var raw []json.RawMessage
	if err := r.client.get(ctx, pathAchievements, query, &raw); err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListAchievements, metrics.OutcomeError).Inc()
		return nil, err
	}

	achievements := make([]domain.Achievement, 0, len(raw))
	for _, record := range raw {
		var row achievementRow
		if err := json.Unmarshal(record, &row); err != nil || row.Key == "" {
			// Skip the record rather than failing the whole catalogue
			log.Warn("Skipping malformed achievement record", "error", err)
			continue
		}
		achievements = append(achievements, row.toDomain())
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpListAchievements, metrics.OutcomeSuccess).Inc()
	return achievements, nil
}

func (r *achievementRepository) ListUserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	query := url.Values{
		"select":  {"*,achievements(*)"},
		"user_id": {"eq." + userID},
		"order":   {"earned_at.desc"},
	}

	rows, err := r.fetchUserAchievements(ctx, query, metrics.StoreOpListUserAchievements)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *achievementRepository) GetAggregateStats(ctx context.Context, userID string) (domain.AggregateUserStats, error) {
	var stats domain.AggregateUserStats

	payload := map[string]string{"p_user_id": userID}
	if err := r.client.post(ctx, pathAggregateStats, payload, &stats); err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpGetAggregateStats, metrics.OutcomeError).Inc()
		return stats, err
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpGetAggregateStats, metrics.OutcomeSuccess).Inc()
	return stats, nil
}

func (r *achievementRepository) InsertUserAchievement(ctx context.Context, rec *domain.UserAchievement) error {
	payload := map[string]interface{}{
		"user_id":        rec.UserID,
		"achievement_id": rec.AchievementID,
		"earned_at":      rec.EarnedAt.Format(time.RFC3339),
	}
	if rec.SessionID != "" {
		payload["session_id"] = rec.SessionID
	}
	if rec.Metadata != nil {
		payload["metadata"] = rec.Metadata
	}

	err := r.client.post(ctx, pathUserAchievements, payload, nil)
	switch {
	case err == nil:
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpInsertUserAchievement, metrics.OutcomeSuccess).Inc()
		return nil
	case errors.Is(err, domain.ErrAlreadyEarned):
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpInsertUserAchievement, metrics.OutcomeConflict).Inc()
		return err
	default:
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpInsertUserAchievement, metrics.OutcomeError).Inc()
		return err
	}
}

func (r *achievementRepository) ListRecentUserAchievements(ctx context.Context, since time.Time, limit int) ([]domain.UserAchievement, error) {
	query := url.Values{
		"select":    {"*,achievements(*)"},
		"earned_at": {"gt." + since.Format(time.RFC3339)},
		"order":     {"earned_at.desc"},
		"limit":     {strconv.Itoa(limit)},
	}

	return r.fetchUserAchievements(ctx, query, metrics.StoreOpListRecent)
}

type achievementProgressRow struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	CurrentValue  float64   `json:"current_value"`
	TargetValue   float64   `json:"target_value"`
	LastUpdated   time.Time `json:"last_updated"`

	// Achievement embedded by PostgREST via the foreign key
	Achievement *achievementRow `json:"achievements"`
}

func (r *achievementRepository) ListUserAchievementProgress(ctx context.Context, userID string) ([]domain.AchievementProgress, error) {
	log := logger.FromContext(ctx)

	query := url.Values{
		"select":  {"*,achievements(*)"},
		"user_id": {"eq." + userID},
		"order":   {"last_updated.desc"},
	}

	var raw []json.RawMessage
	if err := r.client.get(ctx, pathAchievementProgress, query, &raw); err != nil {
		metrics.StoreRequests.WithLabelValues(metrics.StoreOpListProgress, metrics.OutcomeError).Inc()
		return nil, err
	}

	progress := make([]domain.AchievementProgress, 0, len(raw))
	for _, record := range raw {
		var row achievementProgressRow
		if err := json.Unmarshal(record, &row); err != nil || row.UserID == "" {
			log.Warn("Skipping malformed achievement progress record", "error", err)
			continue
		}

		p := domain.AchievementProgress{
			ID:            row.ID,
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			CurrentValue:  row.CurrentValue,
			TargetValue:   row.TargetValue,
			LastUpdated:   row.LastUpdated,
		}
		if row.Achievement != nil {
			ach := row.Achievement.toDomain()
			p.Achievement = &ach
		}
		progress = append(progress, p)
	}

	metrics.StoreRequests.WithLabelValues(metrics.StoreOpListProgress, metrics.OutcomeSuccess).Inc()
	return progress, nil
}

func (r *achievementRepository) fetchUserAchievements(ctx context.Context, query url.Values, operation string) ([]domain.UserAchievement, error) {
	log := logger.FromContext(ctx)

	var raw []json.RawMessage
	if err := r.client.get(ctx, pathUserAchievements, query, &raw); err != nil {
		metrics.StoreRequests.WithLabelValues(operation, metrics.OutcomeError).Inc()
		return nil, err
	}

	earned := make([]domain.UserAchievement, 0, len(raw))
	for _, record := range raw {
		var row userAchievementRow
		if err := json.Unmarshal(record, &row); err != nil || row.UserID == "" {
			log.Warn("Skipping malformed user achievement record", "error", err)
			continue
		}

		ua := domain.UserAchievement{
			ID:            row.ID,
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			SessionID:     row.SessionID,
			EarnedAt:      row.EarnedAt,
			Metadata:      row.Metadata,
		}
		if row.Achievement != nil {
			ach := row.Achievement.toDomain()
			ua.Achievement = &ach
			ua.AchievementKey = ach.Key
		}
		earned = append(earned, ua)
	}

	metrics.StoreRequests.WithLabelValues(operation, metrics.OutcomeSuccess).Inc()
	return earned, nil
}
