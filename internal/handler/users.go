package handler

import (
	"net/http"

	"github.com/ruckwell/achievement-service/internal/achievement"
	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
)

// UserAchievementsResponse is the earned achievements payload
type UserAchievementsResponse struct {
	Status       string                   `json:"status"`
	Achievements []domain.UserAchievement `json:"achievements"`
	Count        int                      `json:"count"`
}

// UserStatsResponse summarizes a user's progress
type UserStatsResponse struct {
	Status string                   `json:"status"`
	Stats  *domain.AchievementStats `json:"stats"`
}

// UserProgressResponse is the partial-progress payload
type UserProgressResponse struct {
	Status   string                       `json:"status"`
	Progress []domain.AchievementProgress `json:"achievement_progress"`
	Count    int                          `json:"count"`
}

// HandleGetUserAchievements handles GET requests for a user's earned achievements
// @Summary Get user achievements
// @Description Get the achievements a user has earned, newest first
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} UserAchievementsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /users/{userID}/achievements [get]
func HandleGetUserAchievements(svc achievement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetPathParam(r, w, "userID")
		if !ok {
			return
		}

		earned, err := svc.GetUserAchievements(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get user achievements", err)
			return
		}

		log.Debug("User achievements retrieved", "user_id", userID, "count", len(earned))

		respondJSON(w, http.StatusOK, UserAchievementsResponse{
			Status:       StatusSuccess,
			Achievements: earned,
			Count:        len(earned),
		})
	}
}

// HandleGetUserAchievementProgress handles GET requests for a user's progress
// toward unearned achievements
// @Summary Get user achievement progress
// @Description Get the user's partial progress toward achievements not yet earned
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} UserProgressResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /users/{userID}/achievements/progress [get]
func HandleGetUserAchievementProgress(svc achievement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID, ok := GetPathParam(r, w, "userID")
		if !ok {
			return
		}

		progress, err := svc.GetUserAchievementProgress(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get user achievement progress", err)
			return
		}

		log.Debug("Achievement progress retrieved", "user_id", userID, "count", len(progress))

		respondJSON(w, http.StatusOK, UserProgressResponse{
			Status:   StatusSuccess,
			Progress: progress,
			Count:    len(progress),
		})
	}
}

// HandleGetUserStats handles GET requests for a user's achievement statistics
// @Summary Get user achievement stats
// @Description Get earned totals, completion percentage, and category/tier breakdowns
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} UserStatsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /achievements/stats/{userID} [get]
func HandleGetUserStats(svc achievement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetPathParam(r, w, "userID")
		if !ok {
			return
		}

		stats, err := svc.GetUserAchievementStats(r.Context(), userID)
		if err != nil {
			respondServiceError(w, r, "Get user achievement stats", err)
			return
		}

		respondJSON(w, http.StatusOK, UserStatsResponse{
			Status: StatusSuccess,
			Stats:  stats,
		})
	}
}
