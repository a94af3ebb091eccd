package handler

import (
	"net/http"
	"strconv"

	"github.com/ruckwell/achievement-service/internal/achievement"
	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
)

// RecentAchievementsResponse lists platform-wide recent unlocks
type RecentAchievementsResponse struct {
	Status       string                   `json:"status"`
	Achievements []domain.UserAchievement `json:"achievements"`
	Count        int                      `json:"count"`
}

// HandleGetRecentAchievements handles GET requests for recent platform unlocks
// @Summary Get recent achievements
// @Description Get achievements unlocked across the platform in the last 7 days
// @Tags achievements
// @Produce json
// @Param limit query int false "Maximum results (default 50, max 200)"
// @Success 200 {object} RecentAchievementsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /achievements/recent [get]
func HandleGetRecentAchievements(svc achievement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		limit := 0
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			var err error
			limit, err = strconv.Atoi(limitStr)
			if err != nil || limit <= 0 {
				log.Warn("Invalid limit parameter", "limit", limitStr)
				respondError(w, http.StatusBadRequest, ErrMsgInvalidLimitParam)
				return
			}
		}

		recent, err := svc.GetRecentAchievements(r.Context(), limit)
		if err != nil {
			respondServiceError(w, r, "Get recent achievements", err)
			return
		}

		respondJSON(w, http.StatusOK, RecentAchievementsResponse{
			Status:       StatusSuccess,
			Achievements: recent,
			Count:        len(recent),
		})
	}
}
