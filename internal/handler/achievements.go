package handler

import (
	"net/http"

	"github.com/ruckwell/achievement-service/internal/achievement"
	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
)

// AchievementsResponse is the catalogue listing payload
type AchievementsResponse struct {
	Status       string               `json:"status"`
	Achievements []domain.Achievement `json:"achievements"`
	Count        int                  `json:"count"`
}

// CategoriesResponse lists the distinct achievement categories
type CategoriesResponse struct {
	Status     string   `json:"status"`
	Categories []string `json:"categories"`
}

// HandleGetAchievements handles GET requests for the achievement catalogue
// @Summary List achievements
// @Description Get all active achievements, filtered to a unit preference
// @Tags achievements
// @Produce json
// @Param unit_preference query string false "Unit preference (metric or imperial, default metric)"
// @Success 200 {object} AchievementsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /achievements [get]
func HandleGetAchievements(svc achievement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		unitPref := GetOptionalQueryParam(r, "unit_preference", "")

		achievements, err := svc.ListAchievements(r.Context(), unitPref)
		if err != nil {
			respondServiceError(w, r, "List achievements", err)
			return
		}

		log.Debug("Achievements listed", "unit_preference", unitPref, "count", len(achievements))

		respondJSON(w, http.StatusOK, AchievementsResponse{
			Status:       StatusSuccess,
			Achievements: achievements,
			Count:        len(achievements),
		})
	}
}

// HandleGetCategories handles GET requests for achievement categories
// @Summary List achievement categories
// @Description Get the distinct categories of active achievements
// @Tags achievements
// @Produce json
// @Success 200 {object} CategoriesResponse
// @Failure 503 {object} ErrorResponse
// @Router /achievements/categories [get]
func HandleGetCategories(svc achievement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			respondServiceError(w, r, "List achievement categories", err)
			return
		}

		respondJSON(w, http.StatusOK, CategoriesResponse{
			Status:     StatusSuccess,
			Categories: categories,
		})
	}
}
