package handler

import (
	"net/http"

	"github.com/ruckwell/achievement-service/internal/achievement"
	"github.com/ruckwell/achievement-service/internal/domain"
	"github.com/ruckwell/achievement-service/internal/logger"
)

// CheckSessionRequest asks the service to evaluate a completed session
type CheckSessionRequest struct {
	UserID         string         `json:"user_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
	UnitPreference string         `json:"unit_preference" validate:"omitempty,unit_preference"`
	Session        domain.Session `json:"session" validate:"required"`
}

// CheckSessionResponse reports the newly earned achievements
type CheckSessionResponse struct {
	Status          string               `json:"status"`
	SessionID       string               `json:"session_id,omitempty"`
	NewAchievements []domain.Achievement `json:"new_achievements"`
	Count           int                  `json:"count"`
}

// HandleCheckSession handles POST requests to evaluate a completed session
// @Summary Check session for achievements
// @Description Evaluate a completed session against the catalogue and unlock any newly satisfied achievements
// @Tags achievements
// @Accept json
// @Produce json
// @Param request body CheckSessionRequest true "Session details"
// @Success 200 {object} CheckSessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /achievements/check [post]
func HandleCheckSession(svc achievement.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CheckSessionRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Check session"); err != nil {
			return
		}

		newly, err := svc.CheckSession(r.Context(), req.UserID, req.UnitPreference, req.Session)
		if err != nil {
			respondServiceError(w, r, "Check session", err)
			return
		}

		sessionID := req.Session.String(domain.FieldSessionID)
		log.Info("Session check completed", "user_id", req.UserID, "session_id", sessionID, "newly_earned", len(newly))

		respondJSON(w, http.StatusOK, CheckSessionResponse{
			Status:          StatusSuccess,
			SessionID:       sessionID,
			NewAchievements: newly,
			Count:           len(newly),
		})
	}
}
