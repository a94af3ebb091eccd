package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruckwell/achievement-service/internal/domain"
)

func TestHandleCheckSession(t *testing.T) {
	InitValidator()

	session := domain.Session{
		"id":          "session-42",
		"distance_km": 12.3,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockAchievementService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Newly earned achievement",
			requestBody: CheckSessionRequest{
				UserID:  "user-1",
				Session: session,
			},
			setupMock: func(m *MockAchievementService) {
				m.On("CheckSession", mock.Anything, "user-1", "", mock.Anything).
					Return([]domain.Achievement{{ID: 1, Key: "first_10k"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "first_10k",
		},
		{
			name: "Nothing newly earned",
			requestBody: CheckSessionRequest{
				UserID:  "user-1",
				Session: session,
			},
			setupMock: func(m *MockAchievementService) {
				m.On("CheckSession", mock.Anything, "user-1", "", mock.Anything).
					Return([]domain.Achievement{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":0`,
		},
		{
			name: "Missing user_id",
			requestBody: CheckSessionRequest{
				Session: session,
			},
			setupMock:      func(m *MockAchievementService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing session",
			requestBody: CheckSessionRequest{
				UserID: "user-1",
			},
			setupMock:      func(m *MockAchievementService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid unit preference",
			requestBody: CheckSessionRequest{
				UserID:         "user-1",
				UnitPreference: "nautical",
				Session:        session,
			},
			setupMock:      func(m *MockAchievementService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "metric or imperial",
		},
		{
			name: "Store unavailable",
			requestBody: CheckSessionRequest{
				UserID:  "user-1",
				Session: session,
			},
			setupMock: func(m *MockAchievementService) {
				m.On("CheckSession", mock.Anything, "user-1", "", mock.Anything).
					Return(nil, domain.ErrStoreUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "Unexpected service error",
			requestBody: CheckSessionRequest{
				UserID:  "user-1",
				Session: session,
			},
			setupMock: func(m *MockAchievementService) {
				m.On("CheckSession", mock.Anything, "user-1", "", mock.Anything).
					Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrMsgGenericServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &MockAchievementService{}
			tt.setupMock(mockSvc)

			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/achievements/check", bytes.NewBuffer(body))
			w := httptest.NewRecorder()

			HandleCheckSession(mockSvc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestHandleCheckSessionMalformedBody(t *testing.T) {
	InitValidator()
	mockSvc := &MockAchievementService{}

	req := httptest.NewRequest("POST", "/achievements/check", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	HandleCheckSession(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrMsgInvalidRequest)
}

func TestHandleCheckSessionEchoesSessionID(t *testing.T) {
	InitValidator()

	mockSvc := &MockAchievementService{}
	mockSvc.On("CheckSession", mock.Anything, "user-1", "", mock.Anything).
		Return([]domain.Achievement{}, nil)

	body, _ := json.Marshal(CheckSessionRequest{
		UserID:  "user-1",
		Session: domain.Session{"id": "session-42"},
	})
	req := httptest.NewRequest("POST", "/achievements/check", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	HandleCheckSession(mockSvc).ServeHTTP(w, req)

	var resp CheckSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "session-42", resp.SessionID)
}
